package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/muurk/rtuscope/internal/serialport"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.Contains(configDir, "rtuscope") {
		t.Errorf("GetConfigDir() = %v, should contain 'rtuscope'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("macOS config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigDir_XDG(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux and other Unix systems")
	}

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	got, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if want := filepath.Join(xdg, "rtuscope"); got != want {
		t.Errorf("GetConfigDir() = %q, want %q", got, want)
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}

	sc, err := cfg.SerialPortConfig()
	if err != nil {
		t.Fatalf("SerialPortConfig() error = %v", err)
	}
	if sc.Baud != 19200 || sc.DataBits != 8 || sc.Parity != serialport.ParityEven || sc.StopBits != 1 {
		t.Errorf("default line = %s, want 19200 8E1", sc.LineSettings())
	}
	if cfg.Framing.BufferSize != 256 {
		t.Errorf("BufferSize = %d, want 256", cfg.Framing.BufferSize)
	}
	if cfg.Timeout() != time.Second {
		t.Errorf("Timeout() = %v, want 1s", cfg.Timeout())
	}

	if !cfg.Stream.Enabled() || !cfg.Stream.Advertise {
		t.Errorf("stream = %+v", cfg.Stream)
	}

	fc, err := cfg.FramingSettings()
	if err != nil {
		t.Fatalf("FramingSettings() error = %v", err)
	}
	for _, code := range []byte{3, 6, 22} {
		if !fc.FunctionCodes.Contains(code) {
			t.Errorf("default function codes missing %d", code)
		}
	}
	if fc.FunctionCodes.Contains(16) {
		t.Error("default function codes should not contain 16")
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
version: 1
serial:
  device: /dev/ttyAMA0
  baud: 9600
  parity: none
framing:
  function_codes: [3, 16]
display:
  palette: [red, blue]
  timestamps: true
influx:
  url: http://localhost:8086
  org: plant
  bucket: rs485
stream:
  listen: ":8020"
  advertise: true
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Serial.Device != "/dev/ttyAMA0" || cfg.Serial.Baud != 9600 || cfg.Serial.Parity != "none" {
		t.Errorf("serial = %+v", cfg.Serial)
	}
	// Keys absent from the file keep their defaults
	if cfg.Serial.DataBits != 8 || cfg.Serial.StopBits != 1 || cfg.Framing.TimeoutMS != 1000 {
		t.Errorf("defaults lost: %+v %+v", cfg.Serial, cfg.Framing)
	}
	if !cfg.Display.Color {
		t.Error("Display.Color default lost")
	}
	if len(cfg.Display.Palette) != 2 || !cfg.Display.Timestamps {
		t.Errorf("display = %+v", cfg.Display)
	}
	if !cfg.Influx.Enabled() || cfg.InfluxConfig().Bucket != "rs485" {
		t.Errorf("influx = %+v", cfg.Influx)
	}

	fc, err := cfg.FramingSettings()
	if err != nil {
		t.Fatal(err)
	}
	if !fc.FunctionCodes.Contains(16) || fc.FunctionCodes.Contains(6) {
		t.Errorf("function codes = %s, want 3,16", fc.FunctionCodes.String())
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		errMsg string
	}{
		{"bad yaml", "serial: [", "failed to parse"},
		{"version", "version: 2", "unsupported config version"},
		{"driver", "serial: {driver: modem}", "serial.driver"},
		{"baud", "serial: {baud: 0}", "serial.baud"},
		{"data bits", "serial: {data_bits: 9}", "serial.data_bits"},
		{"parity", "serial: {parity: sometimes}", "serial.parity"},
		{"stop bits", "serial: {stop_bits: 0}", "serial.stop_bits"},
		{"buffer", "framing: {buffer_size: 2}", "framing.buffer_size"},
		{"timeout", "framing: {timeout_ms: 0}", "framing.timeout_ms"},
		{"function codes", "framing: {function_codes: [200]}", "framing.function_codes"},
		{"min frame", "framing: {min_frame_length: 1}", "framing.min_frame_length"},
		{"influx bucket", "influx: {url: 'http://x', org: o}", "influx"},
		{"stream listen", "stream: {listen: '8020'}", "stream.listen"},
		{"advertise without listen", "stream: {advertise: true}", "stream.advertise"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Parse() error = %q, want it to mention %q", err, tt.errMsg)
			}
		})
	}
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Serial.Baud != Default().Serial.Baud {
		t.Errorf("Load() of missing file = %+v, want defaults", cfg.Serial)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Serial.Device = "COM3"
	cfg.Framing.FunctionCodes = []int{3, 4}
	cfg.Influx.URL = "http://influx:8086"
	cfg.Influx.Org = "plant"
	cfg.Influx.Bucket = "rs485"
	cfg.Influx.Token = "secret-token"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "secret-token") {
		t.Error("Save() wrote the influx token to disk")
	}
	if !strings.HasPrefix(string(raw), "# rtuscope configuration file") {
		t.Error("Save() did not write the header comment")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Serial.Device != "COM3" || len(loaded.Framing.FunctionCodes) != 2 || loaded.Influx.Bucket != "rs485" {
		t.Errorf("Load() = %+v", loaded)
	}
	if loaded.Influx.Token != "" {
		t.Error("token should only come from the environment")
	}
}

func TestSave_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on Windows")
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := Default().Save(path); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file permissions = %o, want 600", perm)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvPort:        "/dev/ttyUSB1",
		EnvBaud:        "38400",
		EnvDriver:      "tarm",
		EnvParity:      "odd",
		EnvInfluxURL:   "http://influx:8086",
		EnvInfluxToken: "tok",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	if err := cfg.applyEnv(lookup); err != nil {
		t.Fatalf("applyEnv() error = %v", err)
	}

	if cfg.Serial.Device != "/dev/ttyUSB1" || cfg.Serial.Baud != 38400 || cfg.Serial.Driver != "tarm" || cfg.Serial.Parity != "odd" {
		t.Errorf("serial = %+v", cfg.Serial)
	}
	if cfg.Influx.URL != "http://influx:8086" || cfg.Influx.Token != "tok" {
		t.Errorf("influx = %+v", cfg.Influx)
	}

	env[EnvBaud] = "fast"
	if err := Default().applyEnv(lookup); err == nil || !strings.Contains(err.Error(), EnvBaud) {
		t.Errorf("applyEnv() with bad baud error = %v", err)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()

	if err := LoadEnv(filepath.Join(dir, "missing.env"), true); err != nil {
		t.Errorf("optional missing .env error = %v", err)
	}
	if err := LoadEnv(filepath.Join(dir, "missing.env"), false); err == nil {
		t.Error("required missing .env should fail")
	}

	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("RTUSCOPE_TEST_LOADENV=from-file\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RTUSCOPE_TEST_LOADENV", "")
	os.Unsetenv("RTUSCOPE_TEST_LOADENV")

	if err := LoadEnv(path, false); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := os.Getenv("RTUSCOPE_TEST_LOADENV"); got != "from-file" {
		t.Errorf("RTUSCOPE_TEST_LOADENV = %q, want from-file", got)
	}
}
