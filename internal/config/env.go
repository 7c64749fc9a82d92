package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file
const (
	EnvPort        = "RTUSCOPE_PORT"
	EnvBaud        = "RTUSCOPE_BAUD"
	EnvDriver      = "RTUSCOPE_DRIVER"
	EnvParity      = "RTUSCOPE_PARITY"
	EnvInfluxURL   = "RTUSCOPE_INFLUX_URL"
	EnvInfluxToken = "RTUSCOPE_INFLUX_TOKEN"
)

// LoadEnv loads KEY=value pairs from a .env file into the process
// environment. Variables already set win. A missing file is not an error
// when optional is true.
func LoadEnv(path string, optional bool) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if optional && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("error loading %s: %w", path, err)
}

// ApplyEnv overrides configuration values from the environment
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPort); ok && v != "" {
		c.Serial.Device = v
	}
	if v, ok := lookup(EnvBaud); ok && v != "" {
		baud, err := strconv.Atoi(v)
		if err != nil || baud <= 0 {
			return fmt.Errorf("%s: invalid baud rate %q", EnvBaud, v)
		}
		c.Serial.Baud = baud
	}
	if v, ok := lookup(EnvDriver); ok && v != "" {
		c.Serial.Driver = v
	}
	if v, ok := lookup(EnvParity); ok && v != "" {
		c.Serial.Parity = v
	}
	if v, ok := lookup(EnvInfluxURL); ok && v != "" {
		c.Influx.URL = v
	}
	if v, ok := lookup(EnvInfluxToken); ok {
		c.Influx.Token = v
	}
	return nil
}
