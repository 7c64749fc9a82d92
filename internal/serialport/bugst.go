package serialport

import (
	"fmt"

	"go.bug.st/serial"
)

func openBugst(cfg *Config) (Port, error) {
	mode := &serial.Mode{
		BaudRate: cfg.Baud,
		DataBits: cfg.DataBits,
		Parity:   bugstParity(cfg.Parity),
		StopBits: serial.OneStopBit,
	}
	if cfg.StopBits == 2 {
		mode.StopBits = serial.TwoStopBits
	}

	port, err := serial.Open(cfg.Device, mode)
	if err != nil {
		return nil, &PortError{Op: "open", Device: cfg.Device, Err: err}
	}

	// go.bug.st/serial already returns (0, nil) when the timeout elapses
	if err := port.SetReadTimeout(cfg.readTimeout()); err != nil {
		_ = port.Close()
		return nil, &PortError{Op: "configure", Device: cfg.Device, Err: fmt.Errorf("set read timeout: %w", err)}
	}

	return port, nil
}

func bugstParity(p Parity) serial.Parity {
	switch p {
	case ParityOdd:
		return serial.OddParity
	case ParityEven:
		return serial.EvenParity
	case ParityMark:
		return serial.MarkParity
	case ParitySpace:
		return serial.SpaceParity
	default:
		return serial.NoParity
	}
}
