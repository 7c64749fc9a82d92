package serialport

import (
	"errors"
	"io"

	"github.com/tarm/serial"
)

func openTarm(cfg *Config) (Port, error) {
	stop := serial.Stop1
	if cfg.StopBits == 2 {
		stop = serial.Stop2
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.readTimeout(),
		Size:        byte(cfg.DataBits),
		Parity:      tarmParity(cfg.Parity),
		StopBits:    stop,
	})
	if err != nil {
		return nil, &PortError{Op: "open", Device: cfg.Device, Err: err}
	}

	// tarm reports an empty timed-out read as io.EOF
	return &timeoutPort{
		ReadWriteCloser: port,
		isTimeout:       func(err error) bool { return errors.Is(err, io.EOF) },
	}, nil
}

func tarmParity(p Parity) serial.Parity {
	switch p {
	case ParityOdd:
		return serial.ParityOdd
	case ParityEven:
		return serial.ParityEven
	case ParityMark:
		return serial.ParityMark
	case ParitySpace:
		return serial.ParitySpace
	default:
		return serial.ParityNone
	}
}
