package serialport

import (
	"errors"
	"fmt"

	"github.com/goburrow/serial"
)

func openGoburrow(cfg *Config) (Port, error) {
	parity, err := goburrowParity(cfg.Parity)
	if err != nil {
		return nil, &PortError{Op: "open", Device: cfg.Device, Err: err}
	}

	port, err := serial.Open(&serial.Config{
		Address:  cfg.Device,
		BaudRate: cfg.Baud,
		DataBits: cfg.DataBits,
		StopBits: cfg.StopBits,
		Parity:   parity,
		Timeout:  cfg.readTimeout(),
	})
	if err != nil {
		return nil, &PortError{Op: "open", Device: cfg.Device, Err: err}
	}

	return &timeoutPort{
		ReadWriteCloser: port,
		isTimeout:       func(err error) bool { return errors.Is(err, serial.ErrTimeout) },
	}, nil
}

// goburrow/serial only understands N, E and O
func goburrowParity(p Parity) (string, error) {
	switch p {
	case ParityNone:
		return "N", nil
	case ParityEven:
		return "E", nil
	case ParityOdd:
		return "O", nil
	default:
		return "", fmt.Errorf("%w: %s parity with the %s driver", ErrUnsupported, p, DriverGoburrow)
	}
}
