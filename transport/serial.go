package transport

import (
	"time"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial"

	"github.com/moffa90/go-model2450/protocol"
)

// Default serial link parameters of the instrument (115200 8N1).
const (
	DefaultBaudRate    = protocol.DefaultBaudRate
	DefaultReadTimeout = protocol.DefaultReadTimeout
	DefaultPollSlice   = 5 * time.Millisecond
)

// SerialConfig holds the parameters used to open a serial port.
type SerialConfig struct {
	// Port is the device name, e.g. /dev/ttyACM0 or COM6
	Port string

	// BaudRate is the line speed (default 115200)
	BaudRate int

	// ReadTimeout bounds a single Read call (default 1s)
	ReadTimeout time.Duration

	// PollSlice is the timeout of one underlying port read; Available waits
	// at most this long (default 5ms)
	PollSlice time.Duration
}

// DefaultSerialConfig returns the instrument's link parameters for the named port.
func DefaultSerialConfig(port string) SerialConfig {
	return SerialConfig{
		Port:        port,
		BaudRate:    DefaultBaudRate,
		ReadTimeout: DefaultReadTimeout,
		PollSlice:   DefaultPollSlice,
	}
}

// port is the subset of serial.Port the transport relies on.
type port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	SetReadTimeout(t time.Duration) error
	Close() error
}

// openPort is replaced in tests.
var openPort = func(name string, mode *serial.Mode) (port, error) {
	return serial.Open(name, mode)
}

// Serial is a Transport over a local serial port.
type Serial struct {
	cfg     SerialConfig
	port    port
	pending []byte
	scratch []byte
}

// OpenSerial opens the port described by cfg. Zero fields take the defaults.
// A failure is returned as *OpenError, which matches ErrUnavailable.
func OpenSerial(cfg SerialConfig) (*Serial, error) {
	if cfg.BaudRate <= 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.PollSlice <= 0 {
		cfg.PollSlice = DefaultPollSlice
	}

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: protocol.DefaultDataBits,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := openPort(cfg.Port, mode)
	if err != nil {
		return nil, &OpenError{Port: cfg.Port, Err: err}
	}
	if err := p.SetReadTimeout(cfg.PollSlice); err != nil {
		p.Close()
		return nil, &OpenError{Port: cfg.Port, Err: err}
	}

	log.Debug().
		Str("port", cfg.Port).
		Int("baud", cfg.BaudRate).
		Dur("read_timeout", cfg.ReadTimeout).
		Msg("serial port opened")

	return &Serial{
		cfg:     cfg,
		port:    p,
		scratch: make([]byte, 256),
	}, nil
}

// Read implements Transport. Bytes picked up by Available are returned first.
func (s *Serial) Read(p []byte) (int, error) {
	if s.port == nil {
		return 0, ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	n := copy(p, s.pending)
	s.pending = s.pending[n:]

	deadline := time.Now().Add(s.cfg.ReadTimeout)
	for n < len(p) {
		m, err := s.port.Read(p[n:])
		n += m
		if err != nil {
			return n, err
		}
		if !time.Now().Before(deadline) {
			break
		}
	}
	return n, nil
}

// Write implements Transport.
func (s *Serial) Write(p []byte) (int, error) {
	if s.port == nil {
		return 0, ErrClosed
	}
	return s.port.Write(p)
}

// Available implements Transport. It polls the port for one PollSlice and
// keeps anything received for the next Read.
func (s *Serial) Available() (int, error) {
	if s.port == nil {
		return 0, ErrClosed
	}
	n, err := s.port.Read(s.scratch)
	s.pending = append(s.pending, s.scratch[:n]...)
	return len(s.pending), err
}

// Close implements Transport. Closing a closed port is a no-op.
func (s *Serial) Close() error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	s.pending = nil
	log.Debug().Str("port", s.cfg.Port).Msg("serial port closed")
	return err
}

// IsOpen implements Transport.
func (s *Serial) IsOpen() bool {
	return s.port != nil
}

// Name returns the port name.
func (s *Serial) Name() string {
	return s.cfg.Port
}
