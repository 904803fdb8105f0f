package device

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	serial "go.bug.st/serial"
)

// DefaultReelBaud is the baud rate of a reel attached to the UART.
const DefaultReelBaud = 230400

var (
	// ErrReadTimeout is returned by ReadLine when no line arrives in time.
	ErrReadTimeout = errors.New("read timeout")
	// ErrPortLost is returned by ReadLine when the open port fails. Open reopens it.
	ErrPortLost = errors.New("serial port lost")
	// ErrNotOpen is returned while the port is lost and not yet reopened.
	ErrNotOpen = errors.New("serial port not open")
)

type portOpener func(dev string, baud int) (io.ReadWriteCloser, error)

func openSerial(dev string, baud int) (io.ReadWriteCloser, error) {
	p, err := serial.Open(dev, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SerialDevice implements Device using go.bug.st/serial.
// Close may be called while another goroutine is inside ReadLine.
type SerialDevice struct {
	dev  string
	baud int
	open portOpener

	mu     sync.Mutex
	port   io.ReadWriteCloser
	r      *lineReader
	closed bool
}

// NewSerialDevice creates and opens a serial device with the given path and baudrate.
func NewSerialDevice(dev string, baud int) (*SerialDevice, error) {
	return newSerialDevice(dev, baud, openSerial)
}

func newSerialDevice(dev string, baud int, open portOpener) (*SerialDevice, error) {
	if baud <= 0 {
		baud = DefaultReelBaud
	}
	s := &SerialDevice{dev: dev, baud: baud, open: open}
	if err := s.Open(); err != nil {
		return nil, err
	}
	return s, nil
}

// Open opens the port if it is not open. It is a no-op on an open port.
func (s *SerialDevice) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("serial device closed")
	}
	if s.port != nil {
		return nil
	}
	p, err := s.open(s.dev, s.baud)
	if err != nil {
		return fmt.Errorf("failed to open serial %s: %w", s.dev, err)
	}
	s.port = p
	s.r = newLineReader(p)
	return nil
}

// Close closes the underlying serial connection. Later reads return io.EOF.
func (s *SerialDevice) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return s.release()
}

// release closes the port and stops its reader. Callers hold mu.
func (s *SerialDevice) release() error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.r.stop()
	s.port = nil
	s.r = nil
	return err
}

// ReadLine reads a single line from the serial port, blocking until newline or timeout.
func (s *SerialDevice) ReadLine(timeout time.Duration) (string, error) {
	s.mu.Lock()
	r, closed := s.r, s.closed
	s.mu.Unlock()
	if closed {
		return "", io.EOF
	}
	if r == nil {
		return "", ErrNotOpen
	}

	line, err := r.ReadLine(timeout)
	if err == nil || errors.Is(err, ErrReadTimeout) {
		return line, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return line, io.EOF
	}
	if s.r == r {
		_ = s.release()
	}
	return line, fmt.Errorf("%w: %s: %v", ErrPortLost, s.dev, err)
}

// WriteLine writes a single line followed by '\n' to the serial port.
func (s *SerialDevice) WriteLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return ErrNotOpen
	}
	_, err := s.port.Write(append([]byte(line), '\n'))
	return err
}
