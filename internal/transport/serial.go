package transport

import (
	"fmt"
	"log"
	"sync"
	"time"

	"go.bug.st/serial"
)

// SerialPort wraps a physical serial device behind the Port interface.
// A background pump goroutine drains the device into an internal buffer
// so Available/Read stay non-blocking for the reader loop.
type SerialPort struct {
	name string
	baud int

	mu   sync.Mutex
	buf  []byte
	port serial.Port
	done chan struct{}
}

// NewSerialPort creates an unopened serial transport.
func NewSerialPort(name string, baud int) *SerialPort {
	return &SerialPort{name: name, baud: baud}
}

// Open opens the device and starts the pump.
func (s *SerialPort) Open() error {
	port, err := serial.Open(s.name, &serial.Mode{BaudRate: s.baud})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", s.name, err)
	}
	if err := port.SetReadTimeout(100 * time.Millisecond); err != nil {
		port.Close()
		return fmt.Errorf("failed to set read timeout on %s: %w", s.name, err)
	}

	s.mu.Lock()
	s.port = port
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.pump(port, s.done)

	log.Printf("[Serial] Opened %s at %d baud", s.name, s.baud)
	return nil
}

// Close stops the pump and releases the device.
func (s *SerialPort) Close() error {
	s.mu.Lock()
	port := s.port
	done := s.done
	s.port = nil
	s.done = nil
	s.mu.Unlock()

	if done != nil {
		close(done)
	}
	if port != nil {
		return port.Close()
	}
	return nil
}

// Available returns the number of buffered bytes.
func (s *SerialPort) Available() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf)
}

// Read drains up to len(p) bytes from the buffer without blocking.
func (s *SerialPort) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

func (s *SerialPort) pump(port serial.Port, done chan struct{}) {
	chunk := make([]byte, 512)
	for {
		select {
		case <-done:
			return
		default:
		}

		n, err := port.Read(chunk)
		if err != nil {
			select {
			case <-done:
			default:
				log.Printf("[Serial] Read error on %s: %v", s.name, err)
			}
			return
		}
		if n == 0 {
			continue // read timeout, poll again
		}

		s.mu.Lock()
		s.buf = append(s.buf, chunk[:n]...)
		s.mu.Unlock()
	}
}
