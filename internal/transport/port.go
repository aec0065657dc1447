// Package transport abstracts the byte source feeding the reader loop:
// a physical serial port or the in-memory simulator equivalent.
package transport

// Port is a byte-oriented input channel. Available and Read never block;
// the reader loop polls Available and sleeps between polls.
type Port interface {
	// Open acquires the underlying device and starts buffering input.
	Open() error

	// Close releases the device. Safe to call more than once.
	Close() error

	// Available returns the number of buffered bytes readable without
	// blocking.
	Available() int

	// Read copies up to len(p) buffered bytes into p. Returns 0 when no
	// data is pending; it never blocks waiting for more.
	Read(p []byte) (int, error)
}
