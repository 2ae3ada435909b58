package capture

import (
	"errors"
	"io"
	"sync"
)

// Silence is a Source that always has a full buffer of zero samples.
type Silence struct{}

func (Silence) Start() error { return nil }
func (Silence) Stop() error  { return nil }

func (Silence) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

// ReaderSource adapts a blocking reader, such as a named pipe fed by an
// external recorder, to a non-blocking Source. A single background goroutine,
// started by the first Start, reads into a bounded buffer for the lifetime of
// the reader; Read drains what is available. While stopped the goroutine keeps
// reading and discards what it gets, so the reader never has two consumers.
type ReaderSource struct {
	r    io.Reader
	size int
	once sync.Once

	mu      sync.Mutex
	pending []byte
	err     error
	active  bool
}

// NewReaderSource buffers at most size bytes from r.
func NewReaderSource(r io.Reader, size int) *ReaderSource {
	if size <= 0 {
		size = 64 * 1024
	}
	return &ReaderSource{r: r, size: size}
}

func (s *ReaderSource) Start() error {
	s.mu.Lock()
	s.active = true
	s.mu.Unlock()
	s.once.Do(func() { go s.pump() })
	return nil
}

func (s *ReaderSource) pump() {
	chunk := make([]byte, 4096)
	for {
		n, err := s.r.Read(chunk)
		s.mu.Lock()
		if s.active && n > 0 {
			s.pending = append(s.pending, chunk[:n]...)
			if over := len(s.pending) - s.size; over > 0 {
				s.pending = s.pending[over:]
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.err = err
			}
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
	}
}

func (s *ReaderSource) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	err := s.err
	s.err = nil
	return n, err
}

// Stop stops buffering and drops what was buffered. Data read from the
// underlying reader until the next Start is discarded.
func (s *ReaderSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	s.pending = nil
	return nil
}
