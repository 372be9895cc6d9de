package audio

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"
)

const (
	FormatMP3 = "mp3"
	FormatWAV = "wav"
)

var ErrReleased = errors.New("audio resource has been released")

// Resource is an in-memory handle to synthesized speech. It stays usable
// until Close, after which Open fails with ErrReleased.
type Resource struct {
	ID     string
	Title  string
	Format string

	mu       sync.Mutex
	data     []byte
	released bool
}

// NewResource takes ownership of data
func NewResource(title, format string, data []byte) *Resource {
	return &Resource{
		ID:     uuid.NewString(),
		Title:  title,
		Format: format,
		data:   data,
	}
}

// Open returns a fresh seekable reader over the payload
func (r *Resource) Open() (io.ReadSeekCloser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return nil, ErrReleased
	}
	return nopCloser{bytes.NewReader(r.data)}, nil
}

// WriteTo copies the payload to w
func (r *Resource) WriteTo(w io.Writer) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return 0, ErrReleased
	}
	n, err := w.Write(r.data)
	return int64(n), err
}

func (r *Resource) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data)
}

func (r *Resource) Released() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.released
}

// Close drops the payload. Safe to call more than once.
func (r *Resource) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.released = true
	r.data = nil
	return nil
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
