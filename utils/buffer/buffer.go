// Package buffer reads and writes the fixed-width fields of the binary table
// encoding on writers and readers that expose their internal buffers.
package buffer

import (
	"errors"
	"io"
)

// ErrFull is returned by Buffer.Write when the bytes do not fit in the remaining capacity.
var ErrFull = errors.New("buffer: full")

// Writer is satisfied by *bufio.Writer and *Buffer.
type Writer interface {
	io.Writer
	Flush() (err error)
	AvailableBuffer() []byte
	Available() int
}

// Reader is satisfied by *bufio.Reader and *Buffer.
type Reader interface {
	io.Reader
	Size() int
	Peek(n int) ([]byte, error)
	Discard(n int) (discarded int, err error)
}

// Buffer is a Writer and a Reader over a byte slice of fixed length.
// Writes fill the slice from its start, reads consume it from its start.
type Buffer struct {
	buf  []byte
	w, r int
}

// NewBuffer returns a Buffer over p, ready to read p or to overwrite it.
func NewBuffer(p []byte) *Buffer {
	return &Buffer{buf: p}
}

// NewBufferSize returns an empty Buffer of the given capacity.
func NewBufferSize(size int) *Buffer {
	return &Buffer{buf: make([]byte, size)}
}

// Write appends p, or returns ErrFull without writing anything if p does not fit.
func (b *Buffer) Write(p []byte) (n int, err error) {
	if len(p) > b.Available() {
		return 0, ErrFull
	}
	n = copy(b.buf[b.w:], p)
	b.w += n
	return
}

// Flush is a no-op.
func (b *Buffer) Flush() (err error) {
	return nil
}

// AvailableBuffer returns a zero-length slice over the unwritten bytes.
func (b *Buffer) AvailableBuffer() []byte {
	return b.buf[b.w:b.w]
}

// Available returns the number of bytes that can still be written.
func (b *Buffer) Available() int {
	return len(b.buf) - b.w
}

// Bytes returns the written bytes.
func (b *Buffer) Bytes() []byte {
	return b.buf[:b.w]
}

// Read copies the unread bytes into p and returns io.EOF if they do not fill it.
func (b *Buffer) Read(p []byte) (n int, err error) {
	n = copy(p, b.buf[b.r:])
	b.r += n
	if n < len(p) {
		err = io.EOF
	}
	return
}

// Size returns the number of unread bytes.
func (b *Buffer) Size() int {
	return len(b.buf) - b.r
}

// Peek returns the next n unread bytes without consuming them, or the remaining
// ones and io.EOF if fewer than n are left.
func (b *Buffer) Peek(n int) ([]byte, error) {
	if n > b.Size() {
		return b.buf[b.r:], io.EOF
	}
	return b.buf[b.r : b.r+n], nil
}

// Discard consumes the next n unread bytes, or the remaining ones and io.EOF if
// fewer than n are left.
func (b *Buffer) Discard(n int) (discarded int, err error) {
	if n > b.Size() {
		discarded = b.Size()
		b.r = len(b.buf)
		return discarded, io.EOF
	}
	b.r += n
	return n, nil
}
