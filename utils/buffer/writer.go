package buffer

import (
	"encoding/binary"
	"fmt"
)

// WriteUint8 writes a byte c to w.
func WriteUint8(w Writer, c uint8) (n int64, err error) {

	if w.Available() == 0 {
		if err = w.Flush(); err != nil {
			return
		}

		if w.Available() == 0 {
			return 0, fmt.Errorf("cannot WriteUint8: available buffer is zero even after flush")
		}
	}

	nint, err := w.Write([]byte{c})

	return int64(nint), err
}

// WriteBool writes c to w as a single byte.
func WriteBool(w Writer, c bool) (n int64, err error) {
	if c {
		return WriteUint8(w, 1)
	}
	return WriteUint8(w, 0)
}

// WriteUint8Slice writes a slice of bytes c to w.
func WriteUint8Slice(w Writer, c []uint8) (n int64, err error) {

	if len(c) == 0 {
		return
	}

	// Remaining available space in the internal buffer
	available := w.Available()

	if available == 0 {

		if err = w.Flush(); err != nil {
			return
		}

		available = w.Available()

		if available == 0 {
			return 0, fmt.Errorf("cannot WriteUint8Slice: available buffer is zero even after flush")
		}
	}

	buf := w.AvailableBuffer()

	if N := len(c); N <= available { // If there is enough space in the available buffer
		buf = buf[:N]

		copy(buf, c)

		nint, err := w.Write(buf)

		return int64(nint), err
	}

	// First fills the space
	buf = buf[:available]

	copy(buf, c)

	var inc int
	if inc, err = w.Write(buf); err != nil {
		return n + int64(inc), err
	}

	n += int64(inc)

	// Flushes
	if err = w.Flush(); err != nil {
		return n, err
	}

	// Then recurses on itself with the remaining slice
	var inc64 int64
	inc64, err = WriteUint8Slice(w, c[available:])

	return n + inc64, err
}

// WriteUint64 writes an uint64 c to w.
func WriteUint64(w Writer, c uint64) (n int64, err error) {

	if w.Available()>>3 == 0 {
		if err = w.Flush(); err != nil {
			return
		}

		if w.Available()>>3 == 0 {
			return 0, fmt.Errorf("cannot WriteUint64: available buffer/8 is zero even after flush")
		}
	}

	buf := w.AvailableBuffer()[:8]

	binary.LittleEndian.PutUint64(buf, c)

	nint, err := w.Write(buf)

	return int64(nint), err
}

// WriteInt writes an int c to w as an uint64.
func WriteInt(w Writer, c int) (n int64, err error) {
	return WriteUint64(w, uint64(c))
}

// WriteString writes the length of s followed by its bytes to w.
func WriteString(w Writer, s string) (n int64, err error) {

	var inc int64
	if inc, err = WriteUint64(w, uint64(len(s))); err != nil {
		return n + inc, err
	}

	n += inc

	inc, err = WriteUint8Slice(w, []byte(s))

	return n + inc, err
}

// WriteStringSlice writes the number of elements of s followed by each element to w.
func WriteStringSlice(w Writer, s []string) (n int64, err error) {

	var inc int64
	if inc, err = WriteUint64(w, uint64(len(s))); err != nil {
		return n + inc, err
	}

	n += inc

	for i := range s {
		if inc, err = WriteString(w, s[i]); err != nil {
			return n + inc, err
		}
		n += inc
	}

	return
}

// StringSize returns the number of bytes written by WriteString for s.
func StringSize(s string) int {
	return 8 + len(s)
}

// StringSliceSize returns the number of bytes written by WriteStringSlice for s.
func StringSliceSize(s []string) (size int) {
	size = 8
	for i := range s {
		size += StringSize(s[i])
	}
	return
}
