package buffer

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxSliceLen is the maximum number of elements or bytes that ReadString and
// ReadStringSlice accept from a length prefix.
const MaxSliceLen = 1 << 24

// ReadUint8 reads a byte from r and stores the result into *c.
func ReadUint8(r Reader, c *uint8) (n int64, err error) {

	if c == nil {
		return 0, fmt.Errorf("cannot ReadUint8: c is nil")
	}

	var bb = [1]byte{}

	var nint int
	if nint, err = io.ReadFull(r, bb[:]); err != nil {
		return int64(nint), err
	}

	*c = bb[0]

	return int64(nint), nil
}

// ReadBool reads a byte from r and stores whether it is non-zero into *c.
func ReadBool(r Reader, c *bool) (n int64, err error) {

	if c == nil {
		return 0, fmt.Errorf("cannot ReadBool: c is nil")
	}

	var b uint8
	if n, err = ReadUint8(r, &b); err != nil {
		return
	}

	*c = b != 0

	return
}

// ReadUint8Slice reads len(c) bytes from r into c.
func ReadUint8Slice(r Reader, c []uint8) (n int64, err error) {
	nint, err := io.ReadFull(r, c)
	return int64(nint), err
}

// ReadUint64 reads an uint64 from r and stores the result into *c.
func ReadUint64(r Reader, c *uint64) (n int64, err error) {

	if c == nil {
		return 0, fmt.Errorf("cannot ReadUint64: c is nil")
	}

	var bb = [8]byte{}

	var nint int
	if nint, err = io.ReadFull(r, bb[:]); err != nil {
		return int64(nint), err
	}

	*c = binary.LittleEndian.Uint64(bb[:])

	return int64(nint), nil
}

// ReadInt reads an uint64 from r and stores it into *c as an int.
func ReadInt(r Reader, c *int) (n int64, err error) {

	if c == nil {
		return 0, fmt.Errorf("cannot ReadInt: c is nil")
	}

	var u uint64
	if n, err = ReadUint64(r, &u); err != nil {
		return
	}

	*c = int(u)

	return
}

// ReadString reads a length-prefixed string written by WriteString.
func ReadString(r Reader, s *string) (n int64, err error) {

	if s == nil {
		return 0, fmt.Errorf("cannot ReadString: s is nil")
	}

	var size uint64
	var inc int64
	if inc, err = ReadUint64(r, &size); err != nil {
		return n + inc, err
	}

	n += inc

	if size > MaxSliceLen {
		return n, fmt.Errorf("cannot ReadString: length %d exceeds %d", size, MaxSliceLen)
	}

	b := make([]byte, size)
	if inc, err = ReadUint8Slice(r, b); err != nil {
		return n + inc, err
	}

	*s = string(b)

	return n + inc, nil
}

// ReadStringSlice reads a slice of strings written by WriteStringSlice.
func ReadStringSlice(r Reader, s *[]string) (n int64, err error) {

	if s == nil {
		return 0, fmt.Errorf("cannot ReadStringSlice: s is nil")
	}

	var size uint64
	var inc int64
	if inc, err = ReadUint64(r, &size); err != nil {
		return n + inc, err
	}

	n += inc

	if size > MaxSliceLen {
		return n, fmt.Errorf("cannot ReadStringSlice: length %d exceeds %d", size, MaxSliceLen)
	}

	*s = make([]string, size)
	for i := range *s {
		if inc, err = ReadString(r, &(*s)[i]); err != nil {
			return n + inc, err
		}
		n += inc
	}

	return
}
