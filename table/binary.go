package table

import (
	"bufio"
	"io"

	"golang.org/x/xerrors"

	"github.com/ratfit/ratfit/utils/buffer"
)

// binaryVersion prefixes the binary encoding.
const binaryVersion = 1

// BinarySize returns the serialized size of the leaf in bytes.
func (l *Leaf) BinarySize() int {
	return buffer.StringSize(l.Start) +
		buffer.StringSize(l.End) +
		buffer.StringSliceSize(l.Numerator) +
		buffer.StringSliceSize(l.Denominator) +
		buffer.StringSize(l.PeakError) +
		1 +
		buffer.StringSize(l.Diagnostic)
}

// WriteTo writes the leaf on w.
func (l *Leaf) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		var inc int64

		for _, s := range []string{l.Start, l.End} {
			if inc, err = buffer.WriteString(w, s); err != nil {
				return n + inc, err
			}
			n += inc
		}

		for _, s := range [][]string{l.Numerator, l.Denominator} {
			if inc, err = buffer.WriteStringSlice(w, s); err != nil {
				return n + inc, err
			}
			n += inc
		}

		if inc, err = buffer.WriteString(w, l.PeakError); err != nil {
			return n + inc, err
		}
		n += inc

		if inc, err = buffer.WriteBool(w, l.Accepted); err != nil {
			return n + inc, err
		}
		n += inc

		if inc, err = buffer.WriteString(w, l.Diagnostic); err != nil {
			return n + inc, err
		}

		return n + inc, nil

	default:
		bw := bufio.NewWriter(w)
		if n, err = l.WriteTo(bw); err != nil {
			return
		}
		return n, bw.Flush()
	}
}

// ReadFrom reads the leaf from r.
func (l *Leaf) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:

		var inc int64

		for _, s := range []*string{&l.Start, &l.End} {
			if inc, err = buffer.ReadString(r, s); err != nil {
				return n + inc, err
			}
			n += inc
		}

		for _, s := range []*[]string{&l.Numerator, &l.Denominator} {
			if inc, err = buffer.ReadStringSlice(r, s); err != nil {
				return n + inc, err
			}
			n += inc
		}

		if inc, err = buffer.ReadString(r, &l.PeakError); err != nil {
			return n + inc, err
		}
		n += inc

		if inc, err = buffer.ReadBool(r, &l.Accepted); err != nil {
			return n + inc, err
		}
		n += inc

		if inc, err = buffer.ReadString(r, &l.Diagnostic); err != nil {
			return n + inc, err
		}

		return n + inc, nil

	default:
		return l.ReadFrom(bufio.NewReader(r))
	}
}

// BinarySize returns the serialized size of the table in bytes.
func (t *Table) BinarySize() (size int) {
	size = 1 + buffer.StringSize(t.Function) + 3*8
	size += buffer.StringSize(t.Start) + buffer.StringSize(t.End) + buffer.StringSize(t.TargetError)
	size += 8
	for i := range t.Leaves {
		size += t.Leaves[i].BinarySize()
	}
	return
}

// WriteTo writes the table on w.
//
// Unless w implements the buffer.Writer interface (see utils/buffer/writer.go),
// it is wrapped into a bufio.Writer which is flushed before returning.
func (t *Table) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		var inc int64

		if inc, err = buffer.WriteUint8(w, binaryVersion); err != nil {
			return n + inc, err
		}
		n += inc

		if inc, err = buffer.WriteString(w, t.Function); err != nil {
			return n + inc, err
		}
		n += inc

		for _, v := range []int{t.Digits, t.NumeratorDegree, t.DenominatorDegree} {
			if inc, err = buffer.WriteInt(w, v); err != nil {
				return n + inc, err
			}
			n += inc
		}

		for _, s := range []string{t.Start, t.End, t.TargetError} {
			if inc, err = buffer.WriteString(w, s); err != nil {
				return n + inc, err
			}
			n += inc
		}

		if inc, err = buffer.WriteInt(w, len(t.Leaves)); err != nil {
			return n + inc, err
		}
		n += inc

		for i := range t.Leaves {
			if inc, err = t.Leaves[i].WriteTo(w); err != nil {
				return n + inc, err
			}
			n += inc
		}

		return n, w.Flush()

	default:
		bw := bufio.NewWriter(w)
		if n, err = t.WriteTo(bw); err != nil {
			return
		}
		return n, bw.Flush()
	}
}

// ReadFrom reads the table from r.
//
// Unless r implements the buffer.Reader interface (see utils/buffer/reader.go),
// it is wrapped into a bufio.Reader.
func (t *Table) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:

		var inc int64

		var version uint8
		if inc, err = buffer.ReadUint8(r, &version); err != nil {
			return n + inc, err
		}
		n += inc

		if version != binaryVersion {
			return n, xerrors.Errorf("cannot ReadFrom: %w: binary version %d", ErrMalformed, version)
		}

		if inc, err = buffer.ReadString(r, &t.Function); err != nil {
			return n + inc, err
		}
		n += inc

		for _, v := range []*int{&t.Digits, &t.NumeratorDegree, &t.DenominatorDegree} {
			if inc, err = buffer.ReadInt(r, v); err != nil {
				return n + inc, err
			}
			n += inc
		}

		for _, s := range []*string{&t.Start, &t.End, &t.TargetError} {
			if inc, err = buffer.ReadString(r, s); err != nil {
				return n + inc, err
			}
			n += inc
		}

		var size int
		if inc, err = buffer.ReadInt(r, &size); err != nil {
			return n + inc, err
		}
		n += inc

		if size < 0 || size > buffer.MaxSliceLen {
			return n, xerrors.Errorf("cannot ReadFrom: %w: %d leaves", ErrMalformed, size)
		}

		t.Leaves = make([]Leaf, size)
		for i := range t.Leaves {
			if inc, err = t.Leaves[i].ReadFrom(r); err != nil {
				return n + inc, err
			}
			n += inc
		}

		return n, nil

	default:
		return t.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the table on a slice of bytes.
func (t *Table) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(t.BinarySize())
	_, err = t.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by MarshalBinary on the table.
func (t *Table) UnmarshalBinary(p []byte) (err error) {
	_, err = t.ReadFrom(buffer.NewBuffer(p))
	return
}
