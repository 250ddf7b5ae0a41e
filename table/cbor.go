package table

import (
	"bufio"
	"io"

	cbg "github.com/whyrusleeping/cbor-gen"
	"golang.org/x/xerrors"
)

const (
	tableFields = 8
	leafFields  = 7

	// maxCBORLength bounds the length of decoded strings and arrays.
	maxCBORLength = 1 << 20

	cborFalse = 0xf4
	cborTrue  = 0xf5
)

func writeCBORString(w io.Writer, s string) error {
	if err := cbg.CborWriteHeader(w, cbg.MajTextString, uint64(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func writeCBORStrings(w io.Writer, s []string) error {
	if err := cbg.CborWriteHeader(w, cbg.MajArray, uint64(len(s))); err != nil {
		return err
	}
	for i := range s {
		if err := writeCBORString(w, s[i]); err != nil {
			return err
		}
	}
	return nil
}

func writeCBORInt(w io.Writer, v int) error {
	if v < 0 {
		return cbg.CborWriteHeader(w, cbg.MajNegativeInt, uint64(-v-1))
	}
	return cbg.CborWriteHeader(w, cbg.MajUnsignedInt, uint64(v))
}

func readCBORHeader(r io.Reader, want byte, field string) (extra uint64, err error) {

	var maj byte
	if maj, extra, err = cbg.CborReadHeader(r); err != nil {
		return 0, xerrors.Errorf("%s: %w", field, err)
	}

	if maj != want {
		return 0, xerrors.Errorf("%w: %s: major type %d instead of %d", ErrMalformed, field, maj, want)
	}

	if (want == cbg.MajTextString || want == cbg.MajArray) && extra > maxCBORLength {
		return 0, xerrors.Errorf("%w: %s: length %d exceeds %d", ErrMalformed, field, extra, maxCBORLength)
	}

	return
}

func readCBORString(r io.Reader, field string) (s string, err error) {

	var size uint64
	if size, err = readCBORHeader(r, cbg.MajTextString, field); err != nil {
		return
	}

	b := make([]byte, size)
	if _, err = io.ReadFull(r, b); err != nil {
		return "", xerrors.Errorf("%s: %w", field, err)
	}

	return string(b), nil
}

func readCBORStrings(r io.Reader, field string) (s []string, err error) {

	var size uint64
	if size, err = readCBORHeader(r, cbg.MajArray, field); err != nil {
		return
	}

	s = make([]string, size)
	for i := range s {
		if s[i], err = readCBORString(r, field); err != nil {
			return nil, err
		}
	}

	return
}

func readCBORInt(r io.Reader, field string) (v int, err error) {

	var maj byte
	var extra uint64
	if maj, extra, err = cbg.CborReadHeader(r); err != nil {
		return 0, xerrors.Errorf("%s: %w", field, err)
	}

	if extra > 1<<62 {
		return 0, xerrors.Errorf("%w: %s: integer overflow", ErrMalformed, field)
	}

	switch maj {
	case cbg.MajUnsignedInt:
		return int(extra), nil
	case cbg.MajNegativeInt:
		return -int(extra) - 1, nil
	default:
		return 0, xerrors.Errorf("%w: %s: major type %d is not an integer", ErrMalformed, field, maj)
	}
}

// MarshalCBOR encodes the leaf as a CBOR array.
func (l *Leaf) MarshalCBOR(w io.Writer) error {

	if err := cbg.CborWriteHeader(w, cbg.MajArray, leafFields); err != nil {
		return err
	}

	for _, s := range []string{l.Start, l.End} {
		if err := writeCBORString(w, s); err != nil {
			return err
		}
	}

	for _, s := range [][]string{l.Numerator, l.Denominator} {
		if err := writeCBORStrings(w, s); err != nil {
			return err
		}
	}

	if err := writeCBORString(w, l.PeakError); err != nil {
		return err
	}

	b := []byte{cborFalse}
	if l.Accepted {
		b[0] = cborTrue
	}

	if _, err := w.Write(b); err != nil {
		return err
	}

	return writeCBORString(w, l.Diagnostic)
}

// UnmarshalCBOR decodes a leaf encoded by MarshalCBOR.
func (l *Leaf) UnmarshalCBOR(r io.Reader) (err error) {

	var size uint64
	if size, err = readCBORHeader(r, cbg.MajArray, "leaf"); err != nil {
		return
	}

	if size != leafFields {
		return xerrors.Errorf("%w: leaf has %d fields instead of %d", ErrMalformed, size, leafFields)
	}

	if l.Start, err = readCBORString(r, "leaf.start"); err != nil {
		return
	}

	if l.End, err = readCBORString(r, "leaf.end"); err != nil {
		return
	}

	if l.Numerator, err = readCBORStrings(r, "leaf.numerator"); err != nil {
		return
	}

	if l.Denominator, err = readCBORStrings(r, "leaf.denominator"); err != nil {
		return
	}

	if l.PeakError, err = readCBORString(r, "leaf.peak_error"); err != nil {
		return
	}

	var maj byte
	var extra uint64
	if maj, extra, err = cbg.CborReadHeader(r); err != nil {
		return xerrors.Errorf("leaf.accepted: %w", err)
	}

	if maj != cbg.MajOther || (extra != cborFalse&0x1f && extra != cborTrue&0x1f) {
		return xerrors.Errorf("%w: leaf.accepted is not a boolean", ErrMalformed)
	}

	l.Accepted = extra == cborTrue&0x1f

	l.Diagnostic, err = readCBORString(r, "leaf.diagnostic")

	return
}

// MarshalCBOR encodes the table as a CBOR array.
func (t *Table) MarshalCBOR(w io.Writer) (err error) {

	bw := bufio.NewWriter(w)

	if err = cbg.CborWriteHeader(bw, cbg.MajArray, tableFields); err != nil {
		return
	}

	if err = writeCBORString(bw, t.Function); err != nil {
		return
	}

	for _, v := range []int{t.Digits, t.NumeratorDegree, t.DenominatorDegree} {
		if err = writeCBORInt(bw, v); err != nil {
			return
		}
	}

	for _, s := range []string{t.Start, t.End, t.TargetError} {
		if err = writeCBORString(bw, s); err != nil {
			return
		}
	}

	if err = cbg.CborWriteHeader(bw, cbg.MajArray, uint64(len(t.Leaves))); err != nil {
		return
	}

	for i := range t.Leaves {
		if err = t.Leaves[i].MarshalCBOR(bw); err != nil {
			return
		}
	}

	return bw.Flush()
}

// UnmarshalCBOR decodes a table encoded by MarshalCBOR.
func (t *Table) UnmarshalCBOR(r io.Reader) (err error) {

	br := bufio.NewReader(r)

	var size uint64
	if size, err = readCBORHeader(br, cbg.MajArray, "table"); err != nil {
		return
	}

	if size != tableFields {
		return xerrors.Errorf("%w: table has %d fields instead of %d", ErrMalformed, size, tableFields)
	}

	if t.Function, err = readCBORString(br, "function"); err != nil {
		return
	}

	for _, f := range []struct {
		v    *int
		name string
	}{
		{&t.Digits, "digits"},
		{&t.NumeratorDegree, "numerator_degree"},
		{&t.DenominatorDegree, "denominator_degree"},
	} {
		if *f.v, err = readCBORInt(br, f.name); err != nil {
			return
		}
	}

	for _, f := range []struct {
		s    *string
		name string
	}{
		{&t.Start, "start"},
		{&t.End, "end"},
		{&t.TargetError, "target_error"},
	} {
		if *f.s, err = readCBORString(br, f.name); err != nil {
			return
		}
	}

	if size, err = readCBORHeader(br, cbg.MajArray, "leaves"); err != nil {
		return
	}

	t.Leaves = make([]Leaf, size)
	for i := range t.Leaves {
		if err = t.Leaves[i].UnmarshalCBOR(br); err != nil {
			return xerrors.Errorf("leaf %d: %w", i, err)
		}
	}

	return nil
}
