package table

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

// Format is an encoding of a Table.
type Format string

const (
	FormatJSON   = Format("json")
	FormatYAML   = Format("yaml")
	FormatCBOR   = Format("cbor")
	FormatBinary = Format("bin")
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatYAML, FormatCBOR, FormatBinary}

// ParseFormat returns the format named s.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML, FormatCBOR, FormatBinary:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", xerrors.Errorf("cannot ParseFormat: %w: %q", ErrUnknownFormat, s)
	}
}

// FormatFromPath returns the format matching the extension of path.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Encode writes t on w in the given format.
func (t *Table) Encode(w io.Writer, format Format) (err error) {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(t)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(t); err == nil {
			err = enc.Close()
		}
	case FormatCBOR:
		err = t.MarshalCBOR(w)
	case FormatBinary:
		_, err = t.WriteTo(w)
	default:
		return xerrors.Errorf("cannot Encode: %w: %q", ErrUnknownFormat, format)
	}

	if err != nil {
		return xerrors.Errorf("cannot Encode %s: %w", format, err)
	}

	return nil
}

// Decode reads a table in the given format from r.
func Decode(r io.Reader, format Format) (t *Table, err error) {

	t = new(Table)

	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(t)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(t)
	case FormatCBOR:
		err = t.UnmarshalCBOR(r)
	case FormatBinary:
		_, err = t.ReadFrom(r)
	default:
		return nil, xerrors.Errorf("cannot Decode: %w: %q", ErrUnknownFormat, format)
	}

	if err != nil {
		return nil, xerrors.Errorf("cannot Decode %s: %w", format, err)
	}

	return t, nil
}

// Hash is a checksum algorithm.
type Hash string

const (
	BLAKE3  = Hash("blake3")
	BLAKE2b = Hash("blake2b")
)

// Checksum returns the hex encoded 256-bit digest of the binary encoding of t.
func (t *Table) Checksum(h Hash) (string, error) {

	data, err := t.MarshalBinary()
	if err != nil {
		return "", xerrors.Errorf("cannot Checksum: %w", err)
	}

	var sum [32]byte
	switch h {
	case BLAKE3:
		sum = blake3.Sum256(data)
	case BLAKE2b:
		sum = blake2b.Sum256(data)
	default:
		return "", xerrors.Errorf("cannot Checksum: %w: %q", ErrUnknownHash, h)
	}

	return hex.EncodeToString(sum[:]), nil
}

// Verify returns ErrChecksumMismatch if the checksum of t is not want.
func (t *Table) Verify(h Hash, want string) error {

	got, err := t.Checksum(h)
	if err != nil {
		return err
	}

	if got != strings.ToLower(want) {
		return xerrors.Errorf("%w: %s checksum is %s, expected %s", ErrChecksumMismatch, h, got, want)
	}

	return nil
}

// Equal returns true if t and other encode to the same bytes.
func (t *Table) Equal(other *Table) bool {
	a, err := t.MarshalBinary()
	if err != nil {
		return false
	}
	b, err := other.MarshalBinary()
	if err != nil {
		return false
	}
	return bytes.Equal(a, b)
}
