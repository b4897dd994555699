// Package wire encodes protocol integers as fixed-width big-endian byte
// fields and frames variable-length messages on the stream. Every integer a
// peer sends (prime, generator, public keys) occupies a declared width so
// handshake messages have a predictable total size and can be read exactly.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/big"
)

// Field widths in bytes for public transport.
const (
	LenPrime = 1024
	LenGen   = 16
	LenPK    = 1024

	// HelloSize is the total size of the handshake hello frame:
	// prime, generator, and the opener's public key.
	HelloSize = LenPrime + LenGen + LenPK
)

// MaxFrame bounds a length-prefixed message frame. The prefix is a uint16,
// so no frame can exceed 65535 bytes.
const MaxFrame = 1<<16 - 1

// ErrLengthExceeded reports an integer whose minimal encoding does not fit
// its declared wire width.
var ErrLengthExceeded = errors.New("wire: length exceeds field width")

// Pack encodes a non-negative integer as exactly width bytes, big-endian,
// left-padded with zero bytes.
func Pack(v *big.Int, width int) ([]byte, error) {
	if v.Sign() < 0 {
		return nil, fmt.Errorf("wire: cannot pack negative value")
	}
	raw := v.Bytes()
	if len(raw) > width {
		return nil, fmt.Errorf("%w: need %d bytes, field is %d", ErrLengthExceeded, len(raw), width)
	}
	buf := make([]byte, width)
	copy(buf[width-len(raw):], raw)
	return buf, nil
}

// Unpack interprets a byte string as a big-endian unsigned integer. Leading
// zero bytes are valid and do not change the value.
func Unpack(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// WriteFrame writes a 2-byte big-endian length prefix followed by the
// payload. The prefix lets the receiver read exact frames instead of
// best-effort chunks.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrame {
		return fmt.Errorf("%w: frame of %d bytes", ErrLengthExceeded, len(payload))
	}
	var prefix [2]byte
	binary.BigEndian.PutUint16(prefix[:], uint16(len(payload)))
	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads one length-prefixed frame from the stream.
func ReadFrame(r io.Reader) ([]byte, error) {
	var prefix [2]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint16(prefix[:])
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
