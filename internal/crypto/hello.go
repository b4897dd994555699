package crypto

import (
	"fmt"
	"io"
	"math/big"

	"github.com/spec-sec/securechat/internal/wire"
)

// Hello is the opener's handshake frame: the group parameters and the
// opener's public key, each packed to its declared width.
//
//	+-------+-----------+------------+
//	| Prime | Generator | Public Key |
//	|  1024 |    16     |    1024    |
//	+-------+-----------+------------+
type Hello struct {
	P      *big.Int
	G      *big.Int
	Public *big.Int
}

// Bytes encodes the hello frame to its fixed wire.HelloSize form.
func (h *Hello) Bytes() ([]byte, error) {
	buf := make([]byte, 0, wire.HelloSize)
	for _, field := range []struct {
		v     *big.Int
		width int
	}{
		{h.P, wire.LenPrime},
		{h.G, wire.LenGen},
		{h.Public, wire.LenPK},
	} {
		packed, err := wire.Pack(field.v, field.width)
		if err != nil {
			return nil, err
		}
		buf = append(buf, packed...)
	}
	return buf, nil
}

// ParseHello splits a received hello frame into its component values.
func ParseHello(frame []byte) (*Hello, error) {
	if len(frame) != wire.HelloSize {
		return nil, fmt.Errorf("%w: hello frame is %d bytes, want %d",
			ErrKeyExchangeFailed, len(frame), wire.HelloSize)
	}
	return &Hello{
		P:      wire.Unpack(frame[:wire.LenPrime]),
		G:      wire.Unpack(frame[wire.LenPrime : wire.LenPrime+wire.LenGen]),
		Public: wire.Unpack(frame[wire.LenPrime+wire.LenGen:]),
	}, nil
}

// ReadHello reads exactly one hello frame from the stream.
func ReadHello(r io.Reader) (*Hello, error) {
	frame := make([]byte, wire.HelloSize)
	if _, err := io.ReadFull(r, frame); err != nil {
		return nil, fmt.Errorf("%w: reading hello: %v", ErrKeyExchangeFailed, err)
	}
	return ParseHello(frame)
}

// ReadResponse reads the responder's reply: its public key packed to
// wire.LenPK bytes, sent without an envelope.
func ReadResponse(r io.Reader) (*big.Int, error) {
	frame := make([]byte, wire.LenPK)
	if _, err := io.ReadFull(r, frame); err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrKeyExchangeFailed, err)
	}
	return wire.Unpack(frame), nil
}
