package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// BlockSize is the AES block size; the IV occupies exactly one block at the
// front of every envelope.
const BlockSize = aes.BlockSize

var (
	// ErrInvalidMessage reports a Message constructed with neither
	// plaintext nor ciphertext.
	ErrInvalidMessage = errors.New("crypto: either plaintext or ciphertext must be supplied")

	// ErrDecode reports decrypted bytes that are not valid UTF-8, almost
	// always a key mismatch between the two ends of a session.
	ErrDecode = errors.New("crypto: decrypted message is not valid UTF-8")
)

// Message is one encrypted chat message. Plaintext is right-padded with
// ASCII spaces to a block multiple before encryption and trailing
// whitespace is stripped after decryption, so payloads that legitimately
// end in whitespace do not round-trip. The scheme is kept for wire
// compatibility with existing peers.
type Message struct {
	Plaintext  string
	IV         []byte
	Ciphertext []byte
}

// NewMessage builds a Message from exactly one of plaintext or ciphertext.
// Given plaintext, it encrypts under key with a fresh random IV. Given
// ciphertext (an envelope, IV first), it decrypts and validates the result.
func NewMessage(key []byte, plaintext string, ciphertext []byte) (*Message, error) {
	switch {
	case plaintext != "":
		return encrypt(key, plaintext)
	case len(ciphertext) > 0:
		return decrypt(key, ciphertext)
	default:
		return nil, ErrInvalidMessage
	}
}

// Pack serializes the message for transport: IV followed by ciphertext,
// no length prefix. The receiver knows the IV is exactly one block.
func (m *Message) Pack() []byte {
	return append(append([]byte{}, m.IV...), m.Ciphertext...)
}

func encrypt(key []byte, plaintext string) (*Message, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: creating cipher: %w", err)
	}

	iv := make([]byte, BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("crypto: generating IV: %w", err)
	}

	// Pad with spaces so the payload is a whole number of blocks.
	padded := []byte(plaintext)
	padded = append(padded, strings.Repeat(" ", BlockSize-len(padded)%BlockSize)...)

	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return &Message{Plaintext: plaintext, IV: iv, Ciphertext: ciphertext}, nil
}

func decrypt(key []byte, envelope []byte) (*Message, error) {
	if len(envelope) < 2*BlockSize || len(envelope)%BlockSize != 0 {
		return nil, fmt.Errorf("%w: envelope of %d bytes", ErrDecode, len(envelope))
	}
	iv, ciphertext := envelope[:BlockSize], envelope[BlockSize:]

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: creating cipher: %w", err)
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	if !utf8.Valid(padded) {
		return nil, ErrDecode
	}
	plaintext := strings.TrimRightFunc(string(padded), unicode.IsSpace)

	return &Message{Plaintext: plaintext, IV: iv, Ciphertext: ciphertext}, nil
}
