package chat

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/awnumar/memguard"

	"github.com/spec-sec/securechat/internal/crypto"
	"github.com/spec-sec/securechat/internal/wire"
)

// UI is the collaborator that renders received text to the user.
type UI interface {
	Display(text string)
}

// Client is the responder side of a session: it answers the server's hello
// with its own public key, then forwards decrypted traffic to the UI and
// user-submitted text to the transport.
type Client struct {
	conn net.Conn
	ui   UI

	mu     sync.Mutex
	key    *memguard.LockedBuffer
	closed bool
}

// Dial connects to the server without negotiating a key. Handshake must
// complete before Send or Run.
func Dial(addr string, ui UI) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("chat: connecting to %s: %w", addr, err)
	}
	return &Client{conn: conn, ui: ui}, nil
}

// Handshake performs the responder role of the key exchange: read the
// opener's (p, g, public) frame, reply with a fresh public key, derive the
// session key.
func (c *Client) Handshake() error {
	hello, err := crypto.ReadHello(c.conn)
	if err != nil {
		return err
	}

	pair, err := crypto.GenerateKeyPair(hello.G, hello.P)
	if err != nil {
		return err
	}
	response, err := wire.Pack(pair.Public, wire.LenPK)
	if err != nil {
		return err
	}
	if _, err := c.conn.Write(response); err != nil {
		return fmt.Errorf("%w: sending response: %v", crypto.ErrKeyExchangeFailed, err)
	}

	secret, err := crypto.SharedSecret(hello.Public, pair.Private, hello.P)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.key = memguard.NewBufferFromBytes(crypto.SessionKey(secret))
	c.mu.Unlock()
	return nil
}

// Send encrypts text under the session key and writes it as one frame.
func (c *Client) Send(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.key == nil {
		return ErrSessionClosed
	}
	msg, err := crypto.NewMessage(c.key.Bytes(), text, nil)
	if err != nil {
		return err
	}
	return wire.WriteFrame(c.conn, msg.Pack())
}

// Run receives frames until the transport closes, handing each decrypted
// message to the UI. Undecipherable frames are surfaced to the UI but do
// not end the session.
func (c *Client) Run() {
	for {
		frame, err := wire.ReadFrame(c.conn)
		if err != nil {
			c.ui.Display("Connection Lost")
			c.Close()
			return
		}

		text, err := c.decode(frame)
		if err != nil {
			if errors.Is(err, ErrSessionClosed) {
				return
			}
			c.ui.Display(fmt.Sprintf("Unable to read message: %v", err))
			continue
		}
		c.ui.Display(text)
	}
}

func (c *Client) decode(frame []byte) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.key == nil {
		return "", ErrSessionClosed
	}
	msg, err := crypto.NewMessage(c.key.Bytes(), "", frame)
	if err != nil {
		return "", err
	}
	return msg.Plaintext, nil
}

// Close destroys the session key and closes the transport. Safe to call
// more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.key != nil {
		c.key.Destroy()
		c.key = nil
	}
	return c.conn.Close()
}
