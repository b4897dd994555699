// Package chat implements the secure-session layer: the per-connection
// Session state machine, the registry of broadcast-eligible sessions, the
// server's relay loop, and the client's responder role.
package chat

import (
	"errors"
	"net"
	"sync"

	"github.com/awnumar/memguard"

	"github.com/spec-sec/securechat/internal/crypto"
	"github.com/spec-sec/securechat/internal/wire"
)

// State tracks a session's lifecycle. Transitions only move forward:
// Connected → KeyExchanging → Active → Closed, with a failed exchange
// jumping straight to Closed.
type State int

const (
	StateConnected State = iota
	StateKeyExchanging
	StateActive
	StateClosed
)

// ErrSessionClosed reports a send on a session that is not active.
var ErrSessionClosed = errors.New("chat: session is closed")

// Session pairs a transport connection with its negotiated symmetric key.
// The key lives in a locked buffer and is destroyed on close. All writes
// are serialized: the relay, the exit acknowledgement, and lifecycle
// notices may send concurrently.
type Session struct {
	conn net.Conn
	addr string

	mu    sync.Mutex
	state State
	key   *memguard.LockedBuffer
}

func newSession(conn net.Conn) *Session {
	addr := conn.RemoteAddr().String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	return &Session{conn: conn, addr: addr}
}

// Addr is the remote host the session belongs to.
func (s *Session) Addr() string { return s.addr }

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// activate installs the derived session key and marks the session Active.
func (s *Session) activate(key []byte) {
	s.mu.Lock()
	s.key = memguard.NewBufferFromBytes(key)
	s.state = StateActive
	s.mu.Unlock()
}

// Send encrypts content under the session key and writes it as one frame.
func (s *Session) Send(content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return ErrSessionClosed
	}
	msg, err := crypto.NewMessage(s.key.Bytes(), content, nil)
	if err != nil {
		return err
	}
	return wire.WriteFrame(s.conn, msg.Pack())
}

// receive blocks on the transport for the next frame and decrypts it.
// Only the session's owning goroutine calls receive.
func (s *Session) receive() (string, error) {
	frame, err := wire.ReadFrame(s.conn)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return "", ErrSessionClosed
	}
	msg, err := crypto.NewMessage(s.key.Bytes(), "", frame)
	if err != nil {
		return "", err
	}
	return msg.Plaintext, nil
}

// Close tears the session down: key material is destroyed and the
// transport closed. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return nil
	}
	s.state = StateClosed
	if s.key != nil {
		s.key.Destroy()
		s.key = nil
	}
	return s.conn.Close()
}
