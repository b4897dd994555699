package chat

import (
	"errors"
	"fmt"
	"log"
	"net"
	"sync/atomic"

	"github.com/spec-sec/securechat/internal/crypto"
	"github.com/spec-sec/securechat/internal/params"
	"github.com/spec-sec/securechat/internal/protocol"
)

// Server accepts connections, negotiates a key with each client as the
// handshake opener, and relays every decrypted message to all other active
// sessions, re-encrypted under each recipient's own key.
type Server struct {
	group    params.Group
	listener net.Listener
	registry *Registry
	closed   atomic.Bool
}

// NewServer validates the group and starts listening on addr. The group is
// generated once and shared by every session; only private exponents are
// per-session.
func NewServer(addr string, group params.Group) (*Server, error) {
	if err := group.Validate(); err != nil {
		return nil, err
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("chat: listening on %s: %w", addr, err)
	}
	return &Server{
		group:    group,
		listener: listener,
		registry: NewRegistry(),
	}, nil
}

// Addr is the listener's bound address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Registry exposes the live session set.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Run accepts clients until the server is closed, handling each connection
// in its own goroutine.
func (s *Server) Run() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closed.Load() {
				return nil
			}
			return fmt.Errorf("chat: accept: %w", err)
		}
		go s.handle(conn)
	}
}

// handle owns one connection from accept to teardown.
func (s *Server) handle(conn net.Conn) {
	sess := newSession(conn)
	log.Printf("%s has connected", sess.Addr())

	sess.setState(StateKeyExchanging)
	key, err := s.exchangeKeys(conn)
	if err != nil {
		// Never registered, so no departure notice.
		log.Printf("key exchange with %s failed: %v", sess.Addr(), err)
		sess.Close()
		return
	}
	sess.activate(key)

	s.registry.Add(sess)
	log.Printf("key exchange with %s completed", sess.Addr())
	s.broadcast(protocol.FormatJoined(sess.Addr()), sess)

	s.serve(sess)
}

// exchangeKeys runs the opener side of the handshake: send (p, g, public),
// read the responder's public key, derive the session key.
func (s *Server) exchangeKeys(conn net.Conn) ([]byte, error) {
	pair, err := crypto.GenerateKeyPair(s.group.G, s.group.P)
	if err != nil {
		return nil, err
	}

	hello := &crypto.Hello{P: s.group.P, G: s.group.G, Public: pair.Public}
	frame, err := hello.Bytes()
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write(frame); err != nil {
		return nil, fmt.Errorf("%w: sending hello: %v", crypto.ErrKeyExchangeFailed, err)
	}

	peerPublic, err := crypto.ReadResponse(conn)
	if err != nil {
		return nil, err
	}
	secret, err := crypto.SharedSecret(peerPublic, pair.Private, s.group.P)
	if err != nil {
		return nil, err
	}
	return crypto.SessionKey(secret), nil
}

// serve is the active-phase receive loop for one session.
func (s *Server) serve(sess *Session) {
	defer s.drop(sess)
	for {
		text, err := sess.receive()
		if err != nil {
			if errors.Is(err, crypto.ErrDecode) {
				// Bad key or corrupted frame; the session survives.
				log.Printf("undecipherable message from %s: %v", sess.Addr(), err)
				continue
			}
			return
		}
		if text == protocol.CmdExit {
			if err := sess.Send(protocol.RespAck); err != nil {
				log.Printf("acknowledging %s: %v", sess.Addr(), err)
			}
			return
		}
		log.Printf("%s: %s", sess.Addr(), text)
		s.broadcast(protocol.FormatChat(sess.Addr(), text), sess)
	}
}

// drop tears a session down exactly once: close, deregister, and notify
// the remaining sessions if it had been registered.
func (s *Server) drop(sess *Session) {
	sess.Close()
	if s.registry.Remove(sess) {
		notice := protocol.FormatDeparted(sess.Addr())
		log.Print(notice)
		s.broadcast(notice, nil)
	}
}

// broadcast re-encrypts content for every registered session except
// exclude. A failed write to one recipient never blocks the others; the
// recipient's own receive loop will notice the dead transport.
func (s *Server) broadcast(content string, exclude *Session) {
	for _, peer := range s.registry.Snapshot() {
		if peer == exclude {
			continue
		}
		if err := peer.Send(content); err != nil {
			log.Printf("relay to %s failed: %v", peer.Addr(), err)
		}
	}
}

// Close stops accepting and tears down every registered session.
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := s.listener.Close()
	for _, sess := range s.registry.Snapshot() {
		sess.Close()
		s.registry.Remove(sess)
	}
	return err
}
