// Package server wires the codec, command parser and executor into the
// per-connection pipeline: a reader goroutine, one spawned goroutine per
// decoded command (pipelining), and a dedicated writer goroutine fed by an
// ordered per-connection reply channel.
package server

import (
	"net"
	"sync"

	"github.com/akashmaji946/redikv/internal/keyspace"
	"github.com/akashmaji946/redikv/internal/logging"
	"github.com/akashmaji946/redikv/internal/metrics"
)

// Server owns the listening socket and the set of live connections, running
// the accept loop and tracking connections so they can all be closed on
// shutdown.
type Server struct {
	ks  *keyspace.Keyspace
	log *logging.Logger
	met *metrics.Metrics

	connsMu sync.Mutex
	conns   map[net.Conn]struct{}
	wg      sync.WaitGroup
}

// New constructs a Server over ks. Multiple Servers may share a Keyspace,
// though in practice this repo runs exactly one of each.
func New(ks *keyspace.Keyspace, log *logging.Logger, met *metrics.Metrics) *Server {
	return &Server{
		ks:    ks,
		log:   log,
		met:   met,
		conns: make(map[net.Conn]struct{}),
	}
}

// Serve runs the accept loop against ln until it is closed (by the caller,
// typically in response to SIGINT/SIGTERM). It returns once every accepted
// connection's handler has returned.
func (s *Server) Serve(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			s.log.Infof("listener closed, stopping accept loop")
			break
		}
		s.log.Infof("accepted connection from %s", conn.RemoteAddr())
		if s.met != nil {
			s.met.ConnectionsAccepted.Inc()
		}

		s.addConn(conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.removeConn(conn)
			s.handleConnection(conn)
		}()
	}
	s.wg.Wait()
}

// CloseAll closes every currently-open connection, used during graceful
// shutdown to unblock any reader goroutines still waiting on conn.Read.
func (s *Server) CloseAll() {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	for c := range s.conns {
		_ = c.Close()
	}
}

func (s *Server) addConn(c net.Conn) {
	s.connsMu.Lock()
	s.conns[c] = struct{}{}
	s.connsMu.Unlock()
}

func (s *Server) removeConn(c net.Conn) {
	s.connsMu.Lock()
	delete(s.conns, c)
	s.connsMu.Unlock()
}
