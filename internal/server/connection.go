package server

import (
	"bufio"
	"errors"
	"net"

	"github.com/akashmaji946/redikv/internal/command"
	"github.com/akashmaji946/redikv/internal/executor"
	"github.com/akashmaji946/redikv/internal/resp"
)

const readChunkSize = 4096

// handleConnection runs the per-connection pipeline for the lifetime of
// one TCP connection: a reader loop that decodes frames and spawns one
// goroutine per command, alongside a dedicated writer goroutine that
// drains an ordered reply channel. Replies are delivered in the order
// commands finish, not the order they arrived — the channel itself
// provides that ordering; nothing reorders it.
func (s *Server) handleConnection(conn net.Conn) {
	replies := make(chan resp.Value, 64)
	done := make(chan struct{})

	go s.writeReplies(conn, replies, done)
	defer close(done)
	defer conn.Close()

	buf := make([]byte, 0, readChunkSize)
	tmp := make([]byte, readChunkSize)

	for {
		for {
			v, n, err := resp.Decode(buf)
			if err != nil {
				var needMore *resp.NeedMore
				if errors.As(err, &needMore) || errors.Is(err, resp.ErrIncomplete) {
					break
				}
				// Protocol error: fatal for the connection. The connection
				// is dropped without attempting a reply.
				s.log.Warnf("protocol error from %s: %v", conn.RemoteAddr(), err)
				if s.met != nil {
					s.met.ProtocolErrors.Inc()
				}
				return
			}
			buf = buf[n:]
			s.wg.Add(1)
			go s.executeOne(v, replies, done)
		}

		n, err := conn.Read(tmp)
		if err != nil {
			return
		}
		buf = append(buf, tmp[:n]...)
	}
}

func (s *Server) executeOne(frame resp.Value, replies chan<- resp.Value, done <-chan struct{}) {
	defer s.wg.Done()

	var out resp.Value
	cmd, err := command.Parse(frame)
	if err != nil {
		out = resp.NewError("Failed to parse command")
	} else {
		out = executor.Execute(cmd, s.ks)
		if s.met != nil {
			s.met.CommandsExecuted.Inc()
		}
	}

	select {
	case replies <- out:
	case <-done:
		// Connection already closing; drop this reply on the floor
		// rather than block forever.
	}
}

func (s *Server) writeReplies(conn net.Conn, replies <-chan resp.Value, done <-chan struct{}) {
	w := bufio.NewWriter(conn)
	buf := make([]byte, 0, 256)
	for {
		select {
		case <-done:
			return
		case v := <-replies:
			buf = v.Encode(buf[:0])
			if _, err := w.Write(buf); err != nil {
				return
			}
			if len(replies) == 0 {
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}
}
