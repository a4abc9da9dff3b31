package wire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/sablefrost/terra/server/service"
)

// Server accepts TCP connections and hands each one to a Conn. It is the
// implementation of §4.8's wire server.
type Server struct {
	log  *slog.Logger
	svc  *service.Service
	conf Config
	addr string

	mu      sync.Mutex
	ln      net.Listener
	conns   map[*Conn]struct{}
	closing bool
}

// New returns a Server that will listen on addr (host:port) once Serve is
// called.
func New(log *slog.Logger, svc *service.Service, conf Config, addr string) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		log:   log,
		svc:   svc,
		conf:  conf,
		addr:  addr,
		conns: make(map[*Conn]struct{}),
	}
}

// Serve opens the listening socket and accepts connections until ctx is
// cancelled or the listener errors. Each accepted connection is served on
// its own goroutine.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("wire: listen on %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		s.closing = true
		// Unblock every connection's read loop so its handler drains and
		// closes; Serve waits for all of them before returning.
		for c := range s.conns {
			c.nc.SetReadDeadline(time.Now())
		}
		s.mu.Unlock()
		ln.Close()
	}()

	s.log.Info("wire server listening", "addr", s.addr)

	var wg sync.WaitGroup
	for {
		nc, err := ln.Accept()
		if err != nil {
			wg.Wait()
			s.mu.Lock()
			closing := s.closing
			s.mu.Unlock()
			if closing {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("wire: accept: %w", err)
		}

		c := newConn(nc, s.log, s.svc, s.conf)
		s.track(c)

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.untrack(c)
			c.serve()
		}()
	}
}

func (s *Server) track(c *Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[c] = struct{}{}
	if s.closing {
		c.nc.SetReadDeadline(time.Now())
	}
}

func (s *Server) untrack(c *Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, c)
}

// ConnCount returns the number of connections currently being served.
func (s *Server) ConnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}
