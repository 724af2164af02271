package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"

	"github.com/pokearena/arena/internal/config"
	"github.com/pokearena/arena/internal/discovery"
	"github.com/pokearena/arena/internal/email"
	"github.com/pokearena/arena/internal/logging"
	"github.com/pokearena/arena/internal/menu"
	"github.com/pokearena/arena/internal/registry"
	"github.com/pokearena/arena/internal/render"
)

// Server hosts the arena over SSH and, optionally, WebSocket. Every
// accepted connection gets its own Supervisor; the Server only owns the
// listeners and the shared dependencies.
type Server struct {
	cfg       *config.Config
	deps      Deps
	sshConfig *ssh.ServerConfig

	listener net.Listener
	webSrv   *http.Server
	wg       sync.WaitGroup

	cancel context.CancelFunc
}

// New prepares a server from the given configuration. Logging is
// initialized here so every later component can assume a live logger; an
// empty logLevel defers to the ARENA_LOG_LEVEL environment variable.
func New(cfg *config.Config, logLevel string) (*Server, error) {
	if err := logging.Initialize(logLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	keyPath, err := cfg.HostKeyPath()
	if err != nil {
		return nil, fmt.Errorf("resolve host key path: %w", err)
	}
	signer, err := LoadOrGenerateHostKey(keyPath)
	if err != nil {
		return nil, err
	}

	// Identity is established by email verification inside the session,
	// not at the SSH layer, so any client may connect.
	sshConfig := &ssh.ServerConfig{
		NoClientAuth: true,
	}
	sshConfig.AddHostKey(signer)

	return &Server{
		cfg:       cfg,
		sshConfig: sshConfig,
		deps: Deps{
			Registry: registry.New(),
			Renderer: render.NewFrame(),
			Sender:   email.FromConfig(cfg.Email),
			Machine:  menu.NewMachine(cfg.Session.WrapSelection),
		},
	}, nil
}

// Dependencies exposes the shared session collaborators, mainly for tests.
func (s *Server) Dependencies() Deps {
	return s.deps
}

// Start listens and blocks until a shutdown signal arrives or the accept
// loop fails.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	defer cancel()

	addr := net.JoinHostPort(s.cfg.SSH.Host, fmt.Sprintf("%d", s.cfg.SSH.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	logging.Info("Arena server listening", zap.String("ssh_addr", addr))

	if s.cfg.Advertise {
		stop, err := discovery.Advertise("Pokemon Arena", s.cfg.SSH.Port)
		if err != nil {
			logging.Warn("mDNS advertisement failed", zap.Error(err))
		} else {
			defer stop()
		}
	}

	if s.cfg.Web.Enabled {
		s.startWebServer(ctx)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.acceptConnections(ctx)
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// acceptConnections accepts SSH connections until the listener closes.
func (s *Server) acceptConnections(ctx context.Context) error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			logging.Error("Failed to accept connection", zap.Error(err))
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleSSHConn(ctx, conn)
		}()
	}
}

// Shutdown stops accepting, cancels every running session, and waits for
// them to unwind.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			logging.Error("Error closing listener", zap.Error(err))
		}
	}
	if s.webSrv != nil {
		if err := s.webSrv.Close(); err != nil {
			logging.Error("Error closing web server", zap.Error(err))
		}
	}
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All sessions closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown cancelled, forcing close")
	case <-time.After(10 * time.Second):
		logging.Warn("Shutdown timeout after 10 seconds, forcing close")
	}

	logging.Sync()
	return nil
}

// ActiveSessions returns the number of registered sessions.
func (s *Server) ActiveSessions() int {
	return s.deps.Registry.Len()
}
