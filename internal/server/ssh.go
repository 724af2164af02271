package server

import (
	"context"
	"encoding/binary"
	"io"
	"net"

	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"

	"github.com/pokearena/arena/internal/logging"
	"github.com/pokearena/arena/internal/screen"
	"github.com/pokearena/arena/internal/session"
)

// inboundBuffer is the capacity of the raw-bytes channel between the
// transport reader and the supervisor.
const inboundBuffer = 16

// handleSSHConn performs the SSH handshake and serves session channels.
// One TCP connection may in principle carry several session channels;
// each gets its own Supervisor and registry identity.
func (s *Server) handleSSHConn(ctx context.Context, nConn net.Conn) {
	remoteAddr := nConn.RemoteAddr().String()
	logging.LogConnection(remoteAddr, "connection_accepted")

	sshConn, chans, reqs, err := ssh.NewServerConn(nConn, s.sshConfig)
	if err != nil {
		logging.Warn("SSH handshake failed",
			zap.String("remote_addr", remoteAddr), zap.Error(err))
		_ = nConn.Close()
		return
	}
	defer func() {
		_ = sshConn.Close()
		logging.LogConnection(remoteAddr, "connection_closed")
	}()
	go ssh.DiscardRequests(reqs)

	for newChannel := range chans {
		if newChannel.ChannelType() != "session" {
			_ = newChannel.Reject(ssh.UnknownChannelType, "only session channels are supported")
			continue
		}
		channel, requests, err := newChannel.Accept()
		if err != nil {
			logging.Error("Failed to accept session channel",
				zap.String("remote_addr", remoteAddr), zap.Error(err))
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveSessionChannel(ctx, remoteAddr, channel, requests)
		}()
	}
}

// serveSessionChannel bridges one SSH session channel to a Supervisor.
// Three goroutines per channel: the request handler (pty-req, shell,
// window-change), the reader, and the writer. The supervisor runs on the
// calling goroutine and its teardown releases the other two.
func (s *Server) serveSessionChannel(ctx context.Context, remoteAddr string, channel ssh.Channel, requests <-chan *ssh.Request) {
	defer func() { _ = channel.Close() }()

	inbound := make(chan []byte, inboundBuffer)
	resizes := make(chan session.Viewport, 4)
	out := screen.NewOutbound(s.cfg.Session.OutboundBuffer)

	deliverResize := func(vp session.Viewport) {
		select {
		case resizes <- vp:
		case <-out.Done():
		}
	}

	go func() {
		for req := range requests {
			switch req.Type {
			case "pty-req":
				if vp, ok := parsePtyRequest(req.Payload); ok {
					deliverResize(vp)
				}
				if req.WantReply {
					_ = req.Reply(true, nil)
				}
			case "window-change":
				if vp, ok := parseWindowChange(req.Payload); ok {
					deliverResize(vp)
				}
				if req.WantReply {
					_ = req.Reply(true, nil)
				}
			case "shell":
				if req.WantReply {
					_ = req.Reply(true, nil)
				}
			default:
				if req.WantReply {
					_ = req.Reply(false, nil)
				}
			}
		}
	}()

	go func() {
		defer close(inbound)
		buf := make([]byte, 1024)
		for {
			n, err := channel.Read(buf)
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				select {
				case inbound <- data:
				case <-out.Done():
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					logging.Debug("SSH channel read ended",
						zap.String("remote_addr", remoteAddr), zap.Error(err))
				}
				return
			}
		}
	}()

	go func() {
		for {
			select {
			case frame := <-out.Recv():
				if _, err := channel.Write(frame); err != nil {
					out.Close()
					return
				}
			case <-out.Done():
				return
			}
		}
	}()

	sup := NewSupervisor(&Conn{
		RemoteAddr: remoteAddr,
		Inbound:    inbound,
		Resizes:    resizes,
		Outbound:   out,
	}, s.deps)
	sup.Run(ctx)
}

// parsePtyRequest extracts the initial terminal size from a pty-req
// payload: TERM string, then cols, rows, width, height as uint32s.
func parsePtyRequest(payload []byte) (session.Viewport, bool) {
	if len(payload) < 4 {
		return session.Viewport{}, false
	}
	termLen := binary.BigEndian.Uint32(payload)
	rest := payload[4:]
	if uint32(len(rest)) < termLen+8 {
		return session.Viewport{}, false
	}
	rest = rest[termLen:]
	return session.Viewport{
		Cols: int(binary.BigEndian.Uint32(rest)),
		Rows: int(binary.BigEndian.Uint32(rest[4:])),
	}, true
}

// parseWindowChange extracts the new size from a window-change payload:
// cols, rows, width, height as uint32s.
func parseWindowChange(payload []byte) (session.Viewport, bool) {
	if len(payload) < 8 {
		return session.Viewport{}, false
	}
	return session.Viewport{
		Cols: int(binary.BigEndian.Uint32(payload)),
		Rows: int(binary.BigEndian.Uint32(payload[4:])),
	}, true
}
