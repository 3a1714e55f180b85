// Package ipc implements the supervisor's local control plane (C5): a Unix
// domain stream socket serving status/start/pause/resume/delete, one
// request per connection, framed as a single JSON object each way.
package ipc

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"os"
	"time"

	"github.com/spotifreak/spotifreak/errs"
	"github.com/spotifreak/spotifreak/l3"
	"github.com/spotifreak/spotifreak/lifecycle"
	"github.com/spotifreak/spotifreak/supervisor"
)

// maxRequestBytes bounds a single request per spec.md §4.4.
const maxRequestBytes = 64 * 1024

// acceptTimeout lets the accept loop observe the stop signal promptly.
const acceptTimeout = 1 * time.Second

// Server is a lifecycle.Component wrapping the IPC listener, mirroring the
// embedding pattern rest.Server uses for its HTTP listener.
type Server struct {
	*lifecycle.SimpleComponent

	socketPath string
	sv         *supervisor.Supervisor
	logger     l3.Logger

	listener *net.UnixListener
	stopCh   chan struct{}
}

// NewServer builds an IPC server bound to socketPath, not yet listening.
func NewServer(socketPath string, sv *supervisor.Supervisor, logger l3.Logger) *Server {
	s := &Server{socketPath: socketPath, sv: sv, logger: logger, stopCh: make(chan struct{})}
	s.SimpleComponent = &lifecycle.SimpleComponent{
		CompId:    "ipc_server",
		StartFunc: s.listen,
		StopFunc:  s.shutdown,
	}
	return s
}

// listen unlinks any stale socket file, binds, and starts the accept loop.
// Per spec.md §4.4: a path that cannot be unlinked or bound is a startup
// failure (IPCBindFailed), not a degraded-mode fallback.
func (s *Server) listen() error {
	if _, err := os.Stat(s.socketPath); err == nil {
		if err := os.Remove(s.socketPath); err != nil {
			return errs.Newf(errs.IPCBindFailed, "removing stale socket %s: %v", s.socketPath, err)
		}
	}

	addr, err := net.ResolveUnixAddr("unix", s.socketPath)
	if err != nil {
		return errs.Newf(errs.IPCBindFailed, "resolving socket path %s: %v", s.socketPath, err)
	}
	listener, err := net.ListenUnix("unix", addr)
	if err != nil {
		return errs.Newf(errs.IPCBindFailed, "binding socket %s: %v", s.socketPath, err)
	}
	s.listener = listener

	go s.acceptLoop()
	s.logger.InfoF("ipc: listening on %s", s.socketPath)
	return nil
}

func (s *Server) shutdown() error {
	close(s.stopCh)
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	os.Remove(s.socketPath)
	return err
}

// acceptLoop accepts with a 1-second deadline so it notices stopCh without
// blocking shutdown (spec.md §4.4's "accept with 1-second timeout").
func (s *Server) acceptLoop() {
	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		s.listener.SetDeadline(time.Now().Add(acceptTimeout))
		conn, err := s.listener.Accept()
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			select {
			case <-s.stopCh:
				return
			default:
				s.logger.ErrorF("ipc: accept error: %v", err)
				continue
			}
		}
		go s.handleConn(conn)
	}
}

// handleConn reads exactly one request, dispatches it, writes exactly one
// response, and closes the connection. Never lets a panic escape: spec.md
// §4.4 requires the server to never crash on a bad request.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	res := s.process(conn)

	enc := json.NewEncoder(conn)
	if err := enc.Encode(res); err != nil {
		s.logger.WarnF("ipc: writing response: %v", err)
	}
}

func (s *Server) process(conn net.Conn) (res response) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorF("ipc: recovered from panic handling request: %v", r)
			res = errResponse("internal error")
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(conn, maxRequestBytes+1))
	if err != nil {
		return errResponse("reading request: " + err.Error())
	}
	if len(raw) > maxRequestBytes {
		return errResponse("request exceeds 64 KiB limit")
	}

	var req request
	if err := json.Unmarshal(raw, &req); err != nil {
		return errResponse("malformed JSON request")
	}

	return s.dispatch(req)
}

func (s *Server) dispatch(req request) response {
	switch req.Command {
	case "status":
		return s.handleStatus()
	case "start":
		return s.handleMutation(req.SyncID, s.sv.StartJob, "sync started")
	case "pause":
		return s.handleMutation(req.SyncID, s.sv.PauseJob, "sync paused")
	case "resume":
		return s.handleMutation(req.SyncID, s.sv.ResumeJob, "sync resumed")
	case "delete":
		return s.handleMutation(req.SyncID, s.sv.DeleteJob, "sync deleted")
	case "":
		return errResponse("missing command")
	default:
		return errResponse("unknown command: " + req.Command)
	}
}

func (s *Server) handleStatus() response {
	statuses := s.sv.Status()
	jobs := make([]jobStatus, 0, len(statuses))
	for _, st := range statuses {
		nextRun := ""
		if !st.NextRun.IsZero() {
			nextRun = st.NextRun.UTC().Format(time.RFC3339)
		}
		jobs = append(jobs, jobStatus{ID: st.ID, NextRun: nextRun, Missed: st.Missed, Paused: st.Paused})
	}
	return response{Status: "ok", Jobs: jobs}
}

func (s *Server) handleMutation(syncID string, op func(string) error, successMessage string) response {
	if syncID == "" {
		return errResponse("missing sync_id")
	}
	if err := op(syncID); err != nil {
		return errResponse(err.Error())
	}
	return ok(successMessage)
}
