// Package webapi is the supervisor's HTTP control plane (spec.md §6,
// SPEC_FULL.md §4.10). It never touches the Supervisor directly: job
// commands proxy through an ipc.Client over the same Unix socket the CLI
// uses, and history reads the job's state file straight off disk. It is a
// lifecycle.Component, registered on the same Supervisor.Manager() the
// scheduler and IPC server share, grounded in rest.Server's
// turbo-router-backed HTTP listener.
package webapi

import (
	"net/http"

	"github.com/spotifreak/spotifreak/config"
	"github.com/spotifreak/spotifreak/errs"
	"github.com/spotifreak/spotifreak/ipc"
	"github.com/spotifreak/spotifreak/l3"
	"github.com/spotifreak/spotifreak/rest"
	"github.com/spotifreak/spotifreak/state"
)

// Server wraps a rest.Server bound to the four control-plane routes.
type Server struct {
	rest.Server

	paths  config.ConfigPaths
	jobs   func() []config.SyncConfig
	client *ipc.Client
	logger l3.Logger
}

// New builds a webapi Server listening on host:port. jobs is called fresh
// on every GET /syncs so config hot-reloads are reflected without a
// restart.
func New(opts *rest.Options, paths config.ConfigPaths, socketPath string, jobs func() []config.SyncConfig, logger l3.Logger) (*Server, error) {
	rs, err := rest.NewServer(opts)
	if err != nil {
		return nil, err
	}

	s := &Server{
		Server: rs,
		paths:  paths,
		jobs:   jobs,
		client: ipc.NewClient(socketPath),
		logger: logger,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.Get("/syncs", s.handleListSyncs)
	s.Get("/status", s.handleStatus)
	s.Post("/syncs/{id}/{command}", s.handleCommand)
	s.Get("/syncs/{id}/history", s.handleHistory)
}

type syncSummary struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

func (s *Server) handleListSyncs(ctx rest.Context) {
	syncs := s.jobs()
	out := make([]syncSummary, 0, len(syncs))
	for _, sc := range syncs {
		out = append(out, syncSummary{ID: sc.ID, Type: sc.Type, Description: sc.Description})
	}
	ctx.WriteJSON(out)
}

func (s *Server) handleStatus(ctx rest.Context) {
	jobs, err := s.client.Status()
	if err != nil {
		writeError(ctx, http.StatusBadGateway, err)
		return
	}
	ctx.WriteJSON(jobs)
}

var allowedCommands = map[string]bool{"start": true, "pause": true, "resume": true, "delete": true}

func (s *Server) handleCommand(ctx rest.Context) {
	id, err := ctx.GetParam("id", rest.PathParam)
	if err != nil {
		writeError(ctx, http.StatusBadRequest, err)
		return
	}
	command, err := ctx.GetParam("command", rest.PathParam)
	if err != nil || !allowedCommands[command] {
		writeError(ctx, http.StatusBadRequest, errUnknownCommand(command))
		return
	}

	message, err := s.client.Command(command, id)
	if err != nil {
		writeError(ctx, http.StatusBadGateway, err)
		return
	}
	ctx.WriteJSON(map[string]string{"status": "ok", "message": message})
}

func (s *Server) handleHistory(ctx rest.Context) {
	id, err := ctx.GetParam("id", rest.PathParam)
	if err != nil {
		writeError(ctx, http.StatusBadRequest, err)
		return
	}

	var sc config.SyncConfig
	found := false
	for _, candidate := range s.jobs() {
		if candidate.ID == id {
			sc, found = candidate, true
			break
		}
	}
	if !found {
		writeError(ctx, http.StatusNotFound, errUnknownSync(id))
		return
	}

	statePath := state.PathFor(s.paths.StateDir, sc.ID, sc.StateFile)
	st, err := state.Load(statePath)
	if err != nil {
		writeError(ctx, http.StatusInternalServerError, err)
		return
	}
	ctx.WriteJSON(st.RunHistory())
}

func writeError(ctx rest.Context, status int, err error) {
	ctx.SetStatusCode(status)
	ctx.WriteJSON(map[string]string{"error": err.Error()})
}

func errUnknownCommand(command string) error {
	return errs.Newf(errs.ConfigInvalid, "unsupported command %q: must be one of start, pause, resume, delete", command)
}

func errUnknownSync(id string) error {
	return errs.Newf(errs.ConfigInvalid, "unknown sync id %q", id)
}
