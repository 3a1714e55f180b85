package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// dialTimeout bounds how long a client waits to connect to the socket.
const dialTimeout = 2 * time.Second

// JobStatus is one job's status entry as reported over the wire.
type JobStatus struct {
	ID      string
	NextRun string
	Missed  bool
	Paused  bool
}

// Client dials the supervisor's Unix socket to issue one request per call,
// reusing the same request/response framing the server speaks.
type Client struct {
	socketPath string
}

// NewClient returns a Client bound to socketPath. Dialing happens per call.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// Status asks the supervisor for every job's current schedule state.
func (c *Client) Status() ([]JobStatus, error) {
	res, err := c.call(request{Command: "status"})
	if err != nil {
		return nil, err
	}
	out := make([]JobStatus, 0, len(res.Jobs))
	for _, j := range res.Jobs {
		out = append(out, JobStatus{ID: j.ID, NextRun: j.NextRun, Missed: j.Missed, Paused: j.Paused})
	}
	return out, nil
}

// Command issues start/pause/resume/delete for syncID and returns the
// server's confirmation message.
func (c *Client) Command(command, syncID string) (string, error) {
	res, err := c.call(request{Command: command, SyncID: syncID})
	if err != nil {
		return "", err
	}
	return res.Message, nil
}

func (c *Client) call(req request) (response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, dialTimeout)
	if err != nil {
		return response{}, fmt.Errorf("ipc: dialing %s: %w", c.socketPath, err)
	}
	defer conn.Close()

	enc := json.NewEncoder(conn)
	if err := enc.Encode(req); err != nil {
		return response{}, fmt.Errorf("ipc: writing request: %w", err)
	}
	if cw, ok := conn.(interface{ CloseWrite() error }); ok {
		cw.CloseWrite()
	}

	var res response
	dec := json.NewDecoder(conn)
	if err := dec.Decode(&res); err != nil {
		return response{}, fmt.Errorf("ipc: reading response: %w", err)
	}
	if res.Status == "error" {
		return res, fmt.Errorf("ipc: %s", res.Message)
	}
	return res, nil
}
