package main

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"os/exec"
	"time"

	"taskdesk/internal/api"
	"taskdesk/internal/config"
)

const (
	serverStartTimeout = 3 * time.Second
	serverPollInterval = 100 * time.Millisecond
	serverPingTimeout  = 500 * time.Millisecond
)

// localServer is a `taskdesk srv` child process started for one command.
type localServer struct {
	cmd *exec.Cmd
}

func (s *localServer) stop() {
	if s == nil {
		return
	}
	_ = s.cmd.Process.Kill()
	_ = s.cmd.Wait()
}

// withClient runs fn against the configured API, starting a local server
// for the duration of the call when none answers.
func withClient(cfg *config.Config, fn func(*api.Client) error) error {
	srv, err := ensureServer(cfg)
	if err != nil {
		return err
	}
	defer srv.stop()

	return fn(newAPIClient(cfg))
}

func newAPIClient(cfg *config.Config) *api.Client {
	return api.NewClient(cfg.APIURL).WithUser(cfg.User)
}

// ensureServer returns nil when the API already answers.
func ensureServer(cfg *config.Config) (*localServer, error) {
	client := api.NewClient(cfg.APIURL)
	if pingOnce(client, serverPingTimeout) == nil {
		return nil, nil
	}

	srv, err := startServerProcess(cfg)
	if err != nil {
		return nil, err
	}
	if err := waitForServer(client, serverStartTimeout); err != nil {
		srv.stop()
		return nil, err
	}
	return srv, nil
}

func startServerProcess(cfg *config.Config) (*localServer, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(exe, "srv")
	cmd.Env = append(os.Environ(),
		"TASKDESK_DB="+cfg.DBPath,
		"TASKDESK_API_URL="+cfg.APIURL,
	)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &localServer{cmd: cmd}, nil
}

func pingOnce(client *api.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return client.Ping(ctx)
}

// waitForServer polls until the API answers. Any error other than a refused
// connection means something else owns the address.
func waitForServer(client *api.Client, timeout time.Duration) error {
	ticker := time.NewTicker(serverPollInterval)
	defer ticker.Stop()
	deadline := time.After(timeout)

	for {
		err := pingOnce(client, 2*serverPollInterval)
		if err == nil {
			return nil
		}
		if !isConnRefused(err) {
			return err
		}
		select {
		case <-deadline:
			return errors.New("server did not start in time")
		case <-ticker.C:
		}
	}
}

func isConnRefused(err error) bool {
	var netErr *net.OpError
	return errors.As(err, &netErr)
}
