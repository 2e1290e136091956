package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"taskdesk/internal/store"
)

const (
	adminTokenEnvKey           = "TASKDESK_ADMIN_TOKEN"
	allowRemoteEnvKey          = "TASKDESK_ALLOW_REMOTE"
	readHeaderTimeout          = 5 * time.Second
	readTimeout                = 30 * time.Second
	writeTimeout               = 60 * time.Second
	idleTimeout                = 60 * time.Second
	shutdownTimeout            = 10 * time.Second
	transitionConcurrencyLimit = 4
	importConcurrencyLimit     = 1
	authMaxFailures            = 5
	authFailureWindow          = time.Minute
	authBlockDuration          = 5 * time.Minute
)

// Store is the storage surface the server needs.
type Store interface {
	store.TaskStore
	store.ProjectStore
	store.UserStore
	store.InfoStore
}

// Server wraps HTTP handlers for the taskdesk API.
type Server struct {
	addr              string
	dbPath            string
	store             Store
	tasks             *TaskService
	directory         *DirectoryService
	importer          *Importer
	logger            *slog.Logger
	adminToken        string
	authLimiter       *failureLimiter
	transitionLimiter chan struct{}
	importLimiter     chan struct{}
}

// New creates a new server instance.
func New(addr, dbPath string, st Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		addr:              addr,
		dbPath:            dbPath,
		store:             st,
		tasks:             NewTaskService(st, st, st, logger),
		directory:         NewDirectoryService(st, st),
		importer:          NewImporter(st, st, st),
		logger:            logger,
		adminToken:        strings.TrimSpace(os.Getenv(adminTokenEnvKey)),
		authLimiter:       newFailureLimiter(authMaxFailures, authFailureWindow, authBlockDuration),
		transitionLimiter: make(chan struct{}, transitionConcurrencyLimit),
		importLimiter:     make(chan struct{}, importConcurrencyLimit),
	}
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.withRequestLogging(s.withAuth(s.routes()))
}

// ListenAndServe starts the HTTP server and stops it when ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.log().Info("starting server", "addr", s.addr, "db", s.dbPath)
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log().Info("shutting down server", "addr", s.addr)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

// ListenAddr converts a base API URL into a listen address.
func ListenAddr(apiURL string) (string, error) {
	if apiURL == "" {
		return "", fmt.Errorf("api url is required")
	}
	if u, err := url.Parse(apiURL); err == nil && u.Host != "" {
		host := u.Hostname()
		if !isAllowedListenHost(host) {
			return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
		}
		return u.Host, nil
	}

	host, _, err := net.SplitHostPort(apiURL)
	if err == nil && !isAllowedListenHost(host) {
		return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}

	return apiURL, nil
}

func isAllowedListenHost(host string) bool {
	if host == "" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true") {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) acquireLimiter(limiter chan struct{}, w http.ResponseWriter, r *http.Request, name string) bool {
	if limiter == nil {
		return true
	}
	select {
	case limiter <- struct{}{}:
		return true
	default:
		err := apiError{
			status:  http.StatusTooManyRequests,
			code:    "resource_exhausted",
			errCode: ErrCodeResourceExhausted,
			err:     fmt.Errorf("too many concurrent %s requests", name),
		}
		s.writeErrorReq(w, r, http.StatusTooManyRequests, err)
		return false
	}
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

func (s *Server) releaseLimiter(limiter chan struct{}) {
	if limiter == nil {
		return
	}
	select {
	case <-limiter:
	default:
	}
}
