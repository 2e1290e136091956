package server

import (
	"crypto/subtle"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	internalauth "taskdesk/internal/auth"
	"taskdesk/internal/store"
)

const adminRoleName = "admin"

// withAuth requires HTTP basic credentials once any enabled user has a password.
// Without such users the API trusts the caller, matching a single-user local setup.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		required, err := s.apiAuthRequired(r)
		if err != nil {
			s.writeStoreError(w, r, err)
			return
		}
		ctx := contextWithAuthRequired(r.Context(), required)
		if !required {
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		username, password, ok := r.BasicAuth()
		if !ok {
			s.writeErrorReq(w, r, http.StatusUnauthorized, unauthorized(fmt.Errorf("credentials required")))
			return
		}

		now := time.Now().UTC()
		key := authAttemptKey(username, r)
		if !s.authLimiter.Allow(key, now) {
			s.writeErrorReq(w, r, http.StatusTooManyRequests, apiError{
				status:  http.StatusTooManyRequests,
				code:    "resource_exhausted",
				errCode: ErrCodeResourceExhausted,
				err:     fmt.Errorf("too many failed attempts; retry later"),
			})
			return
		}

		user, err := s.store.GetUserByUsername(r.Context(), username)
		if err != nil {
			s.writeStoreError(w, r, err)
			return
		}
		passwordHash := ""
		if user != nil && !user.Disabled {
			passwordHash = user.PasswordHash
		}
		if !internalauth.VerifyPassword(passwordHash, password) {
			s.authLimiter.RegisterFailure(key, now)
			s.writeErrorReq(w, r, http.StatusUnauthorized, unauthorized(fmt.Errorf("invalid credentials")))
			return
		}
		s.authLimiter.Reset(key)

		ctx = contextWithAuthPrincipal(ctx, authPrincipal{User: user})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin guards provisioning routes. A configured admin token always
// wins; otherwise an authenticated principal must hold the admin role.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.adminToken != "" {
			provided := strings.TrimSpace(r.Header.Get("X-Admin-Token"))
			if subtle.ConstantTimeCompare([]byte(provided), []byte(s.adminToken)) != 1 {
				s.writeErrorReq(w, r, http.StatusForbidden, forbiddenCode(fmt.Errorf("admin token required"), ErrCodeForbidden))
				return
			}
			next(w, r)
			return
		}

		if principal, ok := authPrincipalFromContext(r.Context()); ok && principal.User.Role.Name != adminRoleName {
			s.writeErrorReq(w, r, http.StatusForbidden, forbiddenCode(fmt.Errorf("admin role required"), ErrCodeForbidden))
			return
		}
		next(w, r)
	}
}

func (s *Server) apiAuthRequired(r *http.Request) (bool, error) {
	if required, ok := authRequiredFromContext(r.Context()); ok {
		return required, nil
	}
	count, err := s.store.CountEnabledUsers(r.Context())
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// checkActor rejects requests whose actor, given by id or username, differs
// from the authenticated principal.
func checkActor(r *http.Request, actorID string) error {
	principal, ok := authPrincipalFromContext(r.Context())
	if !ok {
		return nil
	}
	actorID = strings.TrimSpace(actorID)
	if principal.User.ID != actorID && principal.User.Username != store.NormalizeUsername(actorID) {
		return forbiddenCode(fmt.Errorf("actor does not match credentials"), ErrCodeActorMismatch)
	}
	return nil
}

func authAttemptKey(username string, r *http.Request) string {
	user := strings.ToLower(strings.TrimSpace(username))
	if user == "" {
		user = "<empty>"
	}
	ip := requestClientIP(r)
	if ip == "" {
		ip = "<unknown>"
	}
	return ip + "|" + user
}

func requestClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	remote := strings.TrimSpace(r.RemoteAddr)
	if remote == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(remote)
	if err == nil {
		return strings.TrimSpace(host)
	}
	return remote
}
