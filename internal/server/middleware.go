package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"donorlink/internal"
	"donorlink/pkg/types"

	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const (
	contextKeyAccountID contextKey = "account_id"
	contextKeyEmail     contextKey = "email"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		elapsed := time.Since(started)
		if s.metrics != nil {
			s.metrics.ObserveHTTPRequest(r.Method, rw.statusCode, elapsed)
		}

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": elapsed.Milliseconds(),
		}).Info("http request")
	})
}

// LoadSession puts the account from a valid session cookie into the request
// context. Requests without a usable session pass through anonymously.
func (s *Service) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(internal.COOKIE_ACCESS_TOKEN_NAME)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		var token string
		err = s.cookie.Decode(internal.COOKIE_ACCESS_TOKEN_NAME, cookie.Value, &token)
		if err != nil {
			s.logger.WithError(err).Debug("failed to decode session cookie")
			s.clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		claims, err := s.sessions.Parse(token)
		if err != nil {
			s.logger.WithError(err).Debug("discarding invalid session token")
			s.clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyAccountID, claims.AccountID)
		if claims.Email != "" {
			ctx = context.WithValue(ctx, contextKeyEmail, claims.Email)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth sends anonymous requests to the login page, remembering where
// they were headed. Sessions belonging to deleted or deactivated accounts are
// dropped.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		accountID, err := s.accountIDFromContext(ctx)
		if err != nil {
			if r.Method == http.MethodGet {
				s.setRedirectCookie(w, r.URL.RequestURI(), time.Minute*5)
			}
			s.redirectToLogin(w, r)
			return
		}

		account, err := s.accountRepo.Account(ctx, accountID)
		switch {
		case errors.Is(err, types.ErrAccountNotFound), err == nil && !account.IsActive:
			s.logger.WithField("account_id", accountID).Info("dropping session for unavailable account")
			s.clearSessionCookie(w)
			s.redirectWithNotice(w, r, "/login", "Your session has ended. Please log in again.")
			return
		case err != nil:
			s.logger.WithError(err).WithField("account_id", accountID).Error("failed to load session account")
			s.internalServerError(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}
