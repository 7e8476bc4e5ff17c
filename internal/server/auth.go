package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"donorlink/internal"
	"donorlink/internal/metrics"
	"donorlink/pkg/types"
)

func (s *Service) handleGetLogin(w http.ResponseWriter, r *http.Request) {
	if _, err := s.accountIDFromContext(r.Context()); err == nil {
		s.logger.Debug("account is already logged in, redirecting home")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := &types.LoginPageData{
		BasePageData: s.basePage(r, "Log In"),
	}

	err := s.renderTemplate(w, r, "page.login", data)
	if err != nil {
		s.logger.WithError(err).Error("failed to render login page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data := &types.LoginPageData{
		BasePageData: types.BasePageData{Title: "Log In"},
	}

	if !s.loginLimiter.Allow(clientKey(r)) {
		s.recordLogin(metrics.LoginThrottled)
		s.logger.WithField("client", clientKey(r)).Warn("login rate limit exceeded")

		data.Error = "Too many login attempts. Please wait a minute and try again."
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusTooManyRequests)
		s.renderLogin(w, r, data)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.logger.WithError(err).Error("failed to parse login form")
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}

	var f types.LoginForm
	if err := decoder.Decode(&f, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode login form")
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}

	data.Email = strings.TrimSpace(f.Email)
	data.FieldErrors = validateLoginForm(&f)
	if len(data.FieldErrors) > 0 {
		s.renderLogin(w, r, data)
		return
	}

	account, err := s.accountRepo.AccountByEmail(ctx, data.Email)
	if err != nil {
		if !errors.Is(err, types.ErrAccountNotFound) {
			s.logger.WithError(err).Error("failed to look up account for login")
			s.internalServerError(w)
			return
		}
		s.passwords.VerifyMissing(f.Password)
		account = nil
	}

	if account == nil || !s.passwords.Verify(account.PasswordHash, f.Password) {
		s.recordLogin(metrics.LoginInvalid)
		data.Error = "Invalid credentials."
		s.renderLogin(w, r, data)
		return
	}

	if !account.IsActive {
		s.recordLogin(metrics.LoginInactive)
		data.Error = "This account has been deactivated."
		s.renderLogin(w, r, data)
		return
	}

	token, err := s.sessions.Issue(account.ID, account.Email, s.now())
	if err != nil {
		s.logger.WithError(err).WithField("account_id", account.ID).Error("failed to issue session token")
		s.internalServerError(w)
		return
	}

	encoded, err := s.cookie.Encode(internal.COOKIE_ACCESS_TOKEN_NAME, token)
	if err != nil {
		s.logger.WithError(err).Error("failed to encrypt session token")
		s.internalServerError(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ACCESS_TOKEN_NAME,
		Value:    encoded,
		HttpOnly: true,
		Secure:   s.secureCookies(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.sessions.MaxAge().Seconds()),
		Path:     "/",
	})

	s.recordLogin(metrics.LoginSuccess)
	s.logger.WithField("account_id", account.ID).Info("account logged in")

	// Check to see if this login attempt was the result of an unauthed redirect
	if redirectCookie, err := r.Cookie(internal.COOKIE_REDIRECT_NAME); err == nil {
		s.clearRedirectCookie(w)
		if path, ok := safeRedirectPath(redirectCookie.Value); ok {
			http.Redirect(w, r, path, http.StatusSeeOther)
			return
		}
	}

	_, err = s.profileRepo.ProfileByAccountID(ctx, account.ID)
	if err != nil {
		if errors.Is(err, types.ErrProfileNotFound) {
			s.redirectWithNotice(w, r, "/complete-profile", "Please complete your profile.")
			return
		}
		s.logger.WithError(err).WithField("account_id", account.ID).Error("failed to check profile after login")
		s.internalServerError(w)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Service) handlePostLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	s.redirectWithNotice(w, r, "/login", "You have been logged out.")
}

func (s *Service) renderLogin(w http.ResponseWriter, r *http.Request, data *types.LoginPageData) {
	if err := s.renderTemplate(w, r, "page.login", data); err != nil {
		s.logger.WithError(err).Error("failed to render login page")
		s.internalServerError(w)
	}
}

func (s *Service) recordLogin(result string) {
	if s.metrics != nil {
		s.metrics.RecordLogin(result)
	}
}

func (s *Service) secureCookies() bool {
	return s.config.Environment != "development"
}

func (s *Service) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ACCESS_TOKEN_NAME,
		Value:    "",
		HttpOnly: true,
		Secure:   s.secureCookies(),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

func (s *Service) setRedirectCookie(w http.ResponseWriter, path string, age time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_REDIRECT_NAME,
		Value:    path,
		HttpOnly: true,
		Secure:   s.secureCookies(),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(age.Seconds()),
	})
}

func (s *Service) clearRedirectCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_REDIRECT_NAME,
		Value:    "",
		HttpOnly: true,
		Secure:   s.secureCookies(),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
