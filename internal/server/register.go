package server

import (
	"errors"
	"net/http"
	"strings"

	"donorlink/pkg/types"
)

func (s *Service) handleGetRegister(w http.ResponseWriter, r *http.Request) {
	if _, err := s.accountIDFromContext(r.Context()); err == nil {
		s.logger.Debug("account is already logged in, redirecting home")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := &types.RegisterPageData{
		BasePageData: s.basePage(r, "Register"),
	}

	err := s.renderTemplate(w, r, "page.register", data)
	if err != nil {
		s.logger.WithError(err).Error("failed to render register page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		s.logger.WithError(err).Error("failed to parse register form")
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}

	var f types.RegisterForm
	if err := decoder.Decode(&f, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode register form")
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}

	data := &types.RegisterPageData{
		BasePageData: types.BasePageData{Title: "Register"},
		Username:     strings.TrimSpace(f.Username),
		Email:        strings.TrimSpace(f.Email),
	}

	data.FieldErrors = validateRegisterForm(&f)
	if len(data.FieldErrors) > 0 {
		s.logger.WithField("field_errors", data.FieldErrors).Info("validation errors during registration")

		data.Error = "Please fix the highlighted fields."
		s.renderRegister(w, r, data)
		return
	}

	hash, err := s.passwords.Hash(f.Password)
	if err != nil {
		s.logger.WithError(err).Error("failed to hash password during registration")
		s.internalServerError(w)
		return
	}

	account := &types.Account{
		Username:     data.Username,
		Email:        data.Email,
		PasswordHash: hash,
		IsActive:     true,
	}

	err = s.accountRepo.Create(ctx, account)
	switch {
	case errors.Is(err, types.ErrUsernameTaken):
		data.FieldErrors["username"] = "An account with this username already exists."
	case errors.Is(err, types.ErrEmailTaken):
		data.FieldErrors["email"] = "An account with this email already exists."
	case err != nil:
		s.logger.WithError(err).Error("failed to create account")
		s.internalServerError(w)
		return
	}

	if len(data.FieldErrors) > 0 {
		data.Error = "Please fix the highlighted fields."
		s.renderRegister(w, r, data)
		return
	}

	if s.metrics != nil {
		s.metrics.RecordRegistration()
	}
	s.logger.WithField("account_id", account.ID).Info("account registered")

	s.redirectWithNotice(w, r, "/login", "Registration successful! You can now log in.")
}

func (s *Service) renderRegister(w http.ResponseWriter, r *http.Request, data *types.RegisterPageData) {
	if err := s.renderTemplate(w, r, "page.register", data); err != nil {
		s.logger.WithError(err).Error("failed to render register page")
		s.internalServerError(w)
	}
}
