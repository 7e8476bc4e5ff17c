package server

import (
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"donorlink/internal/auth"
	"donorlink/internal/eligibility"
	"donorlink/internal/metrics"
	"donorlink/internal/utils"
	"donorlink/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

//go:embed templates static
var uiFS embed.FS
var decoder = form.NewDecoder()

type AccountStore interface {
	Account(ctx context.Context, accountID string) (*types.Account, error)
	AccountByEmail(ctx context.Context, email string) (*types.Account, error)
	Create(ctx context.Context, account *types.Account) error
}

type ProfileStore interface {
	ProfileByAccountID(ctx context.Context, accountID string) (*types.Profile, error)
	Create(ctx context.Context, profile *types.Profile) error
	UpdateGated(ctx context.Context, accountID string, apply func(profile *types.Profile) error) (*types.Profile, error)
}

type DonationRequestStore interface {
	RequestsByDonor(ctx context.Context, donorID string) ([]*types.DonationRequest, error)
}

type Service struct {
	logger      *logrus.Logger
	config      *types.Config
	templates   *template.Template
	accountRepo AccountStore
	profileRepo ProfileStore
	requestRepo DonationRequestStore

	passwords    *auth.PasswordHasher
	sessions     *auth.SessionManager
	cookie       *securecookie.SecureCookie
	eligibility  eligibility.Policy
	loginLimiter *loginLimiter
	metrics      *metrics.Collector
	gatherer     prometheus.Gatherer

	now func() time.Time

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	accountRepo AccountStore,
	profileRepo ProfileStore,
	requestRepo DonationRequestStore,
	passwords *auth.PasswordHasher,
	sessions *auth.SessionManager,
	collector *metrics.Collector,
	gatherer prometheus.Gatherer,
) (*Service, error) {
	mux := flow.New()

	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil {
		return nil, fmt.Errorf("decode cookie hash key: %w", err)
	}
	blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if err != nil {
		return nil, fmt.Errorf("decode cookie block key: %w", err)
	}

	s := &Service{
		logger:      logger,
		config:      config,
		accountRepo: accountRepo,
		profileRepo: profileRepo,
		requestRepo: requestRepo,

		passwords:    passwords,
		sessions:     sessions,
		cookie:       securecookie.New(hashKey, blockKey),
		eligibility:  eligibility.NewPolicy(config.EligibilityIntervalDays),
		loginLimiter: newLoginLimiter(config.LoginRatePerMin, config.LoginBurst),
		metrics:      collector,
		gatherer:     gatherer,

		now: time.Now,

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}
	s.cookie.MaxAge(config.SessionMaxAgeSec)

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	s.loginLimiter.Stop()
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)
	r.Use(s.LoadSession)

	r.HandleFunc("/", s.handleHome, http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)
	r.Handle("/metrics", metrics.Handler(s.gatherer), http.MethodGet)

	r.HandleFunc("/register", s.handleGetRegister, http.MethodGet)
	r.HandleFunc("/register", s.handlePostRegister, http.MethodPost)
	r.HandleFunc("/login", s.handleGetLogin, http.MethodGet)
	r.HandleFunc("/login", s.handlePostLogin, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/logout", s.handlePostLogout, http.MethodPost)

		r.HandleFunc("/complete-profile", s.handleGetCompleteProfile, http.MethodGet)
		r.HandleFunc("/complete-profile", s.handlePostCompleteProfile, http.MethodPost)

		r.HandleFunc("/profile", s.handleGetProfile, http.MethodGet)
		r.HandleFunc("/profile/edit", s.handleGetProfileEdit, http.MethodGet)
		r.HandleFunc("/profile/edit", s.handlePostProfileEdit, http.MethodPost)
	})

	staticRoot, err := fs.Sub(uiFS, "static")
	if err != nil {
		s.logger.WithError(err).Fatal("failed to mount static assets")
	}
	r.Handle("/static/...", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))), http.MethodGet)
}

func loadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"date": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"dateTime": func(t time.Time) string {
			return t.Format("2006-01-02 15:04")
		},
		"deref": utils.PtrString,
		"derefOr": func(s *string, defaultVal string) string {
			if s == nil || strings.TrimSpace(*s) == "" {
				return defaultVal
			}
			return *s
		},
	}

	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(uiFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		data, err := fs.ReadFile(uiFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		if _, err := t.Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) accountIDFromContext(ctx context.Context) (string, error) {
	accountID, ok := ctx.Value(contextKeyAccountID).(string)
	if !ok || accountID == "" {
		return "", fmt.Errorf("account id not found in context")
	}
	return accountID, nil
}

// today is the current calendar date used for eligibility decisions.
func (s *Service) today() time.Time {
	return eligibility.Date(s.now())
}
