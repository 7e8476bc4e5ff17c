package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"donorlink/internal"
	"donorlink/internal/auth"
	"donorlink/internal/metrics"
	"donorlink/internal/utils"
	"donorlink/pkg/types"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[string]*types.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{accounts: map[string]*types.Account{}}
}

func (f *fakeAccounts) Account(_ context.Context, accountID string) (*types.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.accounts[accountID]
	if !ok {
		return nil, types.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) AccountByEmail(_ context.Context, email string) (*types.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, a := range f.accounts {
		if a.Email == strings.ToLower(strings.TrimSpace(email)) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, types.ErrAccountNotFound
}

func (f *fakeAccounts) Create(_ context.Context, account *types.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	account.Email = strings.ToLower(strings.TrimSpace(account.Email))
	for _, a := range f.accounts {
		if a.Username == account.Username {
			return types.ErrUsernameTaken
		}
		if a.Email == account.Email {
			return types.ErrEmailTaken
		}
	}

	account.ID = utils.NanoID()
	cp := *account
	f.accounts[account.ID] = &cp
	return nil
}

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[string]*types.Profile
	updates  int
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{profiles: map[string]*types.Profile{}}
}

func (f *fakeProfiles) ProfileByAccountID(_ context.Context, accountID string) (*types.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.profiles[accountID]
	if !ok {
		return nil, types.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) Create(_ context.Context, profile *types.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.profiles[profile.AccountID]; ok {
		return types.ErrProfileExists
	}

	profile.ID = utils.NanoID()
	cp := *profile
	f.profiles[profile.AccountID] = &cp
	return nil
}

func (f *fakeProfiles) UpdateGated(_ context.Context, accountID string, apply func(profile *types.Profile) error) (*types.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.profiles[accountID]
	if !ok {
		return nil, types.ErrProfileNotFound
	}

	cp := *p
	if err := apply(&cp); err != nil {
		return nil, err
	}

	f.profiles[accountID] = &cp
	f.updates++
	return &cp, nil
}

func (f *fakeProfiles) get(accountID string) *types.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()

	p := f.profiles[accountID]
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

type fakeRequests struct {
	requests []*types.DonationRequest
}

func (f *fakeRequests) RequestsByDonor(_ context.Context, donorID string) ([]*types.DonationRequest, error) {
	var out []*types.DonationRequest
	for _, r := range f.requests {
		if r.DonorID == donorID {
			out = append(out, r)
		}
	}
	return out, nil
}

type testEnv struct {
	svc      *Service
	handler  http.Handler
	accounts *fakeAccounts
	profiles *fakeProfiles
	requests *fakeRequests
	hasher   *auth.PasswordHasher
	registry *prometheus.Registry
	logHook  *test.Hook
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	config := &types.Config{
		Environment:             "development",
		ServerPort:              0,
		CookieHashKey:           base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("h"), 32)),
		CookieBlockKey:          base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("b"), 32)),
		SessionMaxAgeSec:        3600,
		EligibilityIntervalDays: 56,
		LoginRatePerMin:         600,
		LoginBurst:              100,
	}

	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	sessions, err := auth.NewSessionManager(bytes.Repeat([]byte("s"), 32), time.Hour)
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	env := &testEnv{
		accounts: newFakeAccounts(),
		profiles: newFakeProfiles(),
		requests: &fakeRequests{},
		hasher:   hasher,
		registry: registry,
		logHook:  hook,
	}

	svc, err := New(config, logger, env.accounts, env.profiles, env.requests, hasher, sessions, collector, registry)
	require.NoError(t, err)
	t.Cleanup(svc.loginLimiter.Stop)

	env.svc = svc
	env.handler = svc.Handler()
	return env
}

// freezeToday pins the service clock so cooldown arithmetic is predictable.
func (e *testEnv) freezeToday(day time.Time) {
	e.svc.now = func() time.Time { return day.Add(14 * time.Hour) }
}

func (e *testEnv) createAccount(t *testing.T, email, password string, active bool) *types.Account {
	t.Helper()

	hash, err := e.hasher.Hash(password)
	require.NoError(t, err)

	account := &types.Account{
		Username:     strings.Split(email, "@")[0],
		Email:        email,
		PasswordHash: hash,
		IsActive:     active,
	}
	require.NoError(t, e.accounts.Create(context.Background(), account))
	return account
}

func (e *testEnv) sessionCookie(t *testing.T, account *types.Account) *http.Cookie {
	t.Helper()

	token, err := e.svc.sessions.Issue(account.ID, account.Email, time.Now())
	require.NoError(t, err)

	encoded, err := e.svc.cookie.Encode(internal.COOKIE_ACCESS_TOKEN_NAME, token)
	require.NoError(t, err)

	return &http.Cookie{Name: internal.COOKIE_ACCESS_TOKEN_NAME, Value: encoded}
}

func (e *testEnv) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	req.RemoteAddr = "192.0.2.10:41234"

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil), cookies...)
}

func (e *testEnv) postForm(path string, values url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req, cookies...)
}

func profileValues(overrides map[string]string) url.Values {
	v := url.Values{
		"first_name":   {"Juan"},
		"last_name":    {"Dela Cruz"},
		"weight":       {"65.5"},
		"height":       {"170"},
		"region":       {"NCR"},
		"province":     {"Metro Manila"},
		"municipality": {"Quezon City"},
		"blood_type":   {"O+"},
	}
	for k, val := range overrides {
		if val == "" {
			v.Del(k)
			continue
		}
		v.Set(k, val)
	}
	return v
}

func noticeFrom(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	return loc.Path, loc.Query().Get("notice")
}

// counterValue reads a counter from the test registry. An empty label name
// matches an unlabelled counter. Missing series read as zero.
func counterValue(t *testing.T, e *testEnv, name, label, value string) float64 {
	t.Helper()

	families, err := e.registry.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if label == "" {
				return m.GetCounter().GetValue()
			}
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}

	return 0
}
