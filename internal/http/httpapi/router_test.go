package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danadoen/nusaai/internal/domain"
	"github.com/danadoen/nusaai/internal/generation"
	"github.com/danadoen/nusaai/internal/http/handlers"
	"github.com/danadoen/nusaai/internal/infra/metrics"
	"github.com/danadoen/nusaai/internal/infra/trial"
	"github.com/danadoen/nusaai/internal/middleware"
	"github.com/danadoen/nusaai/internal/providers/genai"
)

const (
	memberID = "44444444-4444-4444-8444-444444444444"
	secret   = "router-test-secret"
)

type memProfiles struct {
	mu   sync.Mutex
	rows map[string]domain.Profile
}

func (m *memProfiles) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (m *memProfiles) Create(_ context.Context, p domain.Profile) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[p.ID] = p
	return &p, nil
}

func (m *memProfiles) List(context.Context, string) ([]domain.Profile, error) { return nil, nil }

func (m *memProfiles) UpdateDetails(context.Context, string, string, domain.Language) (*domain.Profile, error) {
	return nil, domain.ErrNotFound
}

func (m *memProfiles) SetCredits(context.Context, string, int) (*domain.Profile, error) {
	return nil, domain.ErrNotFound
}

func (m *memProfiles) SetSubscription(context.Context, string, domain.SubscriptionStatus, int) (*domain.Profile, error) {
	return nil, domain.ErrNotFound
}

func (m *memProfiles) SetRole(context.Context, string, domain.UserRole) (*domain.Profile, error) {
	return nil, domain.ErrNotFound
}

func (m *memProfiles) ConsumeCredit(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok || p.Unlimited() || p.CreditsRemaining <= 0 {
		return false, nil
	}
	p.CreditsRemaining--
	m.rows[id] = p
	return true, nil
}

func (m *memProfiles) Stats(context.Context) (domain.ProfileStats, error) {
	return domain.ProfileStats{}, nil
}

type noKeys struct{}

func (noKeys) PersonalKey(context.Context, string) (string, error) { return "", nil }
func (noKeys) SetPersonalKey(context.Context, string, string) error { return nil }
func (noKeys) MasterKey(context.Context) (string, error)           { return "", nil }
func (noKeys) SetMasterKey(context.Context, string) error          { return nil }

type stack struct {
	handler  http.Handler
	verifier *middleware.TokenVerifier
	profiles *memProfiles
	calls    *atomic.Int32
}

func newStack(t *testing.T) *stack {
	t.Helper()
	var calls atomic.Int32
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("key") != "env-key" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"halo"}]},"finishReason":"STOP"}]}`)
	}))
	t.Cleanup(provider.Close)

	logger := zerolog.Nop()
	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)
	profiles := &memProfiles{rows: map[string]domain.Profile{}}
	trials := trial.NewMemoryStore()

	invoker := generation.NewInvoker(generation.InvokerDeps{
		Gate:       generation.NewGate(profiles, trials, rec, logger),
		Keys:       generation.NewKeyResolver(rec, logger, generation.NewStaticKeySource("env", "env-key")),
		Accountant: generation.NewAccountant(profiles, trials, rec),
		Backend:    genai.NewClient(genai.Options{BaseURL: provider.URL, Timeout: 5 * time.Second}),
		Models:     generation.Models{Text: "gemini-2.5-flash", Image: "gemini-2.5-flash-image"},
		Metrics:    rec,
		Logger:     logger,
	})

	app := &handlers.App{
		Logger:    logger,
		Profiles:  profiles,
		History:   nil,
		Keys:      noKeys{},
		Generator: invoker,
	}
	verifier := middleware.NewTokenVerifier(secret, "")
	handler := NewRouter(app, Options{
		Logger:         logger,
		Verifier:       verifier,
		AllowedOrigins: []string{"https://app.example.com"},
		DefaultLocale:  domain.LanguageEnglish,
		Gatherer:       reg,
	})
	return &stack{handler: handler, verifier: verifier, profiles: profiles, calls: &calls}
}

func (s *stack) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func (s *stack) token(t *testing.T, id string) string {
	t.Helper()
	tok, err := s.verifier.Sign(middleware.Identity{UserID: id, Email: "member@example.com"}, time.Hour)
	require.NoError(t, err)
	return tok
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body.Error.Code
}

func TestRouter_Health(t *testing.T) {
	s := newStack(t)
	rr := s.do(t, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestRouter_GuestTrialIsSingleUse(t *testing.T) {
	s := newStack(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(`{"prompt":"hi"}`))
	rr := s.do(t, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	guestID := rr.Header().Get(middleware.GuestHeaderName)
	require.NotEmpty(t, guestID)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "halo", body["text"])

	req = httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(`{"prompt":"again"}`))
	req.AddCookie(&http.Cookie{Name: middleware.GuestCookieName, Value: guestID})
	rr = s.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "auth_required", errorCode(t, rr))
	assert.Equal(t, int32(1), s.calls.Load())
}

func TestRouter_MemberCreditsRunOut(t *testing.T) {
	s := newStack(t)
	tok := s.token(t, memberID)
	bearer := "Bearer " + tok

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", bearer)
	rr := s.do(t, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/v1/modules/automation", strings.NewReader(`{"task":"send invoices"}`))
	req.Header.Set("Authorization", bearer)
	rr = s.do(t, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	p, err := s.profiles.GetByID(context.Background(), memberID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.CreditsRemaining)

	req = httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(`{"prompt":"one more"}`))
	req.Header.Set("Authorization", bearer)
	rr = s.do(t, req)
	assert.Equal(t, http.StatusPaymentRequired, rr.Code)
	assert.Equal(t, "paywall_triggered", errorCode(t, rr))
}

func TestRouter_AccountRoutesNeedToken(t *testing.T) {
	s := newStack(t)
	for _, path := range []string{"/v1/me", "/v1/history", "/v1/admin/stats"} {
		rr := s.do(t, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rr := s.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRouter_AdminNeedsRole(t *testing.T) {
	s := newStack(t)
	tok := s.token(t, memberID)
	_, err := s.profiles.Create(context.Background(), domain.NewProfile(memberID, "member@example.com", ""))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := s.do(t, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRouter_Preflight(t *testing.T) {
	s := newStack(t)
	req := httptest.NewRequest(http.MethodOptions, "/v1/generate", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := s.do(t, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_MetricsExposeGenerationCounters(t *testing.T) {
	s := newStack(t)
	rr := s.do(t, httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(`{"prompt":"hi"}`)))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "nusaai_generations_total")
	assert.Contains(t, rr.Body.String(), "nusaai_admission_decisions_total")
}

func TestRouter_ContentLanguage(t *testing.T) {
	s := newStack(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/modules", nil)
	req.Header.Set("Accept-Language", "id-ID,id;q=0.9")
	rr := s.do(t, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "id", rr.Header().Get("Content-Language"))
}
