package generation

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/danadoen/nusaai/internal/domain"
	"github.com/danadoen/nusaai/internal/providers/genai"
)

var nopLogger = zerolog.Nop()

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[string]*domain.Profile
	err      error
	reads    int
}

func newFakeProfiles(profiles ...domain.Profile) *fakeProfiles {
	f := &fakeProfiles{profiles: map[string]*domain.Profile{}}
	for i := range profiles {
		p := profiles[i]
		f.profiles[p.ID] = &p
	}
	return f
}

func (f *fakeProfiles) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// ConsumeCredit mirrors the guarded decrement done in SQL.
func (f *fakeProfiles) ConsumeCredit(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok || p.Unlimited() || p.CreditsRemaining <= 0 {
		return false, nil
	}
	p.CreditsRemaining--
	return true, nil
}

func (f *fakeProfiles) credits(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profiles[id].CreditsRemaining
}

type fakeTrials struct {
	flags   map[string]bool
	readErr error
}

func newFakeTrials() *fakeTrials {
	return &fakeTrials{flags: map[string]bool{}}
}

func (f *fakeTrials) TrialUsed(_ context.Context, key string) (bool, error) {
	if f.readErr != nil {
		return false, f.readErr
	}
	return f.flags[key], nil
}

func (f *fakeTrials) MarkTrialUsed(_ context.Context, key string) error {
	f.flags[key] = true
	return nil
}

type fakeKeyStore struct {
	personal    map[string]string
	master      string
	personalErr error
	masterReads int
}

func (f *fakeKeyStore) PersonalKey(_ context.Context, userID string) (string, error) {
	if f.personalErr != nil {
		return "", f.personalErr
	}
	return f.personal[userID], nil
}

func (f *fakeKeyStore) MasterKey(context.Context) (string, error) {
	f.masterReads++
	return f.master, nil
}

type backendCall struct {
	key string
	req genai.Request
}

type fakeBackend struct {
	calls   []backendCall
	respond func(genai.Request) (*genai.Response, error)
}

func textBackend(text string) *fakeBackend {
	return &fakeBackend{respond: func(genai.Request) (*genai.Response, error) {
		return &genai.Response{Parts: []genai.Part{{Text: text}}}, nil
	}}
}

func failingBackend(err error) *fakeBackend {
	return &fakeBackend{respond: func(genai.Request) (*genai.Response, error) {
		return nil, err
	}}
}

func (f *fakeBackend) Generate(_ context.Context, apiKey string, req genai.Request) (*genai.Response, error) {
	f.calls = append(f.calls, backendCall{key: apiKey, req: req})
	if f.respond == nil {
		return nil, errors.New("no response configured")
	}
	return f.respond(req)
}

func freeUser(id string, credits int) domain.Profile {
	p := domain.NewProfile(id, id+"@example.com", "")
	p.CreditsRemaining = credits
	return p
}

func proUser(id string) domain.Profile {
	p := domain.NewProfile(id, id+"@example.com", "")
	p.SubscriptionStatus = domain.SubscriptionPro
	p.CreditsRemaining = domain.DefaultProCredits
	return p
}

func adminUser(id string) domain.Profile {
	p := domain.NewProfile(id, id+"@example.com", "")
	p.Role = domain.UserRoleAdmin
	p.CreditsRemaining = 0
	return p
}

type harness struct {
	profiles *fakeProfiles
	trials   *fakeTrials
	keys     *fakeKeyStore
	backend  *fakeBackend
	master   *MasterKeySource
	invoker  *Invoker
}

func newHarness(backend *fakeBackend, envKey string, profiles ...domain.Profile) *harness {
	h := &harness{
		profiles: newFakeProfiles(profiles...),
		trials:   newFakeTrials(),
		keys:     &fakeKeyStore{personal: map[string]string{}},
		backend:  backend,
	}
	h.master = NewMasterKeySource(h.keys, 0)
	resolver := NewKeyResolver(nil, nopLogger,
		NewPersonalKeySource(h.keys),
		h.master,
		NewStaticKeySource("env", envKey),
	)
	h.invoker = NewInvoker(InvokerDeps{
		Gate:       NewGate(h.profiles, h.trials, nil, nopLogger),
		Keys:       resolver,
		Accountant: NewAccountant(h.profiles, h.trials, nil),
		Backend:    backend,
		Models: Models{
			Text:        "gemini-3-flash-preview",
			Image:       "gemini-2.5-flash-image",
			AspectRatio: "16:9",
		},
		Logger: nopLogger,
	})
	return h
}
