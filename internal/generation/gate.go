package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/danadoen/nusaai/internal/domain"
	"github.com/danadoen/nusaai/internal/infra"
	"github.com/danadoen/nusaai/internal/infra/metrics"
)

// ProfileReader loads entitlement records.
type ProfileReader interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
}

// TrialStore holds the one-way guest trial flags.
type TrialStore interface {
	TrialUsed(ctx context.Context, key string) (bool, error)
	MarkTrialUsed(ctx context.Context, key string) error
}

// Gate decides whether a caller may start a generation. It never mutates
// state, so repeated calls return the same answer.
type Gate struct {
	profiles ProfileReader
	trials   TrialStore
	metrics  *metrics.Recorder
	logger   infra.Logger
}

func NewGate(profiles ProfileReader, trials TrialStore, rec *metrics.Recorder, logger infra.Logger) *Gate {
	return &Gate{profiles: profiles, trials: trials, metrics: rec, logger: logger}
}

// Authorize returns nil when the caller may proceed, or an error wrapping
// domain.ErrAdmissionDenied naming the reason.
func (g *Gate) Authorize(ctx context.Context, caller domain.Caller) error {
	if caller.IsAnonymous() {
		used, err := g.trials.TrialUsed(ctx, caller.TrialKey())
		if err != nil {
			return fmt.Errorf("read guest trial: %w", err)
		}
		if used {
			g.metrics.Admission(callerLabel(caller), "trial_exhausted")
			return domain.ErrTrialExhausted
		}
		g.metrics.Admission(callerLabel(caller), "allowed")
		return nil
	}

	profile, err := g.profiles.GetByID(ctx, caller.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		g.logger.Error().Str("user_id", caller.UserID).Msg("authenticated caller has no profile row")
		g.metrics.Admission(callerLabel(caller), "profile_missing")
		return domain.ErrProfileMissing
	}
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	if profile.Unlimited() {
		g.metrics.Admission(callerLabel(caller), "allowed")
		return nil
	}
	if profile.CreditsRemaining <= 0 {
		g.metrics.Admission(callerLabel(caller), "quota_exhausted")
		return domain.ErrQuotaExhausted
	}
	g.metrics.Admission(callerLabel(caller), "allowed")
	return nil
}

func callerLabel(c domain.Caller) string {
	if c.IsAnonymous() {
		return "guest"
	}
	return "user"
}
