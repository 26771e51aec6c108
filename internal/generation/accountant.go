package generation

import (
	"context"
	"fmt"

	"github.com/danadoen/nusaai/internal/domain"
	"github.com/danadoen/nusaai/internal/infra/metrics"
)

// CreditConsumer decrements metered balances.
type CreditConsumer interface {
	ConsumeCredit(ctx context.Context, id string) (bool, error)
}

// Accountant records usage after a successful generation.
type Accountant struct {
	credits CreditConsumer
	trials  TrialStore
	metrics *metrics.Recorder
}

func NewAccountant(credits CreditConsumer, trials TrialStore, rec *metrics.Recorder) *Accountant {
	return &Accountant{credits: credits, trials: trials, metrics: rec}
}

// RecordUsage decrements one credit for metered users or marks the guest
// trial as used. Admin and pro profiles are left untouched by the store.
func (a *Accountant) RecordUsage(ctx context.Context, caller domain.Caller) error {
	if caller.IsAnonymous() {
		if err := a.trials.MarkTrialUsed(ctx, caller.TrialKey()); err != nil {
			a.metrics.Consumed("guest", "error")
			return fmt.Errorf("mark guest trial: %w", err)
		}
		a.metrics.Consumed("guest", "marked")
		return nil
	}

	changed, err := a.credits.ConsumeCredit(ctx, caller.UserID)
	if err != nil {
		a.metrics.Consumed("user", "error")
		return err
	}
	if changed {
		a.metrics.Consumed("user", "decremented")
	} else {
		a.metrics.Consumed("user", "unchanged")
	}
	return nil
}
