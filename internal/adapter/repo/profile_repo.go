package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/danadoen/nusaai/internal/domain"
	"github.com/danadoen/nusaai/internal/infra"
	"github.com/danadoen/nusaai/internal/sqlinline"
)

// ProfileRepositoryPG implements domain.ProfileRepository backed by PostgreSQL.
type ProfileRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewProfileRepository creates a new ProfileRepositoryPG.
func NewProfileRepository(sql infra.SQLExecutor) *ProfileRepositoryPG {
	return &ProfileRepositoryPG{sql: sql}
}

// GetByID fetches a profile by user id. A missing row maps to domain.ErrNotFound.
func (r *ProfileRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	return scanProfile(r.sql.QueryRow(ctx, sqlinline.QSelectProfileByID, id))
}

// Create inserts the profile, or returns the existing row when another
// request created it first.
func (r *ProfileRepositoryPG) Create(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertProfile,
		p.ID,
		p.FullName,
		p.AvatarURL,
		p.Email,
		string(p.Role),
		string(p.LanguagePreference),
		string(p.SubscriptionStatus),
		p.CreditsRemaining,
	)
	return scanProfile(row)
}

// List returns profiles newest first, optionally filtered by name or id.
func (r *ProfileRepositoryPG) List(ctx context.Context, search string) ([]domain.Profile, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListProfiles, strings.TrimSpace(search))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

// UpdateDetails changes the display name and preferred language. Empty
// values keep the stored ones.
func (r *ProfileRepositoryPG) UpdateDetails(ctx context.Context, id, fullName string, lang domain.Language) (*domain.Profile, error) {
	return scanProfile(r.sql.QueryRow(ctx, sqlinline.QUpdateProfileDetails, id, strings.TrimSpace(fullName), string(lang)))
}

// SetCredits overwrites the credit balance.
func (r *ProfileRepositoryPG) SetCredits(ctx context.Context, id string, credits int) (*domain.Profile, error) {
	return scanProfile(r.sql.QueryRow(ctx, sqlinline.QUpdateProfileCredits, id, credits))
}

// SetSubscription switches the tier and resets the balance in one statement.
func (r *ProfileRepositoryPG) SetSubscription(ctx context.Context, id string, status domain.SubscriptionStatus, credits int) (*domain.Profile, error) {
	return scanProfile(r.sql.QueryRow(ctx, sqlinline.QUpdateProfileSubscription, id, string(status), credits))
}

// SetRole changes the profile role.
func (r *ProfileRepositoryPG) SetRole(ctx context.Context, id string, role domain.UserRole) (*domain.Profile, error) {
	return scanProfile(r.sql.QueryRow(ctx, sqlinline.QUpdateProfileRole, id, string(role)))
}

// ConsumeCredit decrements the balance of a metered profile with credits left.
func (r *ProfileRepositoryPG) ConsumeCredit(ctx context.Context, id string) (bool, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QConsumeCredit, id)
	if err != nil {
		return false, fmt.Errorf("consume credit: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Stats counts profiles by tier and role.
func (r *ProfileRepositoryPG) Stats(ctx context.Context) (domain.ProfileStats, error) {
	var stats domain.ProfileStats
	err := r.sql.QueryRow(ctx, sqlinline.QProfileStats).Scan(&stats.TotalUsers, &stats.ProUsers, &stats.AdminUsers)
	return stats, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	var (
		p                        domain.Profile
		role, lang, subscription string
	)
	err := row.Scan(
		&p.ID,
		&p.FullName,
		&p.AvatarURL,
		&p.Email,
		&role,
		&lang,
		&subscription,
		&p.CreditsRemaining,
		&p.StripeCustomerID,
		&p.CreatedAt,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.Role = domain.UserRole(role)
	p.LanguagePreference = domain.Language(lang)
	p.SubscriptionStatus = domain.SubscriptionStatus(subscription)
	return &p, nil
}

var _ domain.ProfileRepository = (*ProfileRepositoryPG)(nil)
