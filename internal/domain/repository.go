package domain

import "context"

// ProfileRepository is the entitlement store.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	Create(ctx context.Context, p Profile) (*Profile, error)
	List(ctx context.Context, search string) ([]Profile, error)
	UpdateDetails(ctx context.Context, id, fullName string, lang Language) (*Profile, error)
	SetCredits(ctx context.Context, id string, credits int) (*Profile, error)
	SetSubscription(ctx context.Context, id string, status SubscriptionStatus, credits int) (*Profile, error)
	SetRole(ctx context.Context, id string, role UserRole) (*Profile, error)
	// ConsumeCredit decrements credits_remaining by one for metered profiles
	// that still have credits. It reports whether a row was changed.
	ConsumeCredit(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context) (ProfileStats, error)
}

// HistoryRepository persists generation history.
type HistoryRepository interface {
	Insert(ctx context.Context, item HistoryItem) error
	ListRecent(ctx context.Context, userID string, limit int) ([]HistoryItem, error)
}
