package domain

// GuestTrialKey is the fixed name the guest trial flag is stored under.
const GuestTrialKey = "nusai_guest_trial_used"

// Caller identifies who is invoking a generation. Exactly one of UserID or
// GuestID is set.
type Caller struct {
	UserID  string
	GuestID string
}

// Identified returns a caller backed by an authenticated account.
func Identified(userID string) Caller {
	return Caller{UserID: userID}
}

// Anonymous returns a guest caller keyed by its device id.
func Anonymous(guestID string) Caller {
	return Caller{GuestID: guestID}
}

// IsAnonymous reports whether the caller has no session.
func (c Caller) IsAnonymous() bool {
	return c.UserID == ""
}

// TrialKey returns the storage key of the caller's guest trial flag.
func (c Caller) TrialKey() string {
	if c.GuestID == "" {
		return GuestTrialKey
	}
	return GuestTrialKey + ":" + c.GuestID
}
