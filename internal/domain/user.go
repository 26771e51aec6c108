package domain

import (
	"strings"
	"time"
)

// UserRole enumerates supported roles.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// SubscriptionStatus enumerates billing tiers.
type SubscriptionStatus string

const (
	SubscriptionFree SubscriptionStatus = "free"
	SubscriptionPro  SubscriptionStatus = "pro"
)

// Language enumerates the supported response languages.
type Language string

const (
	LanguageEnglish    Language = "en"
	LanguageIndonesian Language = "id"
)

const (
	DefaultFreeCredits = 1
	DefaultProCredits  = 9999
	DefaultFullName    = "New User"
	ProMonthlyPrice    = 19.99
)

// Profile is the entitlement record kept for every identified caller.
type Profile struct {
	ID                 string
	FullName           string
	AvatarURL          string
	Email              string
	Role               UserRole
	LanguagePreference Language
	SubscriptionStatus SubscriptionStatus
	CreditsRemaining   int
	StripeCustomerID   string
	CreatedAt          time.Time
}

// Unlimited reports whether consumption accounting is a no-op for the profile.
func (p Profile) Unlimited() bool {
	return p.Role == UserRoleAdmin || p.SubscriptionStatus == SubscriptionPro
}

// IsAdmin reports whether the profile may use the admin console.
func (p Profile) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}

// NewProfile returns the defaults applied at first sign-in.
func NewProfile(id, email, fullName string) Profile {
	name := strings.TrimSpace(fullName)
	if name == "" {
		name = DefaultFullName
	}
	return Profile{
		ID:                 id,
		FullName:           name,
		Email:              email,
		Role:               UserRoleUser,
		LanguagePreference: LanguageEnglish,
		SubscriptionStatus: SubscriptionFree,
		CreditsRemaining:   DefaultFreeCredits,
	}
}

// CreditsForStatus returns the credit balance the admin console assigns when
// switching a profile to the given status.
func CreditsForStatus(status SubscriptionStatus) int {
	if status == SubscriptionPro {
		return DefaultProCredits
	}
	return DefaultFreeCredits
}

// ParseSubscriptionStatus validates a raw status value.
func ParseSubscriptionStatus(raw string) (SubscriptionStatus, bool) {
	switch SubscriptionStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case SubscriptionFree:
		return SubscriptionFree, true
	case SubscriptionPro:
		return SubscriptionPro, true
	}
	return "", false
}

// ParseRole validates a raw role value.
func ParseRole(raw string) (UserRole, bool) {
	switch UserRole(strings.ToLower(strings.TrimSpace(raw))) {
	case UserRoleUser:
		return UserRoleUser, true
	case UserRoleAdmin:
		return UserRoleAdmin, true
	}
	return "", false
}

// ParseLanguage normalizes a locale tag to a supported language.
func ParseLanguage(raw string) (Language, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case v == "":
		return "", false
	case strings.HasPrefix(v, "id"):
		return LanguageIndonesian, true
	case strings.HasPrefix(v, "en"):
		return LanguageEnglish, true
	}
	return "", false
}

// ProfileStats summarises the profile table for the admin console.
type ProfileStats struct {
	TotalUsers int `json:"total_users"`
	ProUsers   int `json:"pro_users"`
	AdminUsers int `json:"admin_users"`
}

// EstimatedMonthlyRevenue multiplies pro subscribers by the list price.
func (s ProfileStats) EstimatedMonthlyRevenue() float64 {
	return float64(s.ProUsers) * ProMonthlyPrice
}
