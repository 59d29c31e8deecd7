package model

import "time"

// Role values stored in users.role. ADMIN unlocks the /admin endpoints;
// everyone created through social login starts as USER.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Status values stored in users.status. A user is created PENDING on first
// social login, becomes ACTIVE once onboarding data has been submitted and
// may be moved to SUSPENDED by an administrator.
const (
	StatusPending   = "PENDING"
	StatusActive    = "ACTIVE"
	StatusSuspended = "SUSPENDED"
)

// User represents a row in the `users` table. Accounts are created through
// OAuth2 social login only; there is no password column. The pair
// (Provider, ProviderID) is unique when both are present, and Email is
// unique on its own. Handlers define separate response types with JSON
// tags, so none are declared here.
//
// Fields:
//  ID          – primary key identifier.
//  Provider    – external identity provider name (e.g. "google").
//  ProviderID  – provider-assigned stable subject identifier.
//  Email       – unique email address, the merge key across providers.
//  Name        – display name from the provider profile.
//  AvatarURL   – profile picture URL from the provider.
//  Role        – USER or ADMIN.
//  Status      – PENDING, ACTIVE or SUSPENDED.
//  LastLoginAt – timestamp of the most recent successful login (nullable).
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type User struct {
	ID          uint64     // users.id
	Provider    string     // users.provider
	ProviderID  string     // users.provider_id
	Email       string     // users.email
	Name        string     // users.name
	AvatarURL   string     // users.avatar_url
	Role        string     // users.role
	Status      string     // users.status
	LastLoginAt *time.Time // users.last_login_at (nullable)
	CreatedAt   time.Time  // users.created_at
	UpdatedAt   time.Time  // users.updated_at
}

// UserProfile holds the onboarding answers for a user, one row per user.
// Submitting a profile is what moves a PENDING account to ACTIVE.
type UserProfile struct {
	UserID        uint64    // user_profiles.user_id
	BirthYear     *uint16   // user_profiles.birth_year (nullable)
	Region        string    // user_profiles.region
	HouseholdSize *uint8    // user_profiles.household_size (nullable)
	IncomeBand    string    // user_profiles.income_band
	CreatedAt     time.Time // user_profiles.created_at
	UpdatedAt     time.Time // user_profiles.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table. Each refresh
// token belongs to a user and carries expiry and revocation metadata. The
// raw token is never stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash (64 hex chars)
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
