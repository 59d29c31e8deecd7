package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BenefitMap/BenefitMap/internal/model"
)

// UserStore is the subset of the user repository the session core needs.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByProvider(ctx context.Context, provider, providerID string) (model.User, error)
	Create(ctx context.Context, u model.User) (uint64, error)
	UpdateOAuthProfile(ctx context.Context, id uint64, provider, providerID, name, avatarURL string) error
	Delete(ctx context.Context, id uint64) error
}

// TokenStore is the subset of the refresh-token repository the session core
// needs.
type TokenStore interface {
	Store(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error
	FindByHash(ctx context.Context, tokenHash string) (model.RefreshToken, error)
	DeleteByHash(ctx context.Context, tokenHash string) (int64, error)
	DeleteAllForUser(ctx context.Context, userID uint64) (int64, error)
	FindActiveForUser(ctx context.Context, userID uint64) ([]model.RefreshToken, error)
}

// Profile is a verified external identity assertion, already validated by
// the OAuth2 handshake. Provider, ProviderID and Email are mandatory; the
// assertion is untrustworthy without them.
type Profile struct {
	Provider   string
	ProviderID string
	Email      string
	Name       string
	AvatarURL  string
}

// Session is the credential pair produced by a successful login.
type Session struct {
	Access  Token
	Refresh Token
}

// Service orchestrates identity resolution, token issuance and the refresh
// store. It holds no per-request state and is safe for concurrent use.
type Service struct {
	Users  UserStore
	Tokens TokenStore
	Codec  *Codec
	Now    func() time.Time
}

func NewService(users UserStore, tokens TokenStore, codec *Codec) *Service {
	return &Service{Users: users, Tokens: tokens, Codec: codec}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Resolve upserts a local user from an external profile. Lookup order is
// (provider, provider id) first, then email; the email row wins on conflict
// so an account keeps its history when the same address arrives through a
// different provider. A brand-new user starts as PENDING with role USER.
// The returned bool is true when a new row was created.
func (s *Service) Resolve(ctx context.Context, p Profile) (model.User, bool, error) {
	p.Provider = strings.TrimSpace(p.Provider)
	p.ProviderID = strings.TrimSpace(p.ProviderID)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if p.Provider == "" || p.ProviderID == "" || p.Email == "" {
		return model.User{}, false, ErrInvalidAssertion
	}

	u, err := s.Users.GetByProvider(ctx, p.Provider, p.ProviderID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return model.User{}, false, fmt.Errorf("lookup by provider: %w", err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		u, err = s.Users.GetByEmail(ctx, p.Email)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return model.User{}, false, fmt.Errorf("lookup by email: %w", err)
		}
		if errors.Is(err, sql.ErrNoRows) {
			id, err := s.Users.Create(ctx, model.User{
				Provider:   p.Provider,
				ProviderID: p.ProviderID,
				Email:      p.Email,
				Name:       p.Name,
				AvatarURL:  p.AvatarURL,
				Role:       model.RoleUser,
				Status:     model.StatusPending,
			})
			if err != nil {
				return model.User{}, false, fmt.Errorf("create user: %w", err)
			}
			created, err := s.Users.GetByID(ctx, id)
			if err != nil {
				return model.User{}, false, fmt.Errorf("reload user: %w", err)
			}
			return created, true, nil
		}
	}

	// Existing account: refresh provider linkage, name and avatar and bump
	// last_login_at. Email stays as stored.
	if err := s.Users.UpdateOAuthProfile(ctx, u.ID, p.Provider, p.ProviderID, p.Name, p.AvatarURL); err != nil {
		return model.User{}, false, fmt.Errorf("update profile: %w", err)
	}
	u, err = s.Users.GetByID(ctx, u.ID)
	if err != nil {
		return model.User{}, false, fmt.Errorf("reload user: %w", err)
	}
	return u, false, nil
}

// IssueSession produces a fresh access/refresh pair for the user and records
// the refresh token's hash. Every call adds an independent row, so logins
// from several devices coexist and are individually revocable.
func (s *Service) IssueSession(ctx context.Context, u model.User) (Session, error) {
	access, err := s.Codec.IssueAccess(u.ID, u.Role)
	if err != nil {
		return Session{}, fmt.Errorf("issue access: %w", err)
	}
	refresh, err := s.Codec.IssueRefresh(u.ID, u.Role)
	if err != nil {
		return Session{}, fmt.Errorf("issue refresh: %w", err)
	}
	if err := s.Tokens.Store(ctx, u.ID, HashToken(refresh.Raw), refresh.ExpiresAt); err != nil {
		return Session{}, fmt.Errorf("store refresh: %w", err)
	}
	return Session{Access: access, Refresh: refresh}, nil
}

// ExchangeRefresh trades a still-valid refresh token for a new access token.
// The stored record is left untouched, so the same refresh token keeps
// working until its own expiry or an explicit logout; concurrent exchanges
// are safe. Role and status are re-read from the user row, never from the
// token.
func (s *Service) ExchangeRefresh(ctx context.Context, raw string) (Token, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Token{}, ErrInvalidRefresh
	}
	rec, err := s.Tokens.FindByHash(ctx, HashToken(raw))
	if errors.Is(err, sql.ErrNoRows) {
		return Token{}, ErrInvalidRefresh
	}
	if err != nil {
		return Token{}, fmt.Errorf("lookup refresh: %w", err)
	}
	if rec.RevokedAt != nil {
		return Token{}, ErrInvalidRefresh
	}
	// Exclusive boundary: a record expiring exactly now is already dead.
	if !s.now().Before(rec.ExpiresAt) {
		return Token{}, ErrRefreshExpired
	}

	u, err := s.Users.GetByID(ctx, rec.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return Token{}, ErrUserGone
	}
	if err != nil {
		return Token{}, fmt.Errorf("load user: %w", err)
	}
	if u.Status == model.StatusSuspended {
		return Token{}, ErrSuspended
	}

	access, err := s.Codec.IssueAccess(u.ID, u.Role)
	if err != nil {
		return Token{}, fmt.Errorf("issue access: %w", err)
	}
	return access, nil
}

// Logout deletes the record for the given refresh token. Blank, unknown and
// already-deleted tokens are not errors; only store failures are reported,
// and callers clear the client's cookies either way.
func (s *Service) Logout(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if _, err := s.Tokens.DeleteByHash(ctx, HashToken(raw)); err != nil {
		return fmt.Errorf("delete refresh: %w", err)
	}
	return nil
}

// DeleteAccount removes every refresh record for the user and then the user
// row itself. Both deletes are idempotent, so a retry after a partial
// failure converges.
func (s *Service) DeleteAccount(ctx context.Context, userID uint64) error {
	if _, err := s.Tokens.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("delete refresh tokens: %w", err)
	}
	if err := s.Users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// ActiveSessions lists the user's live refresh records, newest expiry first.
func (s *Service) ActiveSessions(ctx context.Context, userID uint64) ([]model.RefreshToken, error) {
	return s.Tokens.FindActiveForUser(ctx, userID)
}
