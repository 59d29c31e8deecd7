package repository

import (
	"context"
	"database/sql"

	"github.com/BenefitMap/BenefitMap/internal/model"
)

// ProfileRepo persists onboarding answers, one row per user.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

// Upsert writes the user's profile, replacing any previous answers.
func (r *ProfileRepo) Upsert(ctx context.Context, p model.UserProfile) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO user_profiles (user_id, birth_year, region, household_size, income_band)
		 VALUES (?,?,?,?,?)
		 ON DUPLICATE KEY UPDATE birth_year=VALUES(birth_year), region=VALUES(region),
		   household_size=VALUES(household_size), income_band=VALUES(income_band)`,
		p.UserID, p.BirthYear, p.Region, p.HouseholdSize, p.IncomeBand)
	return err
}

// Get fetches the profile for a user; sql.ErrNoRows when onboarding has not
// been completed yet.
func (r *ProfileRepo) Get(ctx context.Context, userID uint64) (model.UserProfile, error) {
	var (
		p     model.UserProfile
		birth sql.NullInt64
		hh    sql.NullInt64
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, birth_year, region, household_size, income_band, created_at, updated_at FROM user_profiles WHERE user_id=? LIMIT 1",
		userID).Scan(&p.UserID, &birth, &p.Region, &hh, &p.IncomeBand, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.UserProfile{}, err
	}
	if birth.Valid {
		v := uint16(birth.Int64)
		p.BirthYear = &v
	}
	if hh.Valid {
		v := uint8(hh.Int64)
		p.HouseholdSize = &v
	}
	return p, nil
}
