package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/BenefitMap/BenefitMap/internal/model"
)

// tagTables maps a taxonomy kind to its base table and user join table.
// All three taxonomies share the same shape, so one repo serves them all.
var tagTables = map[string]struct{ base, join string }{
	model.TagKindInterest:  {"interest_tags", "user_interest_tags"},
	model.TagKindLifecycle: {"lifecycle_tags", "user_lifecycle_tags"},
	model.TagKindHousehold: {"household_tags", "user_household_tags"},
}

type TagRepo struct{ DB *sql.DB }

func NewTagRepo(db *sql.DB) *TagRepo { return &TagRepo{DB: db} }

// ListAll returns every tag of every taxonomy, for the onboarding screen.
func (r *TagRepo) ListAll(ctx context.Context) ([]model.Tag, error) {
	var out []model.Tag
	for _, kind := range []string{model.TagKindInterest, model.TagKindLifecycle, model.TagKindHousehold} {
		tags, err := r.listKind(ctx, kind)
		if err != nil {
			return nil, err
		}
		out = append(out, tags...)
	}
	return out, nil
}

func (r *TagRepo) listKind(ctx context.Context, kind string) ([]model.Tag, error) {
	t := tagTables[kind]
	rows, err := r.DB.QueryContext(ctx, "SELECT id, name FROM "+t.base+" ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Tag
	for rows.Next() {
		tag := model.Tag{Kind: kind}
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, err
		}
		out = append(out, tag)
	}
	return out, rows.Err()
}

// ReplaceUserTags overwrites the user's selections for all three taxonomies
// with exactly the given sets, inside one transaction so a failed write
// never leaves a half-applied selection.
func (r *TagRepo) ReplaceUserTags(ctx context.Context, userID uint64, sel model.TagSelection) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	sets := []struct {
		kind string
		ids  []uint64
	}{
		{model.TagKindInterest, sel.InterestIDs},
		{model.TagKindLifecycle, sel.LifecycleIDs},
		{model.TagKindHousehold, sel.HouseholdIDs},
	}
	for _, set := range sets {
		t, ids := tagTables[set.kind], set.ids
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+t.join+" WHERE user_id=?", userID); err != nil {
			return err
		}
		if len(ids) == 0 {
			continue
		}
		ph := make([]string, 0, len(ids))
		args := make([]any, 0, len(ids)*2)
		for _, id := range ids {
			ph = append(ph, "(?,?)")
			args = append(args, userID, id)
		}
		// Unknown tag ids trip the FK constraint (errno 1452): report as conflict.
		q := fmt.Sprintf("INSERT INTO %s (user_id, tag_id) VALUES %s", t.join, strings.Join(ph, ","))
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			if strings.Contains(err.Error(), "1452") {
				return ErrConflict
			}
			return err
		}
	}
	return tx.Commit()
}

// GetUserTags returns the user's current selections across all taxonomies.
func (r *TagRepo) GetUserTags(ctx context.Context, userID uint64) ([]model.Tag, error) {
	var out []model.Tag
	for _, kind := range []string{model.TagKindInterest, model.TagKindLifecycle, model.TagKindHousehold} {
		t := tagTables[kind]
		q := fmt.Sprintf(
			"SELECT tg.id, tg.name FROM %s ut JOIN %s tg ON tg.id = ut.tag_id WHERE ut.user_id=? ORDER BY tg.id",
			t.join, t.base)
		rows, err := r.DB.QueryContext(ctx, q, userID)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			tag := model.Tag{Kind: kind}
			if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
				rows.Close()
				return nil, err
			}
			out = append(out, tag)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return out, nil
}
