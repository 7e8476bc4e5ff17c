package store

import (
	"context"
	"fmt"
	"time"

	"donorlink/internal/utils"
	"donorlink/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	profileTableName = "donorlink.profiles"

	profileAccountConstraint = "profiles_account_id_key"
)

var profileColumns = utils.StructTagValues(types.Profile{})

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) ProfileByAccountID(ctx context.Context, accountID string) (*types.Profile, error) {
	query, args, err := psql().
		Select(profileColumns...).
		From(profileTableName).
		Where(sq.Eq{"account_id": accountID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate profile query: %w", err)
	}

	var profile types.Profile
	err = pgxscan.Get(ctx, r.pool, &profile, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	return &profile, nil
}

// Create inserts the one profile an account may have. A second profile for
// the same account fails with types.ErrProfileExists.
func (r *ProfileRepository) Create(ctx context.Context, profile *types.Profile) error {
	if profile.ID == "" {
		profile.ID = utils.NanoID()
	}

	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	query, args, err := psql().
		Insert(profileTableName).
		SetMap(utils.StructToMap(profile)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create profile query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok && constraint == profileAccountConstraint {
			return types.ErrProfileExists
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// UpdateGated locks the account's profile row, hands a copy to apply and
// writes the result back in the same transaction. Any error from apply rolls
// the transaction back and is returned unwrapped.
func (r *ProfileRepository) UpdateGated(ctx context.Context, accountID string, apply func(profile *types.Profile) error) (*types.Profile, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx for profile update: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	selectQuery, selectArgs, err := lockProfileQuery(accountID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate locking profile query: %w", err)
	}

	var profile types.Profile
	err = pgxscan.Get(ctx, tx, &profile, selectQuery, selectArgs...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to lock profile: %w", err)
	}

	if err := apply(&profile); err != nil {
		return nil, err
	}

	profile.UpdatedAt = time.Now()

	updateQuery, updateArgs, err := updateProfileQuery(&profile).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate profile update query: %w", err)
	}

	_, err = tx.Exec(ctx, updateQuery, updateArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit profile update tx: %w", err)
	}

	return &profile, nil
}

// lockProfileQuery selects the account's profile row for update.
func lockProfileQuery(accountID string) sq.SelectBuilder {
	return psql().
		Select(profileColumns...).
		From(profileTableName).
		Where(sq.Eq{"account_id": accountID}).
		Suffix("FOR UPDATE")
}

// updateProfileQuery writes every mutable column; ownership and creation
// time never change.
func updateProfileQuery(profile *types.Profile) sq.UpdateBuilder {
	return psql().
		Update(profileTableName).
		SetMap(utils.StructToMap(profile, "id", "account_id", "created_at")).
		Where(sq.Eq{"id": profile.ID})
}
