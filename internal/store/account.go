package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"donorlink/internal/utils"
	"donorlink/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	accountTableName = "donorlink.accounts"

	accountUsernameConstraint = "accounts_username_key"
	accountEmailConstraint    = "accounts_email_key"
)

var accountColumns = utils.StructTagValues(types.Account{})

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// NormalizeEmail is applied to every email before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *AccountRepository) Account(ctx context.Context, accountID string) (*types.Account, error) {
	return r.accountWhere(ctx, sq.Eq{"id": accountID})
}

func (r *AccountRepository) AccountByEmail(ctx context.Context, email string) (*types.Account, error) {
	return r.accountWhere(ctx, sq.Eq{"email": NormalizeEmail(email)})
}

func (r *AccountRepository) accountWhere(ctx context.Context, pred sq.Eq) (*types.Account, error) {
	query, args, err := psql().
		Select(accountColumns...).
		From(accountTableName).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate account query: %w", err)
	}

	var account types.Account
	err = pgxscan.Get(ctx, r.pool, &account, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}

	return &account, nil
}

// Create inserts a new account. Duplicate usernames and emails are reported
// as types.ErrUsernameTaken and types.ErrEmailTaken.
func (r *AccountRepository) Create(ctx context.Context, account *types.Account) error {
	if account.ID == "" {
		account.ID = utils.NanoID()
	}

	now := time.Now()
	account.Email = NormalizeEmail(account.Email)
	account.CreatedAt = now
	account.UpdatedAt = now

	query, args, err := psql().
		Insert(accountTableName).
		SetMap(utils.StructToMap(account)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create account query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			switch constraint {
			case accountUsernameConstraint:
				return types.ErrUsernameTaken
			case accountEmailConstraint:
				return types.ErrEmailTaken
			}
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

func (r *AccountRepository) SetActive(ctx context.Context, accountID string, active bool) error {
	query, args, err := psql().
		Update(accountTableName).
		Set("is_active", active).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": accountID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate account activation query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update account activation: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrAccountNotFound
	}

	return nil
}
