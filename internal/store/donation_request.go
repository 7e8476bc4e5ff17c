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

const donationRequestTableName = "donorlink.donation_requests"

var donationRequestColumns = utils.StructTagValues(types.DonationRequest{})

type DonationRequestRepository struct {
	pool *pgxpool.Pool
}

func NewDonationRequestRepository(pool *pgxpool.Pool) *DonationRequestRepository {
	return &DonationRequestRepository{pool: pool}
}

// RequestsByDonor returns the donor's requests, newest first.
func (r *DonationRequestRepository) RequestsByDonor(ctx context.Context, donorID string) ([]*types.DonationRequest, error) {
	query, args, err := psql().
		Select(donationRequestColumns...).
		From(donationRequestTableName).
		Where(sq.Eq{"donor_id": donorID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donation requests query: %w", err)
	}

	requests := make([]*types.DonationRequest, 0)
	err = pgxscan.Select(ctx, r.pool, &requests, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch donation requests: %w", err)
	}

	return requests, nil
}

func (r *DonationRequestRepository) Exists(ctx context.Context, id string) (bool, error) {
	query, args, err := psql().
		Select("1").
		Prefix("SELECT EXISTS (").
		From(donationRequestTableName).
		Where(sq.Eq{"id": id}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate donation request exists query: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check donation request: %w", err)
	}

	return exists, nil
}

func (r *DonationRequestRepository) Create(ctx context.Context, request *types.DonationRequest) error {
	if request.ID == "" {
		request.ID = utils.NanoID()
	}
	if request.Status == "" {
		request.Status = types.DonationRequestStatusPending
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now()
	}

	query, args, err := psql().
		Insert(donationRequestTableName).
		SetMap(utils.StructToMap(request)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create donation request query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create donation request")
}
