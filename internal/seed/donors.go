// Package seed loads demo donors into a fresh database.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"donorlink/internal/eligibility"
	"donorlink/internal/utils"
	"donorlink/pkg/types"

	"github.com/sirupsen/logrus"
)

// DemoPassword is shared by every seeded account.
const DemoPassword = "donorlink-demo"

type AccountStore interface {
	AccountByEmail(ctx context.Context, email string) (*types.Account, error)
	Create(ctx context.Context, account *types.Account) error
}

type ProfileStore interface {
	ProfileByAccountID(ctx context.Context, accountID string) (*types.Profile, error)
	Create(ctx context.Context, profile *types.Profile) error
}

type DonationRequestStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, request *types.DonationRequest) error
}

type Hasher interface {
	Hash(password string) (string, error)
}

type demoDonor struct {
	Username     string
	Email        string
	FirstName    string
	LastName     string
	Weight       float64
	Height       float64
	Region       string
	Province     string
	Municipality string
	BloodType    string
	// DaysSinceDonation is relative to the seeding day; negative means the
	// donor has never given blood.
	DaysSinceDonation int
}

type demoRequest struct {
	ID          string
	DonorEmail  string
	BloodType   string
	Description string
	Location    string
	Status      types.DonationRequestStatus
}

var demoDonors = []demoDonor{
	{Username: "ana.reyes", Email: "ana.reyes@example.com", FirstName: "Ana", LastName: "Reyes", Weight: 58, Height: 160, Region: "NCR", Province: "Metro Manila", Municipality: "Quezon City", BloodType: "O+", DaysSinceDonation: 90},
	{Username: "marco.santos", Email: "marco.santos@example.com", FirstName: "Marco", LastName: "Santos", Weight: 72.5, Height: 175, Region: "Region VII", Province: "Cebu", Municipality: "Cebu City", BloodType: "A-", DaysSinceDonation: 20},
	{Username: "liza.cruz", Email: "liza.cruz@example.com", FirstName: "Liza", LastName: "Cruz", Weight: 61, Height: 158, Region: "Region XI", Province: "Davao del Sur", Municipality: "Davao City", BloodType: "AB+", DaysSinceDonation: -1},
	{Username: "paolo.garcia", Email: "paolo.garcia@example.com", FirstName: "Paolo", LastName: "Garcia", Weight: 80, Height: 182, Region: "Region III", Province: "Pampanga", Municipality: "San Fernando", BloodType: "B+", DaysSinceDonation: 56},
}

var demoRequests = []demoRequest{
	{ID: "seedreq-ana-0000000001", DonorEmail: "ana.reyes@example.com", BloodType: "O+", Description: "Scheduled surgery, two units needed.", Location: "Philippine General Hospital", Status: types.DonationRequestStatusPending},
	{ID: "seedreq-ana-0000000002", DonorEmail: "ana.reyes@example.com", BloodType: "O+", Location: "East Avenue Medical Center", Status: types.DonationRequestStatusFulfilled},
	{ID: "seedreq-marco-00000001", DonorEmail: "marco.santos@example.com", BloodType: "A-", Description: "Dengue patient, platelets preferred.", Location: "Vicente Sotto Memorial Medical Center", Status: types.DonationRequestStatusPending},
}

type Seeder struct {
	logger   *logrus.Logger
	accounts AccountStore
	profiles ProfileStore
	requests DonationRequestStore
	hasher   Hasher
	policy   eligibility.Policy
}

func NewSeeder(logger *logrus.Logger, accounts AccountStore, profiles ProfileStore, requests DonationRequestStore, hasher Hasher, policy eligibility.Policy) *Seeder {
	return &Seeder{
		logger:   logger,
		accounts: accounts,
		profiles: profiles,
		requests: requests,
		hasher:   hasher,
		policy:   policy,
	}
}

// Run creates whatever demo data is missing. Records that already exist are
// left untouched, so it is safe to run repeatedly.
func (s *Seeder) Run(ctx context.Context, today time.Time) error {
	today = eligibility.Date(today)

	accountIDs := make(map[string]string, len(demoDonors))
	createdAccounts, createdProfiles, createdRequests := 0, 0, 0

	for _, d := range demoDonors {
		account, created, err := s.ensureAccount(ctx, d)
		if err != nil {
			return err
		}
		if created {
			createdAccounts++
		}
		accountIDs[d.Email] = account.ID

		created, err = s.ensureProfile(ctx, account.ID, d, today)
		if err != nil {
			return err
		}
		if created {
			createdProfiles++
		}
	}

	for i, r := range demoRequests {
		exists, err := s.requests.Exists(ctx, r.ID)
		if err != nil {
			return fmt.Errorf("failed to check demo request %s: %w", r.ID, err)
		}
		if exists {
			continue
		}

		donorID, ok := accountIDs[r.DonorEmail]
		if !ok {
			return fmt.Errorf("demo request %s references unknown donor %s", r.ID, r.DonorEmail)
		}

		request := &types.DonationRequest{
			ID:          r.ID,
			DonorID:     donorID,
			BloodType:   r.BloodType,
			Description: utils.NilIfBlank(r.Description),
			Location:    r.Location,
			Status:      r.Status,
			CreatedAt:   today.Add(-time.Duration(i+1) * 24 * time.Hour),
		}
		if err := s.requests.Create(ctx, request); err != nil {
			return fmt.Errorf("failed to create demo request %s: %w", r.ID, err)
		}
		createdRequests++
	}

	s.logger.WithFields(logrus.Fields{
		"accounts": createdAccounts,
		"profiles": createdProfiles,
		"requests": createdRequests,
	}).Info("demo data seeded")

	return nil
}

func (s *Seeder) ensureAccount(ctx context.Context, d demoDonor) (*types.Account, bool, error) {
	existing, err := s.accounts.AccountByEmail(ctx, d.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, types.ErrAccountNotFound) {
		return nil, false, fmt.Errorf("failed to fetch demo account %s: %w", d.Email, err)
	}

	hash, err := s.hasher.Hash(DemoPassword)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash demo password: %w", err)
	}

	account := &types.Account{
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, false, fmt.Errorf("failed to create demo account %s: %w", d.Email, err)
	}

	return account, true, nil
}

func (s *Seeder) ensureProfile(ctx context.Context, accountID string, d demoDonor, today time.Time) (bool, error) {
	_, err := s.profiles.ProfileByAccountID(ctx, accountID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, types.ErrProfileNotFound) {
		return false, fmt.Errorf("failed to fetch demo profile for %s: %w", d.Email, err)
	}

	var last *time.Time
	if d.DaysSinceDonation >= 0 {
		last = utils.TimePtr(today.AddDate(0, 0, -d.DaysSinceDonation))
	}

	available, err := s.policy.Evaluate(true, last, today)
	var waitErr *eligibility.WaitError
	if err != nil && !errors.As(err, &waitErr) {
		return false, fmt.Errorf("failed to evaluate demo donor %s: %w", d.Email, err)
	}

	profile := &types.Profile{
		AccountID:        accountID,
		FirstName:        d.FirstName,
		LastName:         d.LastName,
		Weight:           d.Weight,
		Height:           d.Height,
		Region:           d.Region,
		Province:         d.Province,
		Municipality:     d.Municipality,
		BloodType:        d.BloodType,
		Availability:     available,
		LastDonationDate: last,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return false, fmt.Errorf("failed to create demo profile for %s: %w", d.Email, err)
	}

	return true, nil
}
