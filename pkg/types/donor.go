package types

import (
	"errors"
	"time"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already completed")
)

var BloodTypes = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

func IsBloodType(v string) bool {
	for _, bt := range BloodTypes {
		if bt == v {
			return true
		}
	}
	return false
}

type Profile struct {
	ID               string     `db:"id"`
	AccountID        string     `db:"account_id"`
	FirstName        string     `db:"first_name"`
	LastName         string     `db:"last_name"`
	Weight           float64    `db:"weight"`
	Height           float64    `db:"height"`
	Region           string     `db:"region"`
	Province         string     `db:"province"`
	Municipality     string     `db:"municipality"`
	BloodType        string     `db:"blood_type"`
	Availability     bool       `db:"availability"`
	LastDonationDate *time.Time `db:"last_donation_date"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

func (p *Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}

// ProfileInput holds validated profile fields, ready to be applied to a
// Profile record.
type ProfileInput struct {
	FirstName        string
	LastName         string
	Weight           float64
	Height           float64
	Region           string
	Province         string
	Municipality     string
	BloodType        string
	Availability     bool
	LastDonationDate *time.Time
}

func (in *ProfileInput) ApplyTo(p *Profile) {
	p.FirstName = in.FirstName
	p.LastName = in.LastName
	p.Weight = in.Weight
	p.Height = in.Height
	p.Region = in.Region
	p.Province = in.Province
	p.Municipality = in.Municipality
	p.BloodType = in.BloodType
	p.Availability = in.Availability
	p.LastDonationDate = in.LastDonationDate
}

type DonationRequestStatus string

const (
	DonationRequestStatusPending   DonationRequestStatus = "pending"
	DonationRequestStatusFulfilled DonationRequestStatus = "fulfilled"
)

type DonationRequest struct {
	ID          string                `db:"id"`
	DonorID     string                `db:"donor_id"`
	BloodType   string                `db:"blood_type"`
	Description *string               `db:"description"`
	Location    string                `db:"location"`
	Status      DonationRequestStatus `db:"status"`
	CreatedAt   time.Time             `db:"created_at"`
}
