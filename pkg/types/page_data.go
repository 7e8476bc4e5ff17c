package types

import (
	"strconv"
)

type NavbarData struct {
	IsAuthenticated bool
	AccountID       string
	Email           string
}

type NavbarDataSetter interface {
	SetNavbarData(data NavbarData)
}

type BasePageData struct {
	Title  string
	Notice string
	Error  string
	Navbar NavbarData
}

func (d *BasePageData) SetNavbarData(data NavbarData) {
	d.Navbar = data
}

type HomePageData struct {
	BasePageData
}

type LoginPageData struct {
	BasePageData
	Email       string
	FieldErrors map[string]string
}

type RegisterPageData struct {
	BasePageData
	Username    string
	Email       string
	FieldErrors map[string]string
}

type ProfileFormPageData struct {
	BasePageData
	Action      string
	SubmitLabel string
	Form        ProfileForm
	BloodTypes  []string
	FieldErrors map[string]string
}

type ProfilePageData struct {
	BasePageData
	Profile           *Profile
	LastDonation      string
	NextEligible      string
	DaysUntilEligible int
	Requests          []*DonationRequest
	HasRequests       bool
}

func formatMeasure(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
