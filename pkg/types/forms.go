package types

import "donorlink/internal/utils"

type RegisterForm struct {
	Username string `form:"username"`
	Email    string `form:"email"`
	Password string `form:"password"`
}

type LoginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// ProfileForm carries the raw profile form values so they can be redisplayed
// untouched when validation fails.
type ProfileForm struct {
	FirstName        string `form:"first_name"`
	LastName         string `form:"last_name"`
	Weight           string `form:"weight"`
	Height           string `form:"height"`
	Region           string `form:"region"`
	Province         string `form:"province"`
	Municipality     string `form:"municipality"`
	BloodType        string `form:"blood_type"`
	Availability     bool   `form:"availability"`
	LastDonationDate string `form:"last_donation_date"`
}

// NewProfileForm prefills the form from a stored profile.
func NewProfileForm(p *Profile) ProfileForm {
	return ProfileForm{
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		Weight:           formatMeasure(p.Weight),
		Height:           formatMeasure(p.Height),
		Region:           p.Region,
		Province:         p.Province,
		Municipality:     p.Municipality,
		BloodType:        p.BloodType,
		Availability:     p.Availability,
		LastDonationDate: utils.FormatDate(p.LastDonationDate),
	}
}
