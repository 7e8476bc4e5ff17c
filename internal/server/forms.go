package server

import (
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"donorlink/internal/auth"
	"donorlink/pkg/types"
)

const (
	maxUsernameLength = 30
	maxEmailLength    = 255
	maxNameLength     = 30
	maxLocationLength = 50
)

func validateRegisterForm(f *types.RegisterForm) map[string]string {
	errs := map[string]string{}

	username := strings.TrimSpace(f.Username)
	email := strings.TrimSpace(f.Email)

	switch {
	case username == "":
		errs["username"] = "Username is required."
	case utf8.RuneCountInString(username) > maxUsernameLength:
		errs["username"] = "Username must be at most 30 characters."
	}

	if msg := validateEmail(email); msg != "" {
		errs["email"] = msg
	}

	if f.Password == "" {
		errs["password"] = "Password is required."
	} else if utf8.RuneCountInString(f.Password) < auth.MinPasswordLength {
		errs["password"] = "Password must be at least 6 characters long."
	} else if len(f.Password) > auth.MaxPasswordLength {
		errs["password"] = "Password must be at most 72 bytes."
	}

	return errs
}

func validateLoginForm(f *types.LoginForm) map[string]string {
	errs := map[string]string{}

	if msg := validateEmail(strings.TrimSpace(f.Email)); msg != "" {
		errs["email"] = msg
	}

	if f.Password == "" {
		errs["password"] = "Password is required."
	}

	return errs
}

func validateEmail(email string) string {
	if email == "" {
		return "Email is required."
	}
	if len(email) > maxEmailLength {
		return "Email must be at most 255 characters."
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "Enter a valid email address."
	}

	return ""
}

// validateProfileForm checks the raw form and converts it. Field errors are
// keyed by form field name; the input is nil whenever there are errors.
func validateProfileForm(f *types.ProfileForm, today time.Time) (*types.ProfileInput, map[string]string) {
	errs := map[string]string{}

	in := &types.ProfileInput{
		FirstName:    strings.TrimSpace(f.FirstName),
		LastName:     strings.TrimSpace(f.LastName),
		Region:       strings.TrimSpace(f.Region),
		Province:     strings.TrimSpace(f.Province),
		Municipality: strings.TrimSpace(f.Municipality),
		BloodType:    strings.ToUpper(strings.TrimSpace(f.BloodType)),
		Availability: f.Availability,
	}

	checkText(errs, "first_name", "First name", in.FirstName, maxNameLength)
	checkText(errs, "last_name", "Last name", in.LastName, maxNameLength)
	checkText(errs, "region", "Region", in.Region, maxLocationLength)
	checkText(errs, "province", "Province", in.Province, maxLocationLength)
	checkText(errs, "municipality", "Municipality", in.Municipality, maxLocationLength)

	in.Weight = checkPositive(errs, "weight", "Weight", f.Weight)
	in.Height = checkPositive(errs, "height", "Height", f.Height)

	if in.BloodType == "" {
		errs["blood_type"] = "Blood type is required."
	} else if !types.IsBloodType(in.BloodType) {
		errs["blood_type"] = "Select a valid blood type."
	}

	if raw := strings.TrimSpace(f.LastDonationDate); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		switch {
		case err != nil:
			errs["last_donation_date"] = "Enter a valid date."
		case d.After(today):
			errs["last_donation_date"] = "Last donation date cannot be in the future."
		default:
			in.LastDonationDate = &d
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return in, errs
}

func checkText(errs map[string]string, field, label, value string, max int) {
	if !required(value) {
		errs[field] = label + " is required."
		return
	}
	if utf8.RuneCountInString(value) > max {
		errs[field] = label + " must be at most " + strconv.Itoa(max) + " characters."
	}
}

func checkPositive(errs map[string]string, field, label, raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		errs[field] = label + " is required."
		return 0
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		errs[field] = "Enter a number."
		return 0
	}

	if v <= 0 {
		errs[field] = label + " must be a positive number."
		return 0
	}

	return v
}
