package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"donorlink/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRegisterForm(t *testing.T) {
	tests := []struct {
		name string
		form types.RegisterForm
		want map[string]string
	}{
		{
			name: "valid",
			form: types.RegisterForm{Username: "maria", Email: "maria@example.com", Password: "hunter22"},
			want: map[string]string{},
		},
		{
			name: "long username",
			form: types.RegisterForm{Username: "abcdefghijklmnopqrstuvwxyz012345", Email: "maria@example.com", Password: "hunter22"},
			want: map[string]string{"username": "Username must be at most 30 characters."},
		},
		{
			name: "display name email",
			form: types.RegisterForm{Username: "maria", Email: "Maria <maria@example.com>", Password: "hunter22"},
			want: map[string]string{"email": "Enter a valid email address."},
		},
		{
			name: "password over bcrypt limit",
			form: types.RegisterForm{Username: "maria", Email: "maria@example.com", Password: strings.Repeat("p", 73)},
			want: map[string]string{"password": "Password must be at most 72 bytes."},
		},
		{
			name: "password at bcrypt limit",
			form: types.RegisterForm{Username: "maria", Email: "maria@example.com", Password: strings.Repeat("p", 72)},
			want: map[string]string{},
		},
		{
			name: "missing password",
			form: types.RegisterForm{Username: "maria", Email: "maria@example.com"},
			want: map[string]string{"password": "Password is required."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validateRegisterForm(&tt.form))
		})
	}
}

func TestValidateProfileForm(t *testing.T) {
	today := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

	valid := types.ProfileForm{
		FirstName:        " Juan ",
		LastName:         "Dela Cruz",
		Weight:           "65.5",
		Height:           "170",
		Region:           "NCR",
		Province:         "Metro Manila",
		Municipality:     "Quezon City",
		BloodType:        "ab-",
		Availability:     true,
		LastDonationDate: "2024-06-15",
	}

	in, errs := validateProfileForm(&valid, today)
	require.Empty(t, errs)
	require.NotNil(t, in)
	assert.Equal(t, "Juan", in.FirstName)
	assert.Equal(t, "AB-", in.BloodType)
	assert.Equal(t, 65.5, in.Weight)
	assert.True(t, in.Availability)
	require.NotNil(t, in.LastDonationDate)
	assert.True(t, in.LastDonationDate.Equal(today))

	tests := []struct {
		name  string
		edit  func(f *types.ProfileForm)
		field string
		msg   string
	}{
		{"zero weight", func(f *types.ProfileForm) { f.Weight = "0" }, "weight", "Weight must be a positive number."},
		{"text height", func(f *types.ProfileForm) { f.Height = "tall" }, "height", "Enter a number."},
		{"missing region", func(f *types.ProfileForm) { f.Region = "  " }, "region", "Region is required."},
		{"bad blood type", func(f *types.ProfileForm) { f.BloodType = "C+" }, "blood_type", "Select a valid blood type."},
		{"bad date", func(f *types.ProfileForm) { f.LastDonationDate = "15/06/2024" }, "last_donation_date", "Enter a valid date."},
		{"future date", func(f *types.ProfileForm) { f.LastDonationDate = "2024-06-16" }, "last_donation_date", "Last donation date cannot be in the future."},
		{"long name", func(f *types.ProfileForm) { f.LastName = "abcdefghijklmnopqrstuvwxyz012345" }, "last_name", "Last name must be at most 30 characters."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.edit(&f)

			in, errs := validateProfileForm(&f, today)
			assert.Nil(t, in)
			assert.Equal(t, tt.msg, errs[tt.field])
		})
	}
}

func TestValidateProfileForm_BlankDateIsNil(t *testing.T) {
	f := types.ProfileForm{
		FirstName:    "Juan",
		LastName:     "Dela Cruz",
		Weight:       "60",
		Height:       "165",
		Region:       "NCR",
		Province:     "Metro Manila",
		Municipality: "Manila",
		BloodType:    "O-",
	}

	in, errs := validateProfileForm(&f, time.Now())
	require.Empty(t, errs)
	assert.Nil(t, in.LastDonationDate)
}

func TestSafeRedirectPath(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"/profile", true},
		{"/profile/edit?tab=1", true},
		{"", false},
		{"profile", false},
		{"//evil.example.com", false},
		{"/\\evil.example.com", false},
		{"https://evil.example.com/profile", false},
	}

	for _, tt := range tests {
		got, ok := safeRedirectPath(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.in, got)
		}
	}
}

func TestLoginLimiter(t *testing.T) {
	l := newLoginLimiter(1, 2)
	defer l.Stop()

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
	assert.Equal(t, 2, l.Len())

	l.evictIdle(time.Now().Add(loginLimiterIdleTTL + time.Minute))
	assert.Zero(t, l.Len())

	l.Stop()
	l.Stop()
}

func TestClientKey(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "198.51.100.7:5555"
	assert.Equal(t, "198.51.100.7", clientKey(r))

	r.RemoteAddr = "not-a-hostport"
	assert.Equal(t, "not-a-hostport", clientKey(r))
}
