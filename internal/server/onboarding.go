package server

import (
	"errors"
	"net/http"

	"donorlink/internal/metrics"
	"donorlink/pkg/types"
)

func (s *Service) handleGetCompleteProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, err := s.accountIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("ctx doesn't contain account")
		s.internalServerError(w)
		return
	}

	_, err = s.profileRepo.ProfileByAccountID(ctx, accountID)
	switch {
	case err == nil:
		http.Redirect(w, r, "/profile/edit", http.StatusSeeOther)
		return
	case !errors.Is(err, types.ErrProfileNotFound):
		s.logger.WithError(err).WithField("account_id", accountID).Error("failed to fetch profile for completion")
		s.internalServerError(w)
		return
	}

	data := s.completeProfilePage(r, types.ProfileForm{Availability: true})
	s.renderProfileForm(w, r, "page.complete-profile", data)
}

func (s *Service) handlePostCompleteProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, err := s.accountIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("ctx doesn't contain account")
		s.internalServerError(w)
		return
	}

	f, ok := s.decodeProfileForm(w, r)
	if !ok {
		return
	}

	data := s.completeProfilePage(r, *f)

	input, fieldErrs := validateProfileForm(f, s.today())
	if len(fieldErrs) > 0 {
		s.recordProfileSave(metrics.ProfileRejected)
		data.FieldErrors = fieldErrs
		s.renderProfileForm(w, r, "page.complete-profile", data)
		return
	}

	// A brand new profile starts unavailable, so asking to be available goes
	// through the same cooldown check as an update.
	available, err := s.eligibility.Evaluate(input.Availability, input.LastDonationDate, s.today())
	if err != nil {
		if s.attachEligibilityError(data, err) {
			s.logger.WithField("account_id", accountID).Info("profile completion rejected by donation cooldown")
			s.renderProfileForm(w, r, "page.complete-profile", data)
			return
		}
		s.logger.WithError(err).Error("failed to evaluate eligibility")
		s.internalServerError(w)
		return
	}
	input.Availability = available

	profile := &types.Profile{AccountID: accountID}
	input.ApplyTo(profile)

	err = s.profileRepo.Create(ctx, profile)
	if err != nil {
		if errors.Is(err, types.ErrProfileExists) {
			http.Redirect(w, r, "/profile/edit", http.StatusSeeOther)
			return
		}
		s.logger.WithError(err).WithField("account_id", accountID).Error("failed to create profile in datastore")
		s.internalServerError(w)
		return
	}

	s.recordProfileSave(metrics.ProfileSaved)
	s.logger.WithField("account_id", accountID).Info("profile completed")

	s.redirectWithNotice(w, r, "/", "Profile completed successfully!")
}

func (s *Service) completeProfilePage(r *http.Request, f types.ProfileForm) *types.ProfileFormPageData {
	return &types.ProfileFormPageData{
		BasePageData: s.basePage(r, "Complete Your Profile"),
		Action:       "/complete-profile",
		SubmitLabel:  "Save profile",
		Form:         f,
		BloodTypes:   types.BloodTypes,
	}
}
