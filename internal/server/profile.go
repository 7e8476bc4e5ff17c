package server

import (
	"errors"
	"net/http"
	"time"

	"donorlink/internal/eligibility"
	"donorlink/internal/metrics"
	"donorlink/internal/utils"
	"donorlink/pkg/types"

	"github.com/sirupsen/logrus"
)

func (s *Service) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, err := s.accountIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("account id not found in context")
		s.internalServerError(w)
		return
	}

	profile, err := s.profileRepo.ProfileByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, types.ErrProfileNotFound) {
			s.redirectWithNotice(w, r, "/complete-profile", "Please complete your profile.")
			return
		}
		s.logger.WithError(err).WithField("account_id", accountID).Error("failed to fetch profile")
		s.internalServerError(w)
		return
	}

	requests, err := s.requestRepo.RequestsByDonor(ctx, accountID)
	if err != nil {
		s.logger.WithError(err).WithField("account_id", accountID).Error("failed to fetch donation requests for profile")
		s.internalServerError(w)
		return
	}

	data := &types.ProfilePageData{
		BasePageData: s.basePage(r, "My Profile"),
		Profile:      profile,
		LastDonation: utils.FormatDate(profile.LastDonationDate),
		Requests:     requests,
		HasRequests:  len(requests) > 0,
	}

	if profile.LastDonationDate != nil {
		next := s.eligibility.NextEligibleDate(*profile.LastDonationDate)
		data.NextEligible = next.Format(time.DateOnly)
		if days := eligibility.DaysBetween(s.today(), next); days > 0 {
			data.DaysUntilEligible = days
		}
	}

	err = s.renderTemplate(w, r, "page.profile", data)
	if err != nil {
		s.logger.WithError(err).Error("failed to render profile page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handleGetProfileEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, err := s.accountIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("account id not found in context")
		s.internalServerError(w)
		return
	}

	profile, err := s.profileRepo.ProfileByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, types.ErrProfileNotFound) {
			s.redirectWithNotice(w, r, "/complete-profile", "Please complete your profile.")
			return
		}
		s.logger.WithError(err).WithField("account_id", accountID).Error("failed to fetch profile for edit")
		s.internalServerError(w)
		return
	}

	data := s.editProfilePage(r, types.NewProfileForm(profile))
	s.renderProfileForm(w, r, "page.profile-edit", data)
}

func (s *Service) handlePostProfileEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, err := s.accountIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("account id not found in context")
		s.internalServerError(w)
		return
	}

	f, ok := s.decodeProfileForm(w, r)
	if !ok {
		return
	}

	data := s.editProfilePage(r, *f)
	today := s.today()

	input, fieldErrs := validateProfileForm(f, today)
	if len(fieldErrs) > 0 {
		s.recordProfileSave(metrics.ProfileRejected)
		data.FieldErrors = fieldErrs
		s.renderProfileForm(w, r, "page.profile-edit", data)
		return
	}

	_, err = s.profileRepo.UpdateGated(ctx, accountID, func(profile *types.Profile) error {
		available, err := s.eligibility.Evaluate(input.Availability, input.LastDonationDate, today)
		if err != nil {
			return err
		}

		input.Availability = available
		input.ApplyTo(profile)
		return nil
	})
	if err != nil {
		if errors.Is(err, types.ErrProfileNotFound) {
			s.redirectWithNotice(w, r, "/complete-profile", "Please complete your profile.")
			return
		}

		if s.attachEligibilityError(data, err) {
			s.logger.WithFields(logrus.Fields{
				"account_id": accountID,
				"reason":     err.Error(),
			}).Info("profile update rejected by donation cooldown")
			s.renderProfileForm(w, r, "page.profile-edit", data)
			return
		}

		s.logger.WithError(err).WithField("account_id", accountID).Error("failed to update profile")
		s.internalServerError(w)
		return
	}

	s.recordProfileSave(metrics.ProfileSaved)
	s.logger.WithField("account_id", accountID).Info("profile updated")

	s.redirectWithNotice(w, r, "/profile", "Profile updated successfully!")
}

func (s *Service) editProfilePage(r *http.Request, f types.ProfileForm) *types.ProfileFormPageData {
	return &types.ProfileFormPageData{
		BasePageData: s.basePage(r, "Update Profile"),
		Action:       "/profile/edit",
		SubmitLabel:  "Save changes",
		Form:         f,
		BloodTypes:   types.BloodTypes,
	}
}

func (s *Service) decodeProfileForm(w http.ResponseWriter, r *http.Request) (*types.ProfileForm, bool) {
	if err := r.ParseForm(); err != nil {
		s.logger.WithError(err).Error("failed to parse profile form")
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return nil, false
	}

	f := new(types.ProfileForm)
	if err := decoder.Decode(f, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode profile form")
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return nil, false
	}

	return f, true
}

// attachEligibilityError turns an evaluator rejection into a field error on
// the form. It reports false for errors that are not eligibility rejections.
func (s *Service) attachEligibilityError(data *types.ProfileFormPageData, err error) bool {
	var waitErr *eligibility.WaitError
	switch {
	case errors.As(err, &waitErr):
		data.FieldErrors = map[string]string{"availability": waitErr.Error()}
	case errors.Is(err, eligibility.ErrFutureDonation):
		data.FieldErrors = map[string]string{"last_donation_date": "Last donation date cannot be in the future."}
	default:
		return false
	}

	data.Error = "Please fix the highlighted fields."
	s.recordProfileSave(metrics.ProfileWaiting)
	return true
}

func (s *Service) renderProfileForm(w http.ResponseWriter, r *http.Request, templateName string, data *types.ProfileFormPageData) {
	if err := s.renderTemplate(w, r, templateName, data); err != nil {
		s.logger.WithError(err).WithField("template", templateName).Error("failed to render profile form")
		s.internalServerError(w)
	}
}

func (s *Service) recordProfileSave(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordProfileSave(outcome)
	}
}
