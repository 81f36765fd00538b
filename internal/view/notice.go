package view

import (
	"errors"

	"github.com/finalyzer/support/backend/internal/model/profile"
	profileService "github.com/finalyzer/support/backend/internal/service/profile"
)

// Notices shown to visitors.
const (
	NoticeIncomplete   = "Please fill out all fields."
	NoticeSubmitFailed = "Failed to submit form. Please try again."
	NoticeRetry        = "Something went wrong. Please try again."
)

// SubmitNotice turns a form submission error into the text shown above the
// form. The signup webhook refusing the form and a local save failure read
// the same; only an unreachable webhook asks to resubmit.
func SubmitNotice(err error) string {
	switch {
	case errors.Is(err, profile.ErrIncomplete):
		return NoticeIncomplete
	case errors.Is(err, profileService.ErrSignupFailed):
		return NoticeSubmitFailed
	default:
		return NoticeRetry
	}
}
