package profile

import (
	"errors"
	"strings"
)

var ErrIncomplete = errors.New("please fill out all fields")

// UserProfile is the self-reported identity collected by the form.
type UserProfile struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Industry     string `json:"industry"`
	Organization string `json:"organization"`
}

// Normalize trims surrounding whitespace from every field.
func (p UserProfile) Normalize() UserProfile {
	return UserProfile{
		Name:         strings.TrimSpace(p.Name),
		Email:        strings.TrimSpace(p.Email),
		Industry:     strings.TrimSpace(p.Industry),
		Organization: strings.TrimSpace(p.Organization),
	}
}

// Validate requires all four fields, mirroring the form's required inputs.
func (p UserProfile) Validate() error {
	n := p.Normalize()
	if n.Name == "" || n.Email == "" || n.Industry == "" || n.Organization == "" {
		return ErrIncomplete
	}
	if !strings.Contains(n.Email, "@") {
		return ErrIncomplete
	}
	return nil
}
