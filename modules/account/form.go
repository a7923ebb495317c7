package account

import (
	"strings"
	"unicode"

	"github.com/example/task-tracker/pkg/validation"
)

// SignUpForm is the submitted sign-up form.
type SignUpForm struct {
	Username  string `json:"username" form:"username" validate:"required,max=150,username"`
	Email     string `json:"email" form:"email" validate:"required,max=254,email"`
	Password1 string `json:"password1" form:"password1" validate:"required"`
	Password2 string `json:"password2" form:"password2" validate:"required"`
}

// Normalize trims surrounding whitespace from the text fields. Passwords are kept as typed.
func (f *SignUpForm) Normalize() {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
}

// Validate checks the form without touching the database.
func (f *SignUpForm) Validate() map[string]string {
	fields := validation.Struct(f)
	if fields == nil {
		fields = map[string]string{}
	}
	if _, bad := fields["password1"]; !bad {
		if msg := passwordProblem(f.Password1); msg != "" {
			fields["password1"] = msg
		}
	}
	if _, bad := fields["password2"]; !bad && f.Password1 != f.Password2 {
		fields["password2"] = "The two password fields didn't match."
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// ProfileForm edits a user's username and email.
type ProfileForm struct {
	Username string `json:"username" form:"username" validate:"required,max=150,username"`
	Email    string `json:"email" form:"email" validate:"required,max=254,email"`
}

// Normalize trims surrounding whitespace.
func (f *ProfileForm) Normalize() {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
}

// Validate checks the form without touching the database.
func (f *ProfileForm) Validate() map[string]string {
	return validation.Struct(f)
}

// LoginForm is the submitted login form.
type LoginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func passwordProblem(password string) string {
	switch {
	case len(password) < MinPasswordLength:
		return "This password is too short. It must contain at least 8 characters."
	case len(password) > MaxPasswordLength:
		return "This password is too long. It must contain at most 72 bytes."
	case strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) < 0:
		return "This password is entirely numeric."
	}
	return ""
}
