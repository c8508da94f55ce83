package validation

import (
	"regexp"
	"strings"

	"github.com/cagecms/cage/internal/config"
)

// Validator checks incoming identifiers and credentials against the
// configured patterns.
type Validator struct {
	userID    *regexp.Regexp
	userName  *regexp.Regexp
	password  *regexp.Regexp
	contentID *regexp.Regexp
}

// New compiles the configured patterns into a validator.
func New(cfg *config.BlogConfig) (*Validator, error) {
	userID, err := regexp.Compile(cfg.UserIDPattern)
	if err != nil {
		return nil, err
	}
	userName, err := regexp.Compile(cfg.UserNamePattern)
	if err != nil {
		return nil, err
	}
	password, err := regexp.Compile(cfg.PasswordPattern)
	if err != nil {
		return nil, err
	}
	contentID, err := regexp.Compile(cfg.ContentIDPattern)
	if err != nil {
		return nil, err
	}
	return &Validator{
		userID:    userID,
		userName:  userName,
		password:  password,
		contentID: contentID,
	}, nil
}

// ValidUserID reports whether id is an acceptable user ID.
func (v *Validator) ValidUserID(id string) bool {
	return v.userID.MatchString(id)
}

// ValidUserName reports whether name is an acceptable display name.
func (v *Validator) ValidUserName(name string) bool {
	return v.userName.MatchString(name)
}

// ValidPassword reports whether the plaintext password is acceptable.
func (v *Validator) ValidPassword(password string) bool {
	return v.password.MatchString(password)
}

// ValidContentID reports whether id is an acceptable article or
// category ID.
func (v *Validator) ValidContentID(id string) bool {
	return v.contentID.MatchString(id)
}

// TrimmedNonEmpty returns the trimmed string and whether anything
// remains after trimming.
func TrimmedNonEmpty(s string) (string, bool) {
	t := strings.TrimSpace(s)
	return t, t != ""
}
