package service

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	maxTitleLength   = 200
	maxNameLength    = 100
	maxMessageLength = 5000
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLength = 72
)

// checkInput turns ozzo validation errors into ErrInvalidInput. Other errors
// come from rule implementations and are passed through.
func checkInput(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return invalidInput(verrs.Error())
	}
	return err
}

func parseID(s string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

// parseDate accepts YYYY-MM-DD or RFC 3339. An empty string means no date.
func parseDate(field, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, invalidInput(field + ": must be a date in YYYY-MM-DD or RFC 3339 format.")
}

// formatDate renders midnight UTC as a bare date, anything else as RFC 3339.
func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	u := t.UTC()
	var s string
	if u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
		s = u.Format("2006-01-02")
	} else {
		s = u.Format(time.RFC3339)
	}
	return &s
}
