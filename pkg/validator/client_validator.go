package validator

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrInvalidClientID  = errors.New("invalid client id")
	ErrInvalidName      = errors.New("invalid name")
	ErrInvalidBirthDate = errors.New("invalid birth date")
	ErrInvalidAddress   = errors.New("invalid address")
)

var birthDateLayouts = []string{"2006-01-02", "02/01/2006", "02-01-2006"}

type ClientRegistration struct {
	ID        string
	Name      string
	BirthDate time.Time
	Address   string
}

type ClientValidator struct {
	idRegex *regexp.Regexp
	now     func() time.Time
}

func NewClientValidator() *ClientValidator {
	return &ClientValidator{
		idRegex: regexp.MustCompile(`^[0-9]{3,14}$`),
		now:     time.Now,
	}
}

// NormalizeID strips the punctuation of a formatted CPF ("123.456.789-09").
func NormalizeID(raw string) string {
	return strings.NewReplacer(".", "", "-", "", " ", "").Replace(raw)
}

// ValidateRegistration checks and normalizes raw registration input.
// Birth dates are accepted as YYYY-MM-DD, DD/MM/YYYY or DD-MM-YYYY.
func (v *ClientValidator) ValidateRegistration(id, name, birthDate, address string) (ClientRegistration, error) {
	var errs []error

	reg := ClientRegistration{
		ID:      NormalizeID(id),
		Name:    strings.TrimSpace(name),
		Address: strings.TrimSpace(address),
	}

	if !v.idRegex.MatchString(reg.ID) {
		errs = append(errs, ErrInvalidClientID)
	}

	if reg.Name == "" {
		errs = append(errs, ErrInvalidName)
	}

	if reg.Address == "" {
		errs = append(errs, ErrInvalidAddress)
	}

	parsed, err := parseBirthDate(strings.TrimSpace(birthDate))
	if err != nil || parsed.After(v.now()) {
		errs = append(errs, ErrInvalidBirthDate)
	}
	reg.BirthDate = parsed

	if len(errs) > 0 {
		return ClientRegistration{}, errors.Join(errs...)
	}

	return reg, nil
}

func parseBirthDate(raw string) (time.Time, error) {
	for _, layout := range birthDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidBirthDate
}
