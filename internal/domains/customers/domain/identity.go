package domain

import (
	"errors"
	"unicode/utf8"
)

// PhoneLength is the only check applied when a phone is first captured.
const PhoneLength = 10

var ErrInvalidPhone = errors.New("phone number must be exactly 10 characters")

// Identity is the remembered customer. It is not verified against any authority.
type Identity struct {
	Phone string `json:"phone"`
}

// Known reports whether a phone has been remembered.
func (i Identity) Known() bool { return i.Phone != "" }

// ValidateFirstCapture applies the length gate used for the initial prompt.
func ValidateFirstCapture(phone string) error {
	if utf8.RuneCountInString(phone) != PhoneLength {
		return ErrInvalidPhone
	}
	return nil
}
