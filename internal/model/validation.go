package model

import (
	"errors"
	"fmt"
	"math"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Validation limits, counted in characters.
const (
	MaxFullNameLength    = 100
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
	MaxEmailLength       = 254

	// MaxPrice keeps sums over any realistic store far from float64 overflow.
	MaxPrice = 1e12
)

// Validation errors.
var (
	ErrInvalidEmail       = errors.New("value is not a valid email address")
	ErrFullNameLength     = fmt.Errorf("must be between 1 and %d characters", MaxFullNameLength)
	ErrTitleLength        = fmt.Errorf("must be between 1 and %d characters", MaxTitleLength)
	ErrDescriptionTooLong = fmt.Errorf("must be at most %d characters", MaxDescriptionLength)
	ErrPriceNotPositive   = errors.New("must be greater than 0")
	ErrPriceTooLarge      = errors.New("must be at most 1000000000000")
)

// ValidationError ties a rule violation to the offending field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// ValidateEmail accepts a bare address (no display name) with a dotted domain.
func ValidateEmail(email string) error {
	if email == "" || len(email) > MaxEmailLength {
		return invalid("email", ErrInvalidEmail)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return invalid("email", ErrInvalidEmail)
	}
	at := strings.LastIndexByte(email, '@')
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return invalid("email", ErrInvalidEmail)
	}
	return nil
}

func checkLength(field, value string, maxLen int, err error) error {
	n := utf8.RuneCountInString(value)
	if n < 1 || n > maxLen {
		return invalid(field, err)
	}
	return nil
}

func checkDescription(desc *string) error {
	if desc != nil && utf8.RuneCountInString(*desc) > MaxDescriptionLength {
		return invalid("description", ErrDescriptionTooLong)
	}
	return nil
}

func checkPrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return invalid("price", ErrPriceNotPositive)
	}
	if price > MaxPrice {
		return invalid("price", ErrPriceTooLarge)
	}
	return nil
}

// Validate checks every field of a new user.
func (n NewUser) Validate() error {
	if err := ValidateEmail(n.Email); err != nil {
		return err
	}
	return checkLength("full_name", n.FullName, MaxFullNameLength, ErrFullNameLength)
}

// Validate checks the fields present in the patch.
func (p UserPatch) Validate() error {
	if p.Email != nil {
		if err := ValidateEmail(*p.Email); err != nil {
			return err
		}
	}
	if p.FullName != nil {
		return checkLength("full_name", *p.FullName, MaxFullNameLength, ErrFullNameLength)
	}
	return nil
}

// Validate checks every field of a new item.
func (n NewItem) Validate() error {
	if err := checkLength("title", n.Title, MaxTitleLength, ErrTitleLength); err != nil {
		return err
	}
	if err := checkDescription(n.Description); err != nil {
		return err
	}
	return checkPrice(n.Price)
}

// Validate checks the fields present in the patch.
func (p ItemPatch) Validate() error {
	if p.Title != nil {
		if err := checkLength("title", *p.Title, MaxTitleLength, ErrTitleLength); err != nil {
			return err
		}
	}
	if err := checkDescription(p.Description); err != nil {
		return err
	}
	if p.Price != nil {
		return checkPrice(*p.Price)
	}
	return nil
}
