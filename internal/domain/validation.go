package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

// Validation messages returned to clients.
const (
	MsgEmailTaken          = "A user with this email already exists."
	MsgEmailInvalid        = "Enter a valid email address."
	MsgNationalIDLength    = "National ID must be between 12 and 18 characters long."
	MsgPassportLength      = "Passport number must be exactly 9 characters long."
	MsgIdentityRequired    = "Either national ID or passport number must be provided."
	MsgPasswordTooShort    = "Ensure this field has at least 8 characters."
	MsgDefaultRoleMissing  = "Default 'tenant' role does not exist."
	MsgNationalIDTaken     = "user with this national id already exists."
	MsgPassportTaken       = "user with this passport number already exists."
	MsgProjectNameEmpty    = "Project name cannot be empty."
	MsgProjectNameTaken    = "A project with this name already exists."
	MsgUnitProjectRequired = "Property project is required"
	MsgUnitNameRequired    = "Unit number is required"
	MsgUnitPriceRequired   = "Price is required"
	MsgPriceNegative       = "Price must be non-negative"
	MsgAmenitiesObject     = "Amenities must be a valid JSON object"
	MsgFieldRequired       = "This field is required."
	MsgAmountNegative      = "Ensure this value is greater than or equal to 0."
	MsgPeriodOrder         = "Period end must not be before period start."
	MsgImageDuplicate      = "This image is already attached to the unit."
	MsgMoneyTooLarge       = "Ensure that there are no more than 10 digits before the decimal point."
)

const (
	NationalIDMinLen  = 12
	NationalIDMaxLen  = 18
	PassportLen       = 9
	PasswordMinLength = 8

	// MaxMoney bounds NUMERIC(12,2) columns: 10 integer digits.
	MaxMoney = 1e10
)

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmailFormat returns a message when email is not an address.
func ValidateEmailFormat(email string) string {
	if email == "" {
		return ""
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return MsgEmailInvalid
	}
	return ""
}

// ValidateNationalID returns a message when a non-empty id is outside [12,18].
func ValidateNationalID(id string) string {
	if id == "" {
		return ""
	}
	if n := utf8.RuneCountInString(id); n < NationalIDMinLen || n > NationalIDMaxLen {
		return MsgNationalIDLength
	}
	return ""
}

// ValidatePassportNumber returns a message when a non-empty number is not 9 long.
func ValidatePassportNumber(number string) string {
	if number == "" {
		return ""
	}
	if utf8.RuneCountInString(number) != PassportLen {
		return MsgPassportLength
	}
	return ""
}

// ValidatePassword returns a message when password is shorter than 8.
func ValidatePassword(password string) string {
	if utf8.RuneCountInString(password) < PasswordMinLength {
		return MsgPasswordTooShort
	}
	return ""
}

// RequireIdentityDocument fails when both national id and passport are empty.
func RequireIdentityDocument(nationalID, passportNumber string) string {
	if nationalID == "" && passportNumber == "" {
		return MsgIdentityRequired
	}
	return ""
}

// AssignDefaultRole returns requested unchanged when it is non-empty.
// Otherwise it returns exactly the tenant role taken from catalog, or
// ErrDefaultRoleMissing when the catalog does not contain it.
func AssignDefaultRole(requested []Role, catalog []Role) ([]Role, error) {
	if len(requested) > 0 {
		return requested, nil
	}
	for _, r := range catalog {
		if r.Name == DefaultRoleName {
			return []Role{r}, nil
		}
	}
	return nil, ErrDefaultRoleMissing
}

// ValidateMoney returns a message when v does not fit a NUMERIC(12,2) column.
func ValidateMoney(v float64) string {
	if math.Abs(v) >= MaxMoney {
		return MsgMoneyTooLarge
	}
	return ""
}

// ValidateChoice returns a message when value is not one of allowed.
func ValidateChoice(value string, allowed []string) string {
	for _, a := range allowed {
		if value == a {
			return ""
		}
	}
	return fmt.Sprintf("%q is not a valid choice.", value)
}

// ValidateAmenities accepts nil, JSON null, or a JSON object.
func ValidateAmenities(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var obj map[string]any
	if trimmed[0] != '{' || json.Unmarshal(trimmed, &obj) != nil {
		return MsgAmenitiesObject
	}
	return ""
}

// PaidDays is the inclusive number of days in [start, end].
func PaidDays(start, end Date) (int, error) {
	v := NewValidationError()
	if !start.Valid {
		v.Add("period_start", MsgFieldRequired)
	}
	if !end.Valid {
		v.Add("period_end", MsgFieldRequired)
	}
	if !v.Empty() {
		return 0, v
	}
	if end.Before(start) {
		return 0, FieldError("period_end", MsgPeriodOrder)
	}
	return int(end.Time.Sub(start.Time)/(24*time.Hour)) + 1, nil
}
