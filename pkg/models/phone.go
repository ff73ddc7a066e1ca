package models

import (
	"regexp"
	"strconv"
)

// Valid whitelist entries are the ten local digits of a 9xxxxxxxxx mobile number.
const (
	PhoneMin int64 = 9000000000
	PhoneMax int64 = 9999999999
)

// PhoneWhiteList represents a phone number authorized to register
type PhoneWhiteList struct {
	Phone  int64  `json:"phone" db:"phone"`
	UserID *int64 `json:"user_id" db:"user_id"` // user currently bound to the phone, if any
}

var mobilePattern = regexp.MustCompile(`^[78]?(9\d{9})$`)

// NormalizePhone extracts the ten-digit local mobile number from raw input.
// Non-digit characters are stripped and an optional 7/8 country prefix is
// dropped, so "+7 911 123-45-67", "89111234567" and "9111234567" all
// normalize to 9111234567. Returns false for anything else.
func NormalizePhone(raw string) (int64, bool) {
	digits := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			digits = append(digits, raw[i])
		}
	}

	match := mobilePattern.FindSubmatch(digits)
	if match == nil {
		return 0, false
	}

	phone, err := strconv.ParseInt(string(match[1]), 10, 64)
	if err != nil {
		return 0, false
	}
	return phone, true
}
