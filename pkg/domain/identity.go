package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// KeyLength is the number of digits in a guest identifier.
const KeyLength = 12

// NormalizeKey strips dashes and spaces from a raw guest identifier.
func NormalizeKey(raw string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(raw)
}

// ValidKey reports whether raw normalizes to exactly KeyLength digits.
func ValidKey(raw string) bool {
	key := NormalizeKey(raw)
	return len(key) == KeyLength && IsDigits(key)
}

// IsDigits reports whether s is non-empty and made only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ValidPrice reports whether s parses as a finite non-negative decimal.
func ValidPrice(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	// ParseFloat accepts forms like "Inf", "NaN" and hex floats.
	for _, c := range s {
		if (c < '0' || c > '9') && c != '.' {
			return false
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && v >= 0
}

// ParseRoomNumber converts a 1-based room number string to a slice index
// for an inventory of count rooms.
func ParseRoomNumber(s string, count int) (int, error) {
	if !IsDigits(s) {
		return 0, &ValidationError{Field: "room", Value: s, Reason: "must be a number"}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ValidationError{Field: "room", Value: s, Reason: "must be a number"}
	}
	if n < 1 || n > count {
		return 0, fmt.Errorf("room %d of %d: %w", n, count, ErrNotFound)
	}
	return n - 1, nil
}

// RoomNumberString renders a slice index as a 1-based room number.
func RoomNumberString(index int) string {
	return strconv.Itoa(index + 1)
}
