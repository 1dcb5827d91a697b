package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// NormalizeSeat trims whitespace and upper-cases a seat token.
func NormalizeSeat(raw string) (string, error) {
	seat := strings.ToUpper(strings.TrimSpace(raw))
	if seat == "" {
		return "", fmt.Errorf("%w: seat number cannot be empty", ErrInvalidRequest)
	}
	return seat, nil
}

func NormalizeSeats(raw []string) ([]string, error) {
	seats := make([]string, 0, len(raw))
	for _, r := range raw {
		seat, err := NormalizeSeat(r)
		if err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}
	return seats, nil
}

// CanonicalSeat maps an all-digit token to its decimal form without leading
// zeros, so "07" and "7" name the same seat. Anything else, signed tokens
// included, is returned unchanged.
func CanonicalSeat(seat string) string {
	if !isDigits(seat) {
		return seat
	}
	trimmed := strings.TrimLeft(seat, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidateSeatNumbers checks normalized tokens against the flight capacity and
// returns them in canonical form, in request order.
func ValidateSeatNumbers(seats []string, totalSeats int) ([]string, error) {
	var nonNumeric, outOfRange []string
	canonical := make([]string, 0, len(seats))
	for _, seat := range seats {
		if !isDigits(seat) {
			nonNumeric = append(nonNumeric, seat)
			continue
		}
		// all digits, so the only possible error is overflow
		n, err := strconv.Atoi(seat)
		if err != nil || n < 1 || n > totalSeats {
			outOfRange = append(outOfRange, seat)
			continue
		}
		canonical = append(canonical, strconv.Itoa(n))
	}
	if len(nonNumeric) > 0 {
		return nil, fmt.Errorf("%w: seat numbers must be numeric: %s", ErrInvalidRequest, strings.Join(nonNumeric, ", "))
	}
	if len(outOfRange) > 0 {
		return nil, fmt.Errorf("%w: seat numbers out of range (1-%d): %s", ErrInvalidRequest, totalSeats, strings.Join(outOfRange, ", "))
	}
	if dups := lo.FindDuplicates(canonical); len(dups) > 0 {
		return nil, fmt.Errorf("%w: duplicate seat numbers are not allowed: %s", ErrInvalidRequest, strings.Join(dups, ", "))
	}
	return canonical, nil
}

// CanonicalSeats normalizes stored tokens the same way request tokens are.
// Blank entries are dropped.
func CanonicalSeats(stored []string) []string {
	out := make([]string, 0, len(stored))
	for _, s := range stored {
		seat, err := NormalizeSeat(s)
		if err != nil {
			continue
		}
		out = append(out, CanonicalSeat(seat))
	}
	return out
}

// SeatConflicts returns the requested seats that are already booked, in
// request order.
func SeatConflicts(requested, booked []string) []string {
	return lo.Uniq(lo.Filter(requested, func(seat string, _ int) bool {
		return lo.Contains(booked, seat)
	}))
}
