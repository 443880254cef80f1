// Package natsort orders names the way a human reads them: the first run of
// digits is compared by numeric value, so "Lecture 2" comes before
// "Lecture 10".
package natsort

import (
	"sort"
	"strings"
)

// Compare returns a negative value if a orders before b, zero if they are
// equivalent, positive otherwise. When both names contain a run of decimal
// digits, the first runs are compared numerically; on a tie, or when either
// name has no digits, the whole strings are compared case-insensitively.
func Compare(a, b string) int {
	aNum, aOk := firstNumber(a)
	bNum, bOk := firstNumber(b)

	if aOk && bOk && aNum != bNum {
		if aNum < bNum {
			return -1
		}
		return 1
	}

	switch {
	case strings.EqualFold(a, b):
		return 0
	default:
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	}
}

// CompareNullable extends Compare to absent names: nil sorts before any
// present name, two nils are equal.
func CompareNullable(a, b *string) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	return Compare(*a, *b)
}

// Less is a convenience wrapper for sort callbacks.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// Sort orders names in place.
func Sort(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return Less(names[i], names[j])
	})
}

// firstNumber extracts the first maximal run of decimal digits as an integer.
// Runs longer than 18 digits are truncated to keep the value in range, which
// still yields a stable ordering.
func firstNumber(s string) (int64, bool) {
	begin := -1
	end := len(s)
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if begin < 0 {
				begin = i
			}
			continue
		}
		if begin >= 0 {
			end = i
			break
		}
	}
	if begin < 0 {
		return 0, false
	}

	digits := s[begin:end]
	if len(digits) > 18 {
		digits = digits[:18]
	}

	var value int64
	for _, r := range digits {
		value = value*10 + int64(r-'0')
	}
	return value, true
}
