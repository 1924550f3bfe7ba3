package mhrs

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// The portal renders Turkish text. Go's Unicode case mapping sends "i" to "I"
// and "İ" to "i̇" (i plus a combining dot), neither of which matches what the
// portal displays, so the dotted I is mapped by hand before changing case.

// NormalizeUpper trims s and upper-cases it with "i" mapped to "İ".
func NormalizeUpper(s string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "i", "İ"))
}

// NormalizeLower trims s and lower-cases it with "İ" mapped to "i".
func NormalizeLower(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "İ", "i"))
}

var timeSeparator = regexp.MustCompile(`[:;,.]`)

// ParseMainHour returns the hour portion of a time string ("11:40" -> "11").
func ParseMainHour(clock string) string {
	return strings.TrimSpace(timeSeparator.Split(strings.TrimSpace(clock), -1)[0])
}

// NormalizeTime converts "9.5", "09;05" or "9" to zero-padded "HH:MM".
// A missing minute defaults to 00.
func NormalizeTime(clock string) (string, error) {
	parts := timeSeparator.Split(strings.TrimSpace(clock), -1)

	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || hour < 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, clock)
	}
	minute := 0
	if len(parts) > 1 {
		minute, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || minute < 0 || minute > 59 {
			return "", fmt.Errorf("%w: %q", ErrInvalidTime, clock)
		}
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// sameHour reports whether a bucket header names the requested hour. Both
// sides are compared as numbers when they parse, so "9" matches "09:00".
func sameHour(header, hour string) bool {
	h := ParseMainHour(header)
	a, errA := strconv.Atoi(h)
	b, errB := strconv.Atoi(hour)
	if errA == nil && errB == nil {
		return a == b
	}
	return h == hour
}

// splitLines splits scraped element text into lines, dropping carriage returns.
func splitLines(text string) []string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return lines
}

func containsUpper(option, query string) bool {
	return strings.Contains(NormalizeUpper(option), NormalizeUpper(query))
}

func containsLower(text, query string) bool {
	return strings.Contains(NormalizeLower(text), NormalizeLower(query))
}
