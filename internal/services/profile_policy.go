package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxDisplayNameLength   = 64
	RequiredHabitSelection = 5
)

var (
	ErrDisplayNameRequired    = errors.New("display name required")
	ErrDisplayNameTooLong     = errors.New("display name too long")
	ErrHabitSelectionSize     = errors.New("habit selection size invalid")
	ErrHabitSelectionDupe     = errors.New("habit selection has duplicates")
	ErrHabitSelectionUnknown  = errors.New("habit selection references unknown habit")
	ErrChallengeDatesInvalid  = errors.New("challenge dates invalid")
	ErrLastAdminRemoval       = errors.New("cannot remove the last admin")
	ErrTeamAssignmentNotFound = errors.New("team assignment target not found")
)

// NormalizeDisplayName trims the name and rejects empty or overlong values.
// The legacy habit separator is refused so stored names never look packed.
func NormalizeDisplayName(raw string) (string, error) {
	displayName := strings.TrimSpace(raw)
	if displayName == "" {
		return "", ErrDisplayNameRequired
	}
	if utf8.RuneCountInString(displayName) > maxDisplayNameLength {
		return "", ErrDisplayNameTooLong
	}
	if strings.Contains(displayName, legacyHabitSeparator) {
		return "", fmt.Errorf("%w: reserved separator", ErrInvalidInput)
	}
	return displayName, nil
}

// ValidateHabitSelection requires exactly RequiredHabitSelection distinct
// existing habits, or every habit when the catalog is smaller than that.
func ValidateHabitSelection(habitIDs []string, catalog map[string]struct{}) ([]string, error) {
	required := RequiredHabitSelection
	if len(catalog) < required {
		required = len(catalog)
	}
	if len(habitIDs) != required {
		return nil, ErrHabitSelectionSize
	}

	seen := make(map[string]struct{}, len(habitIDs))
	normalized := make([]string, 0, len(habitIDs))
	for _, raw := range habitIDs {
		habitID := strings.TrimSpace(raw)
		if _, dupe := seen[habitID]; dupe {
			return nil, ErrHabitSelectionDupe
		}
		if _, ok := catalog[habitID]; !ok {
			return nil, ErrHabitSelectionUnknown
		}
		seen[habitID] = struct{}{}
		normalized = append(normalized, habitID)
	}
	return normalized, nil
}

// ValidateChallengeDates normalizes both dates and requires end >= start.
func ValidateChallengeDates(startRaw string, endRaw string) (string, string, error) {
	start, err := ParseLocalDate(startRaw, nil)
	if err != nil {
		return "", "", ErrChallengeDatesInvalid
	}
	end, err := ParseLocalDate(endRaw, nil)
	if err != nil {
		return "", "", ErrChallengeDatesInvalid
	}
	if end.Before(start) {
		return "", "", ErrChallengeDatesInvalid
	}
	return DateKey(start), DateKey(end), nil
}
