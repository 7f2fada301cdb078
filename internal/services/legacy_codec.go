package services

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/cormacgwin/goodwin-challenge/internal/logger"
	"github.com/cormacgwin/goodwin-challenge/internal/models"
)

const legacyHabitSeparator = ":::"

var legacyStakeTagRegex = regexp.MustCompile(`^\[STAKE:(\d+(?:\.\d+)?)\]\s*`)

// DecodeLegacyRules splits the stake tag off a packed rules string. A missing
// or malformed tag leaves rules untouched and yields the default stake.
func DecodeLegacyRules(packed string) (string, float64) {
	match := legacyStakeTagRegex.FindStringSubmatch(packed)
	if match == nil {
		return packed, models.DefaultStakeAmount
	}
	stake, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return packed, models.DefaultStakeAmount
	}
	return packed[len(match[0]):], stake
}

func EncodeLegacyRules(rules string, stake float64) string {
	return "[STAKE:" + strconv.FormatFloat(stake, 'f', -1, 64) + "] " + rules
}

// DecodeLegacyName separates the display name from the packed habit list.
// An unparseable list degrades to an empty selection.
func DecodeLegacyName(packed string) (string, []string) {
	name, encoded, found := strings.Cut(packed, legacyHabitSeparator)
	if !found {
		return packed, []string{}
	}

	habitIDs := []string{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(encoded)), &habitIDs); err != nil {
		logger.Warn("legacy habit list unreadable", "name", strings.TrimSpace(name), "err", err)
		return strings.TrimSpace(name), []string{}
	}
	return strings.TrimSpace(name), habitIDs
}

// EncodeLegacyName packs name and habit ids into one field.
func EncodeLegacyName(name string, habitIDs []string) string {
	encoded, err := json.Marshal(habitIDs)
	if err != nil || habitIDs == nil {
		encoded = []byte("[]")
	}
	return strings.TrimSpace(name) + legacyHabitSeparator + string(encoded)
}

// ReplaceLegacyDisplayName swaps the name half of a packed value and keeps the
// habit half as it was.
func ReplaceLegacyDisplayName(packed string, name string) string {
	_, encoded, found := strings.Cut(packed, legacyHabitSeparator)
	if !found {
		return strings.TrimSpace(name)
	}
	return strings.TrimSpace(name) + legacyHabitSeparator + encoded
}

// ReplaceLegacyHabitIDs swaps the habit half of a packed value and keeps the
// display name.
func ReplaceLegacyHabitIDs(packed string, habitIDs []string) string {
	name, _, _ := strings.Cut(packed, legacyHabitSeparator)
	return EncodeLegacyName(name, habitIDs)
}
