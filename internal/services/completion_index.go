package services

import "github.com/cormacgwin/goodwin-challenge/internal/models"

type completionKey struct {
	userID  string
	habitID string
	date    string
}

type userDayKey struct {
	userID string
	date   string
}

// CompletionIndex answers completion lookups over a log set. Only logs with
// Completed set are indexed; an absent log means "not done".
type CompletionIndex struct {
	completed map[completionKey]struct{}
	activeOn  map[userDayKey]struct{}
	byUser    map[string][]models.HabitLog
}

func NewCompletionIndex(logs []models.HabitLog) *CompletionIndex {
	index := &CompletionIndex{
		completed: make(map[completionKey]struct{}, len(logs)),
		activeOn:  make(map[userDayKey]struct{}),
		byUser:    make(map[string][]models.HabitLog),
	}

	for _, log := range logs {
		if !log.Completed {
			continue
		}
		key := completionKey{userID: log.UserID, habitID: log.HabitID, date: log.Date}
		if _, exists := index.completed[key]; exists {
			continue
		}
		index.completed[key] = struct{}{}
		index.activeOn[userDayKey{userID: log.UserID, date: log.Date}] = struct{}{}
		index.byUser[log.UserID] = append(index.byUser[log.UserID], log)
	}
	return index
}

func (index *CompletionIndex) Completed(userID string, habitID string, date string) bool {
	if index == nil {
		return false
	}
	_, ok := index.completed[completionKey{userID: userID, habitID: habitID, date: date}]
	return ok
}

// ActiveOn reports whether the user completed any habit on date.
func (index *CompletionIndex) ActiveOn(userID string, date string) bool {
	if index == nil {
		return false
	}
	_, ok := index.activeOn[userDayKey{userID: userID, date: date}]
	return ok
}

// CompletedLogs returns the user's distinct completed logs.
func (index *CompletionIndex) CompletedLogs(userID string) []models.HabitLog {
	if index == nil {
		return nil
	}
	return index.byUser[userID]
}
