package services

import (
	"sort"
	"time"

	"github.com/cormacgwin/goodwin-challenge/internal/models"
)

// ActiveSetPolicy names how a user's habit selection maps onto the catalog.
type ActiveSetPolicy int

const (
	// SelectionOrCatalog counts the selected habits that still exist and falls
	// back to the whole catalog when none remain. Points, streaks and money use it.
	SelectionOrCatalog ActiveSetPolicy = iota
	// SelectionOnly counts the selected habits that still exist and nothing
	// else. The dashboard checklist uses it, so an empty selection lists nothing.
	SelectionOnly
)

type HabitCount struct {
	Habit models.Habit `json:"habit"`
	Count int          `json:"count"`
}

type DailyPointsEntry struct {
	Date   string `json:"date"`
	Points int    `json:"points"`
}

func IndexHabits(habits []models.Habit) map[string]models.Habit {
	byID := make(map[string]models.Habit, len(habits))
	for _, habit := range habits {
		byID[habit.ID] = habit
	}
	return byID
}

func ActiveHabitSet(user models.User, habits []models.Habit) []models.Habit {
	return ActiveHabitSetWithPolicy(user, habits, SelectionOrCatalog)
}

// ActiveHabitSetWithPolicy keeps catalog order. Selected ids that no longer
// exist are ignored.
func ActiveHabitSetWithPolicy(user models.User, habits []models.Habit, policy ActiveSetPolicy) []models.Habit {
	selected := make(map[string]struct{}, len(user.HabitIDs))
	for _, habitID := range user.HabitIDs {
		selected[habitID] = struct{}{}
	}

	active := make([]models.Habit, 0, len(user.HabitIDs))
	for _, habit := range habits {
		if _, ok := selected[habit.ID]; ok {
			active = append(active, habit)
		}
	}

	if len(active) == 0 && policy == SelectionOrCatalog {
		return append([]models.Habit(nil), habits...)
	}
	return active
}

func SumPoints(habits []models.Habit) int {
	total := 0
	for _, habit := range habits {
		total += habit.Points
	}
	return total
}

func DailyPoints(user models.User, habits []models.Habit, index *CompletionIndex, date string) int {
	total := 0
	for _, habit := range ActiveHabitSet(user, habits) {
		if index.Completed(user.ID, habit.ID, date) {
			total += habit.Points
		}
	}
	return total
}

// LoggedPointsOn sums every completed log of the user on date against the
// full catalog, independent of the selection.
func LoggedPointsOn(userID string, habitsByID map[string]models.Habit, index *CompletionIndex, date string) int {
	total := 0
	for _, log := range index.CompletedLogs(userID) {
		if log.Date != date {
			continue
		}
		if habit, ok := habitsByID[log.HabitID]; ok {
			total += habit.Points
		}
	}
	return total
}

// LoggedPoints sums every completed log of the user whose habit still exists.
func LoggedPoints(userID string, habitsByID map[string]models.Habit, index *CompletionIndex) int {
	total := 0
	for _, log := range index.CompletedLogs(userID) {
		if habit, ok := habitsByID[log.HabitID]; ok {
			total += habit.Points
		}
	}
	return total
}

func IsPerfectDay(user models.User, habits []models.Habit, index *CompletionIndex, date string) bool {
	return isPerfectDay(user.ID, ActiveHabitSet(user, habits), index, date)
}

func isPerfectDay(userID string, active []models.Habit, index *CompletionIndex, date string) bool {
	if len(active) == 0 {
		return false
	}
	for _, habit := range active {
		if !index.Completed(userID, habit.ID, date) {
			return false
		}
	}
	return true
}

// Streak counts consecutive perfect days ending today, or ending yesterday
// when today is not perfect yet. The walk never goes before start.
func Streak(user models.User, habits []models.Habit, index *CompletionIndex, today time.Time, start time.Time) int {
	active := ActiveHabitSet(user, habits)
	day := calendarDay(today)
	first := calendarDay(start)
	if day.Before(first) {
		return 0
	}

	streak := 0
	if isPerfectDay(user.ID, active, index, DateKey(day)) {
		streak++
	}
	for day = day.AddDate(0, 0, -1); !day.Before(first); day = day.AddDate(0, 0, -1) {
		if !isPerfectDay(user.ID, active, index, DateKey(day)) {
			break
		}
		streak++
	}
	return streak
}

// CompletedCount reports how many of habits the user has done on date.
func CompletedCount(userID string, habits []models.Habit, index *CompletionIndex, date string) (int, int) {
	done := 0
	for _, habit := range habits {
		if index.Completed(userID, habit.ID, date) {
			done++
		}
	}
	return done, len(habits)
}

// SortHabitsForDay puts incomplete habits first, then higher point values.
func SortHabitsForDay(userID string, habits []models.Habit, index *CompletionIndex, date string) []models.Habit {
	sorted := append([]models.Habit(nil), habits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		doneI := index.Completed(userID, sorted[i].ID, date)
		doneJ := index.Completed(userID, sorted[j].ID, date)
		if doneI != doneJ {
			return !doneI
		}
		return sorted[i].Points > sorted[j].Points
	})
	return sorted
}

func HabitCounts(userID string, habits []models.Habit, index *CompletionIndex) []HabitCount {
	totals := make(map[string]int, len(habits))
	for _, log := range index.CompletedLogs(userID) {
		totals[log.HabitID]++
	}

	counts := make([]HabitCount, 0, len(habits))
	for _, habit := range habits {
		counts = append(counts, HabitCount{Habit: habit, Count: totals[habit.ID]})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

// PointsHistory lists catalog points per day from start through the earlier
// of end and today.
func PointsHistory(userID string, habits []models.Habit, index *CompletionIndex, start time.Time, end time.Time, today time.Time) []DailyPointsEntry {
	last := calendarDay(end)
	if current := calendarDay(today); current.Before(last) {
		last = current
	}

	habitsByID := IndexHabits(habits)
	days := DaysInRange(start, last)
	history := make([]DailyPointsEntry, 0, len(days))
	for _, day := range days {
		key := DateKey(day)
		history = append(history, DailyPointsEntry{
			Date:   key,
			Points: LoggedPointsOn(userID, habitsByID, index, key),
		})
	}
	return history
}
