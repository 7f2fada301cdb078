package services

import (
	"reflect"
	"testing"
	"time"

	"github.com/cormacgwin/goodwin-challenge/internal/models"
)

func challengeHabits() []models.Habit {
	return []models.Habit{
		{ID: "walk", Name: "Walk", Points: 5, Category: models.CategoryHealth},
		{ID: "read", Name: "Read", Points: 10, Category: models.CategoryProductivity},
	}
}

func completedLog(userID string, habitID string, date string) models.HabitLog {
	return models.HabitLog{
		ID:        models.HabitLogID(userID, habitID, date),
		UserID:    userID,
		HabitID:   habitID,
		Date:      date,
		Completed: true,
	}
}

func logsForDays(userID string, habitID string, start time.Time, days int) []models.HabitLog {
	logs := make([]models.HabitLog, 0, days)
	for offset := 0; offset < days; offset++ {
		logs = append(logs, completedLog(userID, habitID, DateKey(start.AddDate(0, 0, offset))))
	}
	return logs
}

func TestCompletionIndexLookups(t *testing.T) {
	index := NewCompletionIndex([]models.HabitLog{
		completedLog("u1", "walk", "2026-05-01"),
		completedLog("u1", "walk", "2026-05-01"),
		{ID: "u1-read-2026-05-01", UserID: "u1", HabitID: "read", Date: "2026-05-01", Completed: false},
	})

	if !index.Completed("u1", "walk", "2026-05-01") {
		t.Fatalf("expected walk to be completed")
	}
	if index.Completed("u1", "read", "2026-05-01") {
		t.Fatalf("expected incomplete log to be ignored")
	}
	if !index.ActiveOn("u1", "2026-05-01") || index.ActiveOn("u1", "2026-05-02") {
		t.Fatalf("unexpected active-day lookup result")
	}
	if got := len(index.CompletedLogs("u1")); got != 1 {
		t.Fatalf("expected duplicate logs to collapse, got %d", got)
	}

	var empty *CompletionIndex
	if empty.Completed("u1", "walk", "2026-05-01") || empty.ActiveOn("u1", "2026-05-01") {
		t.Fatalf("expected nil index to report nothing")
	}
}

func TestActiveHabitSetPolicies(t *testing.T) {
	habits := challengeHabits()

	tests := []struct {
		name   string
		user   models.User
		policy ActiveSetPolicy
		want   []string
	}{
		{name: "selection", user: models.User{HabitIDs: []string{"read"}}, policy: SelectionOrCatalog, want: []string{"read"}},
		{name: "empty selection falls back to catalog", user: models.User{}, policy: SelectionOrCatalog, want: []string{"walk", "read"}},
		{name: "stale selection falls back to catalog", user: models.User{HabitIDs: []string{"gone"}}, policy: SelectionOrCatalog, want: []string{"walk", "read"}},
		{name: "stale ids are dropped", user: models.User{HabitIDs: []string{"gone", "walk"}}, policy: SelectionOrCatalog, want: []string{"walk"}},
		{name: "selection only stays empty", user: models.User{}, policy: SelectionOnly, want: []string{}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			active := ActiveHabitSetWithPolicy(testCase.user, habits, testCase.policy)
			got := make([]string, 0, len(active))
			for _, habit := range active {
				got = append(got, habit.ID)
			}
			if !reflect.DeepEqual(got, testCase.want) {
				t.Fatalf("active set = %v, want %v", got, testCase.want)
			}
		})
	}
}

func TestDailyPointsUsesActiveSetAndIgnoresOrphans(t *testing.T) {
	habits := challengeHabits()
	index := NewCompletionIndex([]models.HabitLog{
		completedLog("u1", "walk", "2026-05-02"),
		completedLog("u1", "read", "2026-05-02"),
		completedLog("u1", "deleted", "2026-05-02"),
	})

	everything := models.User{ID: "u1"}
	if got := DailyPoints(everything, habits, index, "2026-05-02"); got != 15 {
		t.Fatalf("DailyPoints() = %d, want 15", got)
	}

	readerOnly := models.User{ID: "u1", HabitIDs: []string{"read"}}
	if got := DailyPoints(readerOnly, habits, index, "2026-05-02"); got != 10 {
		t.Fatalf("DailyPoints() with selection = %d, want 10", got)
	}

	if got := LoggedPoints("u1", IndexHabits(habits), index); got != 15 {
		t.Fatalf("LoggedPoints() = %d, want 15", got)
	}
}

func TestStreak(t *testing.T) {
	habits := challengeHabits()
	start := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, time.May, 6, 0, 0, 0, 0, time.UTC)
	user := models.User{ID: "u1"}

	perfectThrough := func(days int) []models.HabitLog {
		logs := logsForDays("u1", "walk", start, days)
		return append(logs, logsForDays("u1", "read", start, days)...)
	}

	t.Run("no logs", func(t *testing.T) {
		if got := Streak(user, habits, NewCompletionIndex(nil), today, start); got != 0 {
			t.Fatalf("Streak() = %d, want 0", got)
		}
	})

	t.Run("perfect since start includes today", func(t *testing.T) {
		index := NewCompletionIndex(perfectThrough(6))
		timeline, err := BuildTimeline("2026-05-01", "2026-05-10", today.Add(9*time.Hour), time.UTC)
		if err != nil {
			t.Fatalf("BuildTimeline() unexpected error: %v", err)
		}
		if got := Streak(user, habits, index, today, start); got != timeline.CurrentDayNumber {
			t.Fatalf("Streak() = %d, want %d", got, timeline.CurrentDayNumber)
		}
	})

	t.Run("today pending keeps yesterday run", func(t *testing.T) {
		logs := append(perfectThrough(5), completedLog("u1", "walk", "2026-05-06"))
		if got := Streak(user, habits, NewCompletionIndex(logs), today, start); got != 5 {
			t.Fatalf("Streak() = %d, want 5", got)
		}
	})

	t.Run("gap stops the walk", func(t *testing.T) {
		logs := perfectThrough(6)
		filtered := logs[:0]
		for _, log := range logs {
			if log.Date == "2026-05-03" && log.HabitID == "read" {
				continue
			}
			filtered = append(filtered, log)
		}
		if got := Streak(user, habits, NewCompletionIndex(filtered), today, start); got != 3 {
			t.Fatalf("Streak() = %d, want 3", got)
		}
	})

	t.Run("logs before start are not counted", func(t *testing.T) {
		early := logsForDays("u1", "walk", start.AddDate(0, 0, -3), 3)
		early = append(early, logsForDays("u1", "read", start.AddDate(0, 0, -3), 3)...)
		logs := append(perfectThrough(6), early...)
		if got := Streak(user, habits, NewCompletionIndex(logs), today, start); got != 6 {
			t.Fatalf("Streak() = %d, want 6", got)
		}
	})

	t.Run("before challenge start", func(t *testing.T) {
		if got := Streak(user, habits, NewCompletionIndex(perfectThrough(6)), start.AddDate(0, 0, -1), start); got != 0 {
			t.Fatalf("Streak() = %d, want 0", got)
		}
	})
}

func TestCompletedCountAndSortHabitsForDay(t *testing.T) {
	habits := append(challengeHabits(), models.Habit{ID: "stretch", Name: "Stretch", Points: 20, Category: models.CategoryFitness})
	index := NewCompletionIndex([]models.HabitLog{completedLog("u1", "stretch", "2026-05-02")})
	user := models.User{ID: "u1"}

	done, total := CompletedCount(user.ID, habits, index, "2026-05-02")
	if done != 1 || total != 3 {
		t.Fatalf("CompletedCount() = %d/%d, want 1/3", done, total)
	}

	sorted := SortHabitsForDay(user.ID, habits, index, "2026-05-02")
	got := []string{sorted[0].ID, sorted[1].ID, sorted[2].ID}
	want := []string{"read", "walk", "stretch"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SortHabitsForDay() = %v, want %v", got, want)
	}
}

func TestHabitCountsAndPointsHistory(t *testing.T) {
	habits := challengeHabits()
	start := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.May, 10, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, time.May, 3, 0, 0, 0, 0, time.UTC)

	logs := logsForDays("u1", "read", start, 2)
	logs = append(logs, completedLog("u1", "walk", "2026-05-03"))
	index := NewCompletionIndex(logs)

	counts := HabitCounts("u1", habits, index)
	if counts[0].Habit.ID != "read" || counts[0].Count != 2 || counts[1].Count != 1 {
		t.Fatalf("unexpected habit counts: %+v", counts)
	}

	history := PointsHistory("u1", habits, index, start, end, today)
	want := []DailyPointsEntry{
		{Date: "2026-05-01", Points: 10},
		{Date: "2026-05-02", Points: 10},
		{Date: "2026-05-03", Points: 5},
	}
	if !reflect.DeepEqual(history, want) {
		t.Fatalf("PointsHistory() = %+v, want %+v", history, want)
	}
}
