package services

import (
	"time"

	"github.com/cormacgwin/goodwin-challenge/internal/models"
)

type FinancialInput struct {
	User        models.User
	Habits      []models.Habit
	Index       *CompletionIndex
	StartDate   string
	EndDate     string
	StakeAmount float64
	Now         time.Time
	Location    *time.Location
}

type FinancialSummary struct {
	DurationDays        int     `json:"duration_days"`
	DailyPossiblePoints int     `json:"daily_possible_points"`
	TotalPossiblePoints int     `json:"total_possible_points"`
	ValuePerPoint       float64 `json:"value_per_point"`
	EarnedPoints        int     `json:"earned_points"`
	TodayEarnedPoints   int     `json:"today_earned_points"`
	SavedSoFar          float64 `json:"saved_so_far"`
	CurrentDebt         float64 `json:"current_debt"`
	LostSoFar           float64 `json:"lost_so_far"`
	MissedHabitsCount   int     `json:"missed_habits_count"`
	CostOfToday         float64 `json:"cost_of_today"`
}

func FinancialInputFromSettings(settings models.ChallengeSettings, user models.User, habits []models.Habit, index *CompletionIndex, now time.Time, location *time.Location) FinancialInput {
	return FinancialInput{
		User:        user,
		Habits:      habits,
		Index:       index,
		StartDate:   settings.StartDate,
		EndDate:     settings.EndDate,
		StakeAmount: settings.StakeAmount,
		Now:         now,
		Location:    location,
	}
}

// BuildFinancialSummary converts a user's points into stake figures. A zero
// stake or an empty active set yields zero for every money figure.
func BuildFinancialSummary(input FinancialInput) (FinancialSummary, error) {
	location := input.Location
	if location == nil {
		location = time.UTC
	}
	start, err := ParseLocalDate(input.StartDate, location)
	if err != nil {
		return FinancialSummary{}, err
	}
	end, err := ParseLocalDate(input.EndDate, location)
	if err != nil {
		return FinancialSummary{}, err
	}

	summary := FinancialSummary{DurationDays: CountDaysInclusive(start, end)}
	if summary.DurationDays < 1 {
		summary.DurationDays = 1
	}

	active := ActiveHabitSet(input.User, input.Habits)
	summary.DailyPossiblePoints = SumPoints(active)
	summary.TotalPossiblePoints = summary.DailyPossiblePoints * summary.DurationDays
	if input.StakeAmount > 0 && summary.TotalPossiblePoints > 0 {
		summary.ValuePerPoint = input.StakeAmount / float64(summary.TotalPossiblePoints)
	}

	today := DateAtLocation(input.Now, location)
	todayKey := DateKey(today)
	summary.EarnedPoints = LoggedPoints(input.User.ID, IndexHabits(input.Habits), input.Index)
	summary.TodayEarnedPoints = DailyPoints(input.User, input.Habits, input.Index, todayKey)

	missedPoints := 0
	cutoff := end.AddDate(0, 0, 1)
	if today.Before(cutoff) {
		cutoff = today
	}
	for day := start; day.Before(cutoff); day = day.AddDate(0, 0, 1) {
		key := DateKey(day)
		for _, habit := range active {
			if input.Index.Completed(input.User.ID, habit.ID, key) {
				continue
			}
			summary.MissedHabitsCount++
			missedPoints += habit.Points
		}
	}

	if summary.ValuePerPoint == 0 {
		return summary, nil
	}

	summary.SavedSoFar = float64(summary.EarnedPoints) * summary.ValuePerPoint
	summary.CurrentDebt = input.StakeAmount - summary.SavedSoFar
	if summary.CurrentDebt < 0 {
		summary.CurrentDebt = 0
	}
	summary.LostSoFar = float64(missedPoints) * summary.ValuePerPoint

	if !today.Before(start) && !today.After(end) {
		remaining := summary.DailyPossiblePoints - summary.TodayEarnedPoints
		if remaining > 0 {
			summary.CostOfToday = float64(remaining) * summary.ValuePerPoint
		}
	}
	return summary, nil
}

// Pot is the total currency already lost across every summary.
func Pot(summaries []FinancialSummary) float64 {
	total := 0.0
	for _, summary := range summaries {
		total += summary.LostSoFar
	}
	return total
}
