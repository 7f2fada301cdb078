package services

import (
	"math"
	"time"
)

const dayDuration = 24 * time.Hour

type ChallengePhase string

const (
	PhaseFuture   ChallengePhase = "future"
	PhaseActive   ChallengePhase = "active"
	PhaseFinished ChallengePhase = "finished"
)

type Countdown struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

type Timeline struct {
	StartsAt         time.Time      `json:"starts_at"`
	EndsAt           time.Time      `json:"ends_at"`
	IsFuture         bool           `json:"is_future"`
	IsFinished       bool           `json:"is_finished"`
	Phase            ChallengePhase `json:"phase"`
	PercentComplete  float64        `json:"percent_complete"`
	CurrentDayNumber int            `json:"current_day_number"`
	DaysLeft         int            `json:"days_left"`
	Countdown        *Countdown     `json:"countdown,omitempty"`
}

// ChallengeBounds returns local midnight of the start date and the last
// millisecond of the end date.
func ChallengeBounds(startDate string, endDate string, location *time.Location) (time.Time, time.Time, error) {
	startsAt, err := ParseLocalDate(startDate, location)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endDay, err := ParseLocalDate(endDate, location)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endsAt := endDay.AddDate(0, 0, 1).Add(-time.Millisecond)
	return startsAt, endsAt, nil
}

func BuildTimeline(startDate string, endDate string, now time.Time, location *time.Location) (Timeline, error) {
	if location == nil {
		location = time.UTC
	}
	startsAt, endsAt, err := ChallengeBounds(startDate, endDate, location)
	if err != nil {
		return Timeline{}, err
	}

	now = now.In(location)
	timeline := Timeline{
		StartsAt:   startsAt,
		EndsAt:     endsAt,
		IsFuture:   now.Before(startsAt),
		IsFinished: now.After(endsAt),
	}

	switch {
	case timeline.IsFuture:
		timeline.Phase = PhaseFuture
		countdown := buildCountdown(startsAt.Sub(now))
		timeline.Countdown = &countdown
	case timeline.IsFinished:
		timeline.Phase = PhaseFinished
	default:
		timeline.Phase = PhaseActive
	}

	timeline.PercentComplete = percentElapsed(startsAt, endsAt, now, timeline.IsFuture)

	dayNumber := calendarDaysBetween(startsAt, DateAtLocation(now, location)) + 1
	if dayNumber < 0 {
		dayNumber = 0
	}
	timeline.CurrentDayNumber = dayNumber

	daysLeft := int(math.Ceil(float64(endsAt.Sub(now)) / float64(dayDuration)))
	if daysLeft < 0 {
		daysLeft = 0
	}
	timeline.DaysLeft = daysLeft

	return timeline, nil
}

func percentElapsed(startsAt time.Time, endsAt time.Time, now time.Time, isFuture bool) float64 {
	total := endsAt.Sub(startsAt)
	if isFuture || total <= 0 {
		return 0
	}
	ratio := float64(now.Sub(startsAt)) / float64(total)
	switch {
	case ratio < 0:
		ratio = 0
	case ratio > 1:
		ratio = 1
	}
	return ratio * 100
}

func buildCountdown(remaining time.Duration) Countdown {
	if remaining < 0 {
		remaining = 0
	}
	totalSeconds := int64(remaining / time.Second)
	return Countdown{
		Days:    int(totalSeconds / 86400),
		Hours:   int(totalSeconds % 86400 / 3600),
		Minutes: int(totalSeconds % 3600 / 60),
		Seconds: int(totalSeconds % 60),
	}
}
