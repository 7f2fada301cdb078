package services

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"
)

func TestBuildTimelinePhases(t *testing.T) {
	location := time.UTC

	tests := []struct {
		name          string
		now           time.Time
		wantPhase     ChallengePhase
		wantDay       int
		wantDaysLeft  int
		wantPercent   float64
		wantCountdown bool
	}{
		{
			name:          "before start",
			now:           time.Date(2026, time.April, 29, 12, 0, 0, 0, location),
			wantPhase:     PhaseFuture,
			wantDay:       0,
			wantDaysLeft:  12,
			wantPercent:   0,
			wantCountdown: true,
		},
		{
			name:         "first moment",
			now:          time.Date(2026, time.May, 1, 0, 0, 0, 0, location),
			wantPhase:    PhaseActive,
			wantDay:      1,
			wantDaysLeft: 10,
			wantPercent:  0,
		},
		{
			name:         "day five noon",
			now:          time.Date(2026, time.May, 5, 12, 0, 0, 0, location),
			wantPhase:    PhaseActive,
			wantDay:      5,
			wantDaysLeft: 6,
			wantPercent:  45,
		},
		{
			name:         "after end",
			now:          time.Date(2026, time.May, 12, 8, 0, 0, 0, location),
			wantPhase:    PhaseFinished,
			wantDay:      12,
			wantDaysLeft: 0,
			wantPercent:  100,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			timeline, err := BuildTimeline("2026-05-01", "2026-05-10", testCase.now, location)
			if err != nil {
				t.Fatalf("BuildTimeline() unexpected error: %v", err)
			}
			if timeline.Phase != testCase.wantPhase {
				t.Fatalf("phase = %q, want %q", timeline.Phase, testCase.wantPhase)
			}
			if timeline.CurrentDayNumber != testCase.wantDay {
				t.Fatalf("current day = %d, want %d", timeline.CurrentDayNumber, testCase.wantDay)
			}
			if timeline.DaysLeft != testCase.wantDaysLeft {
				t.Fatalf("days left = %d, want %d", timeline.DaysLeft, testCase.wantDaysLeft)
			}
			if math.Abs(timeline.PercentComplete-testCase.wantPercent) > 0.01 {
				t.Fatalf("percent = %.4f, want %.2f", timeline.PercentComplete, testCase.wantPercent)
			}
			if (timeline.Countdown != nil) != testCase.wantCountdown {
				t.Fatalf("countdown presence = %v, want %v", timeline.Countdown != nil, testCase.wantCountdown)
			}
		})
	}
}

func TestBuildTimelineCountdownBreakdown(t *testing.T) {
	now := time.Date(2026, time.April, 28, 21, 29, 50, 0, time.UTC)
	timeline, err := BuildTimeline("2026-05-01", "2026-05-10", now, time.UTC)
	if err != nil {
		t.Fatalf("BuildTimeline() unexpected error: %v", err)
	}

	want := Countdown{Days: 2, Hours: 2, Minutes: 30, Seconds: 10}
	if timeline.Countdown == nil || *timeline.Countdown != want {
		t.Fatalf("countdown = %+v, want %+v", timeline.Countdown, want)
	}
}

func TestBuildTimelineSingleDayChallenge(t *testing.T) {
	now := time.Date(2026, time.May, 1, 18, 0, 0, 0, time.UTC)
	timeline, err := BuildTimeline("2026-05-01", "2026-05-01", now, time.UTC)
	if err != nil {
		t.Fatalf("BuildTimeline() unexpected error: %v", err)
	}
	if timeline.Phase != PhaseActive || timeline.CurrentDayNumber != 1 || timeline.DaysLeft != 1 {
		t.Fatalf("unexpected single day timeline: %+v", timeline)
	}
}

func TestBuildTimelineReversedRangeHasZeroPercent(t *testing.T) {
	now := time.Date(2026, time.May, 20, 0, 0, 0, 0, time.UTC)
	timeline, err := BuildTimeline("2026-05-10", "2026-05-01", now, time.UTC)
	if err != nil {
		t.Fatalf("BuildTimeline() unexpected error: %v", err)
	}
	if timeline.PercentComplete != 0 {
		t.Fatalf("expected zero percent for reversed range, got %.2f", timeline.PercentComplete)
	}
}

func TestBuildTimelineRejectsInvalidDates(t *testing.T) {
	_, err := BuildTimeline("soon", "2026-05-01", time.Now(), time.UTC)
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestBuildTimelineIsDeterministic(t *testing.T) {
	now := time.Date(2026, time.May, 3, 9, 15, 0, 0, time.UTC)
	first, err := BuildTimeline("2026-05-01", "2026-05-10", now, time.UTC)
	if err != nil {
		t.Fatalf("BuildTimeline() unexpected error: %v", err)
	}
	second, err := BuildTimeline("2026-05-01", "2026-05-10", now, time.UTC)
	if err != nil {
		t.Fatalf("BuildTimeline() unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical timelines, got %+v and %+v", first, second)
	}
}

func TestTimelineTickerResamplesClockUntilCancelled(t *testing.T) {
	current := time.Date(2026, time.April, 30, 23, 59, 58, 0, time.UTC)
	var calls atomic.Int64
	clock := func() time.Time {
		return current.Add(time.Duration(calls.Add(1)-1) * time.Second)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ticker := NewTimelineTicker("2026-05-01", "2026-05-10", time.UTC, 5*time.Millisecond, clock)
	updates, err := ticker.Run(ctx)
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	first := <-updates
	if first.Phase != PhaseFuture {
		t.Fatalf("expected first sample to be future, got %q", first.Phase)
	}

	select {
	case <-updates:
	case <-time.After(time.Second):
		t.Fatalf("expected a second sample from the ticker")
	}

	cancel()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-updates:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("expected updates channel to close after cancel")
		}
	}
}
