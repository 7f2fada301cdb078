package services

import (
	"context"
	"time"
)

const DefaultTimelineTickInterval = time.Second

type TimelineTicker struct {
	startDate string
	endDate   string
	location  *time.Location
	interval  time.Duration
	now       func() time.Time
}

func NewTimelineTicker(startDate string, endDate string, location *time.Location, interval time.Duration, now func() time.Time) *TimelineTicker {
	if interval <= 0 {
		interval = DefaultTimelineTickInterval
	}
	if now == nil {
		now = time.Now
	}
	return &TimelineTicker{
		startDate: startDate,
		endDate:   endDate,
		location:  location,
		interval:  interval,
		now:       now,
	}
}

// Run emits one timeline immediately and then one per interval. The returned
// channel is closed once ctx is cancelled.
func (ticker *TimelineTicker) Run(ctx context.Context) (<-chan Timeline, error) {
	first, err := BuildTimeline(ticker.startDate, ticker.endDate, ticker.now(), ticker.location)
	if err != nil {
		return nil, err
	}

	updates := make(chan Timeline, 1)
	updates <- first

	go func() {
		defer close(updates)
		clock := time.NewTicker(ticker.interval)
		defer clock.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-clock.C:
				timeline, err := BuildTimeline(ticker.startDate, ticker.endDate, ticker.now(), ticker.location)
				if err != nil {
					return
				}
				select {
				case updates <- timeline:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return updates, nil
}
