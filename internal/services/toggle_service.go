package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cormacgwin/goodwin-challenge/internal/models"
)

var ErrTogglePending = errors.New("toggle already pending")

// ToggleCommand flips one (user, habit, date) completion. Apply remembers the
// log it replaced so Revert restores exactly that state.
type ToggleCommand struct {
	UserID       string
	HabitID      string
	Date         string
	WasCompleted bool

	Ack ToggleAck

	previous *models.HabitLog
}

func (command *ToggleCommand) logID() string {
	return models.HabitLogID(command.UserID, command.HabitID, command.Date)
}

func (command *ToggleCommand) Apply(snapshot *Snapshot) {
	id := command.logID()
	command.previous = nil
	if position := findLog(snapshot.Logs, id); position >= 0 {
		existing := snapshot.Logs[position]
		command.previous = &existing
		snapshot.Logs = append(snapshot.Logs[:position], snapshot.Logs[position+1:]...)
	}
	if !command.WasCompleted {
		snapshot.Logs = append(snapshot.Logs, models.HabitLog{
			ID:        id,
			UserID:    command.UserID,
			HabitID:   command.HabitID,
			Date:      command.Date,
			Completed: true,
		})
	}
}

func (command *ToggleCommand) Revert(snapshot *Snapshot) {
	id := command.logID()
	if position := findLog(snapshot.Logs, id); position >= 0 {
		snapshot.Logs = append(snapshot.Logs[:position], snapshot.Logs[position+1:]...)
	}
	if command.previous != nil {
		snapshot.Logs = append(snapshot.Logs, *command.previous)
	}
}

func (command *ToggleCommand) Commit(ctx context.Context, store ChallengeStore) error {
	ack, err := store.ToggleCompletion(ctx, command.UserID, command.HabitID, command.Date, command.WasCompleted)
	if err != nil {
		return err
	}
	command.Ack = ack
	return nil
}

func findLog(logs []models.HabitLog, id string) int {
	for position, log := range logs {
		if log.ID == id {
			return position
		}
	}
	return -1
}

// ToggleResult carries the store ack, the canonical date that was toggled
// and the snapshot after the toggle.
type ToggleResult struct {
	Ack      ToggleAck `json:"ack"`
	Date     string    `json:"date"`
	Snapshot Snapshot  `json:"-"`
}

// ToggleService allows at most one in-flight toggle per (user, habit, date).
type ToggleService struct {
	cache    *SnapshotCache
	location *time.Location

	mu      sync.Mutex
	pending map[completionKey]struct{}
}

func NewToggleService(cache *SnapshotCache, location *time.Location) *ToggleService {
	if location == nil {
		location = time.UTC
	}
	return &ToggleService{
		cache:    cache,
		location: location,
		pending:  make(map[completionKey]struct{}),
	}
}

// Toggle reads the current completion state from the freshest snapshot and
// flips it. A second call for the same key while the first is running fails
// with ErrTogglePending instead of racing it.
func (service *ToggleService) Toggle(ctx context.Context, userID string, habitID string, rawDate string) (ToggleResult, error) {
	date, err := NormalizeDateKey(rawDate, service.location)
	if err != nil {
		return ToggleResult{}, err
	}
	habitID = strings.TrimSpace(habitID)

	key := completionKey{userID: userID, habitID: habitID, date: date}
	if !service.acquire(key) {
		return ToggleResult{}, ErrTogglePending
	}
	defer service.release(key)

	snapshot, err := service.cache.Snapshot(ctx)
	if err != nil {
		return ToggleResult{}, err
	}
	if _, ok := snapshot.FindHabit(habitID); !ok {
		return ToggleResult{}, ErrHabitNotFound
	}
	if _, ok := snapshot.FindUser(userID); !ok {
		return ToggleResult{}, ErrUserNotFound
	}

	command := &ToggleCommand{
		UserID:       userID,
		HabitID:      habitID,
		Date:         date,
		WasCompleted: NewCompletionIndex(snapshot.Logs).Completed(userID, habitID, date),
	}
	updated, err := service.cache.Execute(ctx, command)
	if err != nil {
		return ToggleResult{Date: date, Snapshot: updated}, err
	}
	return ToggleResult{Ack: command.Ack, Date: date, Snapshot: updated}, nil
}

func (service *ToggleService) acquire(key completionKey) bool {
	service.mu.Lock()
	defer service.mu.Unlock()
	if _, busy := service.pending[key]; busy {
		return false
	}
	service.pending[key] = struct{}{}
	return true
}

func (service *ToggleService) release(key completionKey) {
	service.mu.Lock()
	delete(service.pending, key)
	service.mu.Unlock()
}
