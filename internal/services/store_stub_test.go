package services

import (
	"context"
	"errors"
	"sync"

	"github.com/cormacgwin/goodwin-challenge/internal/models"
)

var errStubWriteFailed = errors.New("stub write failed")

// stubChallengeStore keeps a snapshot in memory and can fail or block writes.
type stubChallengeStore struct {
	mu         sync.Mutex
	snapshot   Snapshot
	fetchErr   error
	writeErr   error
	fetches    int
	toggles    int
	toggleGate chan struct{}
	toggleSeen chan struct{}
	// holdFetch, when set, parks the next fetch after it has read the data.
	holdFetch *fetchHold
}

type fetchHold struct {
	reached chan struct{}
	release chan struct{}
}

func newStubChallengeStore(snapshot Snapshot) *stubChallengeStore {
	return &stubChallengeStore{snapshot: snapshot}
}

func (stub *stubChallengeStore) FetchSnapshot(ctx context.Context) (Snapshot, error) {
	stub.mu.Lock()
	stub.fetches++
	if stub.fetchErr != nil {
		stub.mu.Unlock()
		return Snapshot{}, stub.fetchErr
	}
	snapshot := stub.snapshot.Clone()
	hold := stub.holdFetch
	stub.holdFetch = nil
	stub.mu.Unlock()

	if hold != nil {
		close(hold.reached)
		select {
		case <-hold.release:
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		}
	}
	return snapshot, nil
}

func (stub *stubChallengeStore) holdNextFetch() *fetchHold {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.holdFetch = &fetchHold{reached: make(chan struct{}), release: make(chan struct{})}
	return stub.holdFetch
}

func (stub *stubChallengeStore) completed(userID string, habitID string, date string) bool {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	return NewCompletionIndex(stub.snapshot.Logs).Completed(userID, habitID, date)
}

func (stub *stubChallengeStore) ToggleCompletion(ctx context.Context, userID string, habitID string, date string, wasCompleted bool) (ToggleAck, error) {
	if stub.toggleSeen != nil {
		stub.toggleSeen <- struct{}{}
	}
	if stub.toggleGate != nil {
		select {
		case <-stub.toggleGate:
		case <-ctx.Done():
			return ToggleAck{}, ctx.Err()
		}
	}

	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.toggles++
	if stub.writeErr != nil {
		return ToggleAck{}, stub.writeErr
	}

	id := models.HabitLogID(userID, habitID, date)
	if position := findLog(stub.snapshot.Logs, id); position >= 0 {
		stub.snapshot.Logs = append(stub.snapshot.Logs[:position], stub.snapshot.Logs[position+1:]...)
	}
	if wasCompleted {
		return ToggleAck{Type: ToggleDeleted, ID: id}, nil
	}
	log := models.HabitLog{ID: id, UserID: userID, HabitID: habitID, Date: date, Completed: true}
	stub.snapshot.Logs = append(stub.snapshot.Logs, log)
	return ToggleAck{Type: ToggleInserted, ID: id, Log: &log}, nil
}

func (stub *stubChallengeStore) write(mutate func(snapshot *Snapshot)) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	if stub.writeErr != nil {
		return stub.writeErr
	}
	mutate(&stub.snapshot)
	return nil
}

func (stub *stubChallengeStore) AddHabit(_ context.Context, habit models.Habit) error {
	return stub.write(func(snapshot *Snapshot) { snapshot.Habits = append(snapshot.Habits, habit) })
}

func (stub *stubChallengeStore) UpdateHabit(_ context.Context, habit models.Habit) error {
	return stub.write(func(snapshot *Snapshot) {
		for index := range snapshot.Habits {
			if snapshot.Habits[index].ID == habit.ID {
				snapshot.Habits[index] = habit
			}
		}
	})
}

func (stub *stubChallengeStore) RemoveHabit(_ context.Context, habitID string) error {
	return stub.write(func(snapshot *Snapshot) {
		habits := snapshot.Habits[:0]
		for _, habit := range snapshot.Habits {
			if habit.ID != habitID {
				habits = append(habits, habit)
			}
		}
		snapshot.Habits = habits
		logs := snapshot.Logs[:0]
		for _, log := range snapshot.Logs {
			if log.HabitID != habitID {
				logs = append(logs, log)
			}
		}
		snapshot.Logs = logs
	})
}

func (stub *stubChallengeStore) AddTeam(_ context.Context, team models.Team) error {
	return stub.write(func(snapshot *Snapshot) { snapshot.Teams = append(snapshot.Teams, team) })
}

func (stub *stubChallengeStore) UpdateTeam(_ context.Context, team models.Team) error {
	return stub.ReorderTeams(context.Background(), []models.Team{team})
}

func (stub *stubChallengeStore) RemoveTeam(_ context.Context, teamID string) error {
	return stub.write(func(snapshot *Snapshot) {
		teams := snapshot.Teams[:0]
		for _, team := range snapshot.Teams {
			if team.ID != teamID {
				teams = append(teams, team)
			}
		}
		snapshot.Teams = teams
		for index := range snapshot.Users {
			if snapshot.Users[index].InTeam(teamID) {
				snapshot.Users[index].TeamID = nil
			}
		}
	})
}

func (stub *stubChallengeStore) ReorderTeams(_ context.Context, teams []models.Team) error {
	return stub.write(func(snapshot *Snapshot) {
		for _, updated := range teams {
			for index := range snapshot.Teams {
				if snapshot.Teams[index].ID == updated.ID {
					snapshot.Teams[index] = updated
				}
			}
		}
	})
}

func (stub *stubChallengeStore) SaveSettings(_ context.Context, settings models.ChallengeSettings) error {
	return stub.write(func(snapshot *Snapshot) { snapshot.Settings = settings })
}

func (stub *stubChallengeStore) updateUser(userID string, mutate func(user *models.User)) error {
	return stub.write(func(snapshot *Snapshot) {
		for index := range snapshot.Users {
			if snapshot.Users[index].ID == userID {
				mutate(&snapshot.Users[index])
			}
		}
	})
}

func (stub *stubChallengeStore) UpdateUserTeam(_ context.Context, userID string, teamID *string) error {
	return stub.updateUser(userID, func(user *models.User) { user.TeamID = teamID })
}

func (stub *stubChallengeStore) UpdateUserAvatar(_ context.Context, userID string, avatarURL string) error {
	return stub.updateUser(userID, func(user *models.User) { user.AvatarURL = avatarURL })
}

func (stub *stubChallengeStore) UpdateUserName(_ context.Context, userID string, name string) error {
	return stub.updateUser(userID, func(user *models.User) { user.Name = name })
}

func (stub *stubChallengeStore) UpdateUserHabits(_ context.Context, userID string, habitIDs []string) error {
	return stub.updateUser(userID, func(user *models.User) { user.HabitIDs = habitIDs })
}

func (stub *stubChallengeStore) DeleteAccount(_ context.Context, userID string) error {
	return stub.write(func(snapshot *Snapshot) {
		users := snapshot.Users[:0]
		for _, user := range snapshot.Users {
			if user.ID != userID {
				users = append(users, user)
			}
		}
		snapshot.Users = users
	})
}

func seededSnapshot() Snapshot {
	return Snapshot{
		Users: []models.User{
			{ID: "admin", Name: "Ada", Role: models.RoleAdmin, TeamID: stringPtr("blue")},
			{ID: "member", Name: "Max", Role: models.RoleMember, HabitIDs: []string{"read"}},
		},
		Teams: []models.Team{
			{ID: "blue", Name: "Blue", Color: "#0000ff", Order: 0},
			{ID: "red", Name: "Red", Color: "#ff0000", Order: 1},
		},
		Habits: challengeHabits(),
		Settings: models.ChallengeSettings{
			ID:          models.SettingsRowID,
			Name:        "Spring",
			StartDate:   "2026-05-01",
			EndDate:     "2026-05-10",
			IsActive:    true,
			StakeAmount: 200,
		},
	}
}
