package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cormacgwin/goodwin-challenge/internal/models"
	"github.com/google/uuid"
)

const DefaultTeamColor = "#4f46e5"

const (
	LeaderboardOrderDisplay = "display"
	LeaderboardOrderRank    = "rank"
)

var ErrLeaderboardOrderInvalid = errors.New("leaderboard order invalid")

type DashboardHabit struct {
	models.Habit
	Completed bool `json:"completed"`
}

type Dashboard struct {
	Date           string           `json:"date"`
	IsToday        bool             `json:"is_today"`
	Timeline       Timeline         `json:"timeline"`
	Points         int              `json:"points"`
	Streak         int              `json:"streak"`
	CompletedCount int              `json:"completed_count"`
	TotalCount     int              `json:"total_count"`
	Habits         []DashboardHabit `json:"habits"`
	Team           *models.Team     `json:"team,omitempty"`
	Finances       FinancialSummary `json:"finances"`
	ChallengeName  string           `json:"challenge_name"`
	Rules          string           `json:"rules"`
}

type Profile struct {
	User        models.User        `json:"user"`
	Team        *models.Team       `json:"team,omitempty"`
	PointsToday int                `json:"points_today"`
	Streak      int                `json:"streak"`
	TopHabits   []HabitCount       `json:"top_habits"`
	History     []DailyPointsEntry `json:"history"`
	Finances    FinancialSummary   `json:"finances"`
}

// ChallengeService serves the read models and funnels every mutation through
// the snapshot cache.
type ChallengeService struct {
	cache    *SnapshotCache
	location *time.Location
	now      func() time.Time
}

func NewChallengeService(cache *SnapshotCache, location *time.Location, now func() time.Time) *ChallengeService {
	if location == nil {
		location = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &ChallengeService{cache: cache, location: location, now: now}
}

func (service *ChallengeService) Location() *time.Location {
	return service.location
}

func (service *ChallengeService) Now() time.Time {
	return service.now().In(service.location)
}

func (service *ChallengeService) State(ctx context.Context, userID string) (AppState, error) {
	snapshot, err := service.cache.Snapshot(ctx)
	if err != nil {
		return AppState{}, err
	}
	user, ok := snapshot.FindUser(userID)
	if !ok {
		return AppState{}, ErrUserNotFound
	}
	return AppState{CurrentUser: &user, Snapshot: snapshot}, nil
}

func (service *ChallengeService) Settings(ctx context.Context) (models.ChallengeSettings, error) {
	snapshot, err := service.cache.Snapshot(ctx)
	if err != nil {
		return models.ChallengeSettings{}, err
	}
	return snapshot.Settings, nil
}

func (service *ChallengeService) Timeline(ctx context.Context) (Timeline, error) {
	settings, err := service.Settings(ctx)
	if err != nil {
		return Timeline{}, err
	}
	return BuildTimeline(settings.StartDate, settings.EndDate, service.Now(), service.location)
}

// Dashboard builds the daily checklist for rawDate, or today when empty.
func (service *ChallengeService) Dashboard(ctx context.Context, userID string, rawDate string) (Dashboard, error) {
	snapshot, err := service.cache.Snapshot(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	user, ok := snapshot.FindUser(userID)
	if !ok {
		return Dashboard{}, ErrUserNotFound
	}

	now := service.Now()
	today := DateAtLocation(now, service.location)
	date := DateKey(today)
	if strings.TrimSpace(rawDate) != "" {
		date, err = NormalizeDateKey(rawDate, service.location)
		if err != nil {
			return Dashboard{}, err
		}
	}

	settings := snapshot.Settings
	timeline, err := BuildTimeline(settings.StartDate, settings.EndDate, now, service.location)
	if err != nil {
		return Dashboard{}, err
	}
	index := NewCompletionIndex(snapshot.Logs)
	finances, err := BuildFinancialSummary(FinancialInputFromSettings(settings, user, snapshot.Habits, index, now, service.location))
	if err != nil {
		return Dashboard{}, err
	}

	checklist := ActiveHabitSetWithPolicy(user, snapshot.Habits, SelectionOnly)
	done, total := CompletedCount(user.ID, checklist, index, date)
	habits := make([]DashboardHabit, 0, len(checklist))
	for _, habit := range SortHabitsForDay(user.ID, checklist, index, date) {
		habits = append(habits, DashboardHabit{Habit: habit, Completed: index.Completed(user.ID, habit.ID, date)})
	}

	return Dashboard{
		Date:           date,
		IsToday:        date == DateKey(today),
		Timeline:       timeline,
		Points:         DailyPoints(user, snapshot.Habits, index, date),
		Streak:         Streak(user, snapshot.Habits, index, today, timeline.StartsAt),
		CompletedCount: done,
		TotalCount:     total,
		Habits:         habits,
		Team:           userTeam(snapshot.Teams, user),
		Finances:       finances,
		ChallengeName:  settings.Name,
		Rules:          settings.Rules,
	}, nil
}

func (service *ChallengeService) Profile(ctx context.Context, userID string) (Profile, error) {
	snapshot, err := service.cache.Snapshot(ctx)
	if err != nil {
		return Profile{}, err
	}
	user, ok := snapshot.FindUser(userID)
	if !ok {
		return Profile{}, ErrUserNotFound
	}

	now := service.Now()
	today := DateAtLocation(now, service.location)
	settings := snapshot.Settings
	start, end, err := ChallengeBounds(settings.StartDate, settings.EndDate, service.location)
	if err != nil {
		return Profile{}, err
	}

	index := NewCompletionIndex(snapshot.Logs)
	finances, err := BuildFinancialSummary(FinancialInputFromSettings(settings, user, snapshot.Habits, index, now, service.location))
	if err != nil {
		return Profile{}, err
	}

	topHabits := HabitCounts(user.ID, snapshot.Habits, index)
	if len(topHabits) > RequiredHabitSelection {
		topHabits = topHabits[:RequiredHabitSelection]
	}

	return Profile{
		User:        user,
		Team:        userTeam(snapshot.Teams, user),
		PointsToday: LoggedPointsOn(user.ID, IndexHabits(snapshot.Habits), index, DateKey(today)),
		Streak:      Streak(user, snapshot.Habits, index, today, start),
		TopHabits:   topHabits,
		History:     PointsHistory(user.ID, snapshot.Habits, index, start, end, today),
		Finances:    finances,
	}, nil
}

func (service *ChallengeService) Leaderboard(ctx context.Context, order string) (Leaderboard, error) {
	order = strings.ToLower(strings.TrimSpace(order))
	if order == "" {
		order = LeaderboardOrderDisplay
	}
	if order != LeaderboardOrderDisplay && order != LeaderboardOrderRank {
		return Leaderboard{}, ErrLeaderboardOrderInvalid
	}

	snapshot, err := service.cache.Snapshot(ctx)
	if err != nil {
		return Leaderboard{}, err
	}
	board, err := BuildLeaderboard(LeaderboardInput{
		Teams:    snapshot.Teams,
		Users:    snapshot.Users,
		Habits:   snapshot.Habits,
		Index:    NewCompletionIndex(snapshot.Logs),
		Settings: snapshot.Settings,
		Now:      service.Now(),
		Location: service.location,
	})
	if err != nil {
		return Leaderboard{}, err
	}
	if order == LeaderboardOrderRank {
		board.Rows = SortByRank(board.Rows)
	}
	return board, nil
}

func (service *ChallengeService) UpdateSettings(ctx context.Context, input SettingsInput) (models.ChallengeSettings, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := ValidateInput(input); err != nil {
		return models.ChallengeSettings{}, err
	}
	start, end, err := ValidateChallengeDates(input.StartDate, input.EndDate)
	if err != nil {
		return models.ChallengeSettings{}, err
	}

	settings := models.ChallengeSettings{
		ID:          models.SettingsRowID,
		Name:        input.Name,
		StartDate:   start,
		EndDate:     end,
		IsActive:    input.IsActive,
		Rules:       strings.TrimSpace(input.Rules),
		StakeAmount: input.StakeAmount,
	}
	snapshot, err := service.cache.Execute(ctx, StoreCommand(func(ctx context.Context, store ChallengeStore) error {
		return store.SaveSettings(ctx, settings)
	}))
	if err != nil {
		return models.ChallengeSettings{}, err
	}
	return snapshot.Settings, nil
}

func (service *ChallengeService) AddHabit(ctx context.Context, input HabitInput) (models.Habit, error) {
	input = trimHabitInput(input)
	if err := ValidateInput(input); err != nil {
		return models.Habit{}, err
	}
	habit := models.Habit{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		Points:      input.Points,
		Category:    input.Category,
	}
	_, err := service.cache.Execute(ctx, StoreCommand(func(ctx context.Context, store ChallengeStore) error {
		return store.AddHabit(ctx, habit)
	}))
	if err != nil {
		return models.Habit{}, err
	}
	return habit, nil
}

func (service *ChallengeService) UpdateHabit(ctx context.Context, habitID string, input HabitInput) (models.Habit, error) {
	input = trimHabitInput(input)
	if err := ValidateInput(input); err != nil {
		return models.Habit{}, err
	}
	snapshot, err := service.cache.Snapshot(ctx)
	if err != nil {
		return models.Habit{}, err
	}
	habit, ok := snapshot.FindHabit(habitID)
	if !ok {
		return models.Habit{}, ErrHabitNotFound
	}
	habit.Name = input.Name
	habit.Description = input.Description
	habit.Points = input.Points
	habit.Category = input.Category

	_, err = service.cache.Execute(ctx, StoreCommand(func(ctx context.Context, store ChallengeStore) error {
		return store.UpdateHabit(ctx, habit)
	}))
	if err != nil {
		return models.Habit{}, err
	}
	return habit, nil
}

func (service *ChallengeService) RemoveHabit(ctx context.Context, habitID string) error {
	snapshot, err := service.cache.Snapshot(ctx)
	if err != nil {
		return err
	}
	if _, ok := snapshot.FindHabit(habitID); !ok {
		return ErrHabitNotFound
	}
	_, err = service.cache.Execute(ctx, StoreCommand(func(ctx context.Context, store ChallengeStore) error {
		return store.RemoveHabit(ctx, habitID)
	}))
	return err
}

func (service *ChallengeService) AddTeam(ctx context.Context, input TeamInput) (models.Team, error) {
	input = trimTeamInput(input)
	if err := ValidateInput(input); err != nil {
		return models.Team{}, err
	}
	snapshot, err := service.cache.Snapshot(ctx)
	if err != nil {
		return models.Team{}, err
	}

	order := 0
	for _, team := range snapshot.Teams {
		if team.Order >= order {
			order = team.Order + 1
		}
	}
	team := models.Team{ID: uuid.NewString(), Name: input.Name, Color: input.Color, Order: order}
	if team.Color == "" {
		team.Color = DefaultTeamColor
	}

	_, err = service.cache.Execute(ctx, StoreCommand(func(ctx context.Context, store ChallengeStore) error {
		return store.AddTeam(ctx, team)
	}))
	if err != nil {
		return models.Team{}, err
	}
	return team, nil
}

func (service *ChallengeService) UpdateTeam(ctx context.Context, teamID string, input TeamInput) (models.Team, error) {
	input = trimTeamInput(input)
	if err := ValidateInput(input); err != nil {
		return models.Team{}, err
	}
	snapshot, err := service.cache.Snapshot(ctx)
	if err != nil {
		return models.Team{}, err
	}
	existing := findTeam(snapshot.Teams, &teamID)
	if existing == nil {
		return models.Team{}, ErrTeamNotFound
	}
	team := *existing
	team.Name = input.Name
	if input.Color != "" {
		team.Color = input.Color
	}

	_, err = service.cache.Execute(ctx, StoreCommand(func(ctx context.Context, store ChallengeStore) error {
		return store.UpdateTeam(ctx, team)
	}))
	if err != nil {
		return models.Team{}, err
	}
	return team, nil
}

func (service *ChallengeService) RemoveTeam(ctx context.Context, teamID string) error {
	snapshot, err := service.cache.Snapshot(ctx)
	if err != nil {
		return err
	}
	if findTeam(snapshot.Teams, &teamID) == nil {
		return ErrTeamNotFound
	}
	_, err = service.cache.Execute(ctx, StoreCommand(func(ctx context.Context, store ChallengeStore) error {
		return store.RemoveTeam(ctx, teamID)
	}))
	return err
}

// MoveTeam swaps the team with its display-order neighbour.
func (service *ChallengeService) MoveTeam(ctx context.Context, teamID string, direction MoveDirection) ([]models.Team, error) {
	snapshot, err := service.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	changed, err := MoveTeam(snapshot.Teams, teamID, direction)
	if err != nil {
		return nil, err
	}
	updated, err := service.cache.Execute(ctx, StoreCommand(func(ctx context.Context, store ChallengeStore) error {
		return store.ReorderTeams(ctx, changed)
	}))
	if err != nil {
		return nil, err
	}
	return updated.Teams, nil
}

// AssignUserTeam sets or clears (nil teamID) a user's team.
func (service *ChallengeService) AssignUserTeam(ctx context.Context, userID string, teamID *string) error {
	snapshot, err := service.cache.Snapshot(ctx)
	if err != nil {
		return err
	}
	if _, ok := snapshot.FindUser(userID); !ok {
		return ErrUserNotFound
	}
	if teamID != nil && strings.TrimSpace(*teamID) == "" {
		teamID = nil
	}
	if teamID != nil && findTeam(snapshot.Teams, teamID) == nil {
		return ErrTeamAssignmentNotFound
	}
	_, err = service.cache.Execute(ctx, StoreCommand(func(ctx context.Context, store ChallengeStore) error {
		return store.UpdateUserTeam(ctx, userID, teamID)
	}))
	return err
}

func (service *ChallengeService) UpdateName(ctx context.Context, userID string, raw string) (string, error) {
	name, err := NormalizeDisplayName(raw)
	if err != nil {
		return "", err
	}
	if err := service.requireUser(ctx, userID); err != nil {
		return "", err
	}
	_, err = service.cache.Execute(ctx, StoreCommand(func(ctx context.Context, store ChallengeStore) error {
		return store.UpdateUserName(ctx, userID, name)
	}))
	if err != nil {
		return "", err
	}
	return name, nil
}

func (service *ChallengeService) UpdateAvatar(ctx context.Context, userID string, input AvatarInput) error {
	input.AvatarURL = strings.TrimSpace(input.AvatarURL)
	if err := ValidateInput(input); err != nil {
		return err
	}
	if err := service.requireUser(ctx, userID); err != nil {
		return err
	}
	_, err := service.cache.Execute(ctx, StoreCommand(func(ctx context.Context, store ChallengeStore) error {
		return store.UpdateUserAvatar(ctx, userID, input.AvatarURL)
	}))
	return err
}

func (service *ChallengeService) SelectHabits(ctx context.Context, userID string, habitIDs []string) ([]string, error) {
	snapshot, err := service.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := snapshot.FindUser(userID); !ok {
		return nil, ErrUserNotFound
	}
	catalog := make(map[string]struct{}, len(snapshot.Habits))
	for _, habit := range snapshot.Habits {
		catalog[habit.ID] = struct{}{}
	}
	selection, err := ValidateHabitSelection(habitIDs, catalog)
	if err != nil {
		return nil, err
	}
	_, err = service.cache.Execute(ctx, StoreCommand(func(ctx context.Context, store ChallengeStore) error {
		return store.UpdateUserHabits(ctx, userID, selection)
	}))
	if err != nil {
		return nil, err
	}
	return selection, nil
}

// DeleteAccount removes the user and their logs. The last admin cannot leave
// while other members remain.
func (service *ChallengeService) DeleteAccount(ctx context.Context, userID string) error {
	snapshot, err := service.cache.Snapshot(ctx)
	if err != nil {
		return err
	}
	user, ok := snapshot.FindUser(userID)
	if !ok {
		return ErrUserNotFound
	}
	if user.IsAdmin() && len(snapshot.Users) > 1 {
		admins := 0
		for _, candidate := range snapshot.Users {
			if candidate.IsAdmin() {
				admins++
			}
		}
		if admins == 1 {
			return ErrLastAdminRemoval
		}
	}
	_, err = service.cache.Execute(ctx, StoreCommand(func(ctx context.Context, store ChallengeStore) error {
		return store.DeleteAccount(ctx, userID)
	}))
	return err
}

func (service *ChallengeService) requireUser(ctx context.Context, userID string) error {
	snapshot, err := service.cache.Snapshot(ctx)
	if err != nil {
		return err
	}
	if _, ok := snapshot.FindUser(userID); !ok {
		return ErrUserNotFound
	}
	return nil
}

// userTeam returns the team user belongs to, or nil when unassigned or the
// team no longer exists.
func userTeam(teams []models.Team, user models.User) *models.Team {
	for index := range teams {
		if user.InTeam(teams[index].ID) {
			team := teams[index]
			return &team
		}
	}
	return nil
}

func findTeam(teams []models.Team, teamID *string) *models.Team {
	if teamID == nil {
		return nil
	}
	for index := range teams {
		if teams[index].ID == *teamID {
			team := teams[index]
			return &team
		}
	}
	return nil
}
