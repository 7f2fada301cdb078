package services

import (
	"errors"
	"sort"
	"time"

	"github.com/cormacgwin/goodwin-challenge/internal/models"
)

var (
	ErrTeamNotFound         = errors.New("team not found")
	ErrTeamMoveOutOfRange   = errors.New("team move out of range")
	ErrInvalidMoveDirection = errors.New("invalid move direction")
)

type MoveDirection string

const (
	MoveUp   MoveDirection = "up"
	MoveDown MoveDirection = "down"
)

type LeaderboardInput struct {
	Teams    []models.Team
	Users    []models.User
	Habits   []models.Habit
	Index    *CompletionIndex
	Settings models.ChallengeSettings
	Now      time.Time
	Location *time.Location
}

type MemberStanding struct {
	UserID      string  `json:"user_id"`
	Name        string  `json:"name"`
	AvatarURL   string  `json:"avatar_url,omitempty"`
	ActiveToday bool    `json:"active_today"`
	Score       int     `json:"score"`
	CurrentDebt float64 `json:"current_debt"`
	LostSoFar   float64 `json:"lost_so_far"`
}

type TeamStanding struct {
	Team        models.Team      `json:"team"`
	Score       int              `json:"score"`
	Debt        float64          `json:"debt"`
	LostSoFar   float64          `json:"lost_so_far"`
	Members     []MemberStanding `json:"members"`
	MemberCount int              `json:"member_count"`
	Rank        int              `json:"rank"`
}

type Leaderboard struct {
	Rows       []TeamStanding   `json:"rows"`
	Unassigned []MemberStanding `json:"unassigned"`
	Pot        float64          `json:"pot"`
}

// BuildLeaderboard scores teams against the full catalog so that teams with
// different habit selections stay comparable. Rows come back in display order
// with Rank filled from the score ordering.
func BuildLeaderboard(input LeaderboardInput) (Leaderboard, error) {
	location := input.Location
	if location == nil {
		location = time.UTC
	}
	todayKey := DateKey(DateAtLocation(input.Now, location))
	habitsByID := IndexHabits(input.Habits)

	rows := make([]TeamStanding, 0, len(input.Teams))
	rowIndex := make(map[string]int, len(input.Teams))
	for _, team := range input.Teams {
		rowIndex[team.ID] = len(rows)
		rows = append(rows, TeamStanding{Team: team, Members: []MemberStanding{}})
	}

	board := Leaderboard{Unassigned: []MemberStanding{}}
	summaries := make([]FinancialSummary, 0, len(input.Users))
	for _, user := range input.Users {
		summary, err := BuildFinancialSummary(FinancialInputFromSettings(input.Settings, user, input.Habits, input.Index, input.Now, location))
		if err != nil {
			return Leaderboard{}, err
		}
		summaries = append(summaries, summary)

		member := MemberStanding{
			UserID:      user.ID,
			Name:        user.Name,
			AvatarURL:   user.AvatarURL,
			ActiveToday: input.Index.ActiveOn(user.ID, todayKey),
			Score:       LoggedPoints(user.ID, habitsByID, input.Index),
			CurrentDebt: summary.CurrentDebt,
			LostSoFar:   summary.LostSoFar,
		}

		position, ok := -1, false
		if user.TeamID != nil {
			position, ok = rowIndex[*user.TeamID]
		}
		if !ok {
			board.Unassigned = append(board.Unassigned, member)
			continue
		}

		row := &rows[position]
		row.Members = append(row.Members, member)
		row.MemberCount++
		row.Score += member.Score
		row.Debt += member.CurrentDebt
		row.LostSoFar += member.LostSoFar
	}
	board.Pot = Pot(summaries)

	ranked := SortByRank(rows)
	ranks := make(map[string]int, len(ranked))
	for position, row := range ranked {
		ranks[row.Team.ID] = position + 1
	}
	for position := range rows {
		rows[position].Rank = ranks[rows[position].Team.ID]
	}
	board.Rows = SortByDisplayOrder(rows)
	return board, nil
}

// SortByDisplayOrder orders by the admin-assigned rank; ties keep input order.
func SortByDisplayOrder(rows []TeamStanding) []TeamStanding {
	sorted := append([]TeamStanding(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Team.Order < sorted[j].Team.Order
	})
	return sorted
}

// SortByRank orders by descending score; ties keep input order.
func SortByRank(rows []TeamStanding) []TeamStanding {
	sorted := append([]TeamStanding(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	return sorted
}

// MoveTeam swaps the team with its neighbour in display order. Orders are
// renumbered densely first, so duplicate ranks still produce a visible move.
// Only teams whose Order changed are returned.
func MoveTeam(teams []models.Team, teamID string, direction MoveDirection) ([]models.Team, error) {
	offset := 0
	switch direction {
	case MoveUp:
		offset = -1
	case MoveDown:
		offset = 1
	default:
		return nil, ErrInvalidMoveDirection
	}

	ordered := append([]models.Team(nil), teams...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})

	position := -1
	for index, team := range ordered {
		if team.ID == teamID {
			position = index
			break
		}
	}
	if position < 0 {
		return nil, ErrTeamNotFound
	}
	target := position + offset
	if target < 0 || target >= len(ordered) {
		return nil, ErrTeamMoveOutOfRange
	}
	ordered[position], ordered[target] = ordered[target], ordered[position]

	original := make(map[string]int, len(teams))
	for _, team := range teams {
		original[team.ID] = team.Order
	}

	changed := make([]models.Team, 0, 2)
	for index := range ordered {
		if original[ordered[index].ID] == index {
			continue
		}
		ordered[index].Order = index
		changed = append(changed, ordered[index])
	}
	return changed, nil
}
