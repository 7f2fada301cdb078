package models

import "time"

const (
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

type User struct {
	ID                 string    `gorm:"primaryKey" json:"id"`
	Email              string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash       string    `gorm:"not null;default:''" json:"-"`
	Name               string    `gorm:"not null;default:''" json:"name"`
	Role               string    `gorm:"not null;default:MEMBER" json:"role"`
	TeamID             *string   `gorm:"index" json:"team_id,omitempty"`
	AvatarURL          string    `gorm:"not null;default:''" json:"avatar_url,omitempty"`
	HabitIDs           []string  `gorm:"serializer:json" json:"habit_ids"`
	MustChangePassword bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt          time.Time `json:"created_at"`
}

func (user User) IsAdmin() bool {
	return user.Role == RoleAdmin
}

// InTeam reports whether the user is assigned to teamID.
func (user User) InTeam(teamID string) bool {
	return user.TeamID != nil && *user.TeamID == teamID
}
