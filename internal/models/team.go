package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxTeamSize is the member limit for team events.
const MaxTeamSize = 4

// Team represents a team for a team-based event (e.g. PitchGenix).
type Team struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	TeamCode  string    `json:"team_code"`
	EventName string    `json:"event_name"`
	LeaderID  uuid.UUID `json:"leader_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TeamMember links a user to a team.
type TeamMember struct {
	TeamID   uuid.UUID `json:"team_id"`
	UserID   uuid.UUID `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}

// TeamDetail is a team with resolved member profiles for API responses.
type TeamDetail struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	TeamCode  string       `json:"team_code"`
	EventName string       `json:"event_name"`
	LeaderID  uuid.UUID    `json:"leader_id"`
	Members   []UserPublic `json:"members"`
	CreatedAt time.Time    `json:"created_at"`
}
