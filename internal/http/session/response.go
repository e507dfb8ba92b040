package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pairup/internal/matcher"
	"github.com/MrJamesThe3rd/pairup/internal/session"
)

type statsResponse struct {
	Comparisons   int    `json:"comparisons"`
	Matches       int    `json:"matches"`
	ElapsedMicros int64  `json:"elapsed_us"`
	Text          string `json:"text"`
}

type sessionResponse struct {
	ID        uuid.UUID            `json:"id"`
	CreatedAt time.Time            `json:"created_at"`
	Rows      []session.Row        `json:"rows"`
	Summary   map[matcher.Kind]int `json:"summary"`
	Stats     statsResponse        `json:"stats"`
}

type unmatchResponse struct {
	Left  session.Row `json:"left"`
	Right session.Row `json:"right"`
}

type associationResponse struct {
	ID        uuid.UUID    `json:"id"`
	LeftKey   string       `json:"left_key"`
	RightKey  string       `json:"right_key"`
	RightPath string       `json:"right_path,omitempty"`
	Kind      matcher.Kind `json:"kind"`
	Score     int          `json:"score"`
	CreatedAt time.Time    `json:"created_at"`
}

func toStatsResponse(s matcher.Stats) statsResponse {
	return statsResponse{
		Comparisons:   s.Comparisons,
		Matches:       s.Matches,
		ElapsedMicros: s.Elapsed().Microseconds(),
		Text:          s.String(),
	}
}

func toSessionResponse(s *session.Session, rows []session.Row) sessionResponse {
	return sessionResponse{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Rows:      rows,
		Summary:   s.Summary(),
		Stats:     toStatsResponse(s.Stats()),
	}
}
