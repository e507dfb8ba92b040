package association

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pairup/internal/matcher"
)

var (
	ErrNotFound  = errors.New("association not found")
	ErrUnmatched = errors.New("only matched pairs can be committed")
)

// Association is a confirmed pairing of a recipient with a recording, as
// committed from a matching session.
type Association struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	LeftKey   string
	RightKey  string
	RightPath string
	Kind      matcher.Kind
	Score     int // 0 for exact and manual matches
	CreatedAt time.Time
}
