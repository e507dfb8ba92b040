package matcher

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrAlreadyMatched   = errors.New("item already matched")
	ErrNotMatched       = errors.New("item not matched")
	ErrNotInPool        = errors.New("item not in pool")
	ErrSameSide         = errors.New("items are on the same side")
	ErrInvalidThreshold = errors.New("threshold must be between 0 and 100")
	ErrScoreOutOfRange  = errors.New("score out of range")
)

// DuplicateKeyError is returned when one input collection holds two payloads
// with the same key.
type DuplicateKeyError struct {
	Side Side
	Key  string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate %s key %q", e.Side, e.Key)
}

func (e *DuplicateKeyError) Unwrap() error {
	return ErrDuplicateKey
}
