package debate

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRoster is returned when a roster cannot seat a debate: a missing
	// moderator, an empty or oversized team, a role without a completer, or a
	// duplicated display name.
	ErrInvalidRoster = errors.New("invalid debate roster")

	// ErrInvalidSession is returned for a blank topic or a round count outside 1..MaxRoundsLimit.
	ErrInvalidSession = errors.New("invalid debate session")

	// ErrSessionStarted is returned when a session is driven a second time.
	ErrSessionStarted = errors.New("debate session already started")
)

// CompletionError reports a completion failure during one phase. The provider
// error is kept intact and available through errors.Unwrap.
type CompletionError struct {
	Phase   Phase
	Speaker string
	Err     error
}

func (e *CompletionError) Error() string {
	if e.Phase == 0 {
		return fmt.Sprintf("%s: %v", e.Speaker, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Phase, e.Speaker, e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}
