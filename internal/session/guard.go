package session

import "errors"

const DefaultMaxAttempts = 5

var ErrTooManyAttempts = errors.New("too many failed login attempts")

// Guard throttles logins using the counter carried by the caller's session.
type Guard struct {
	max int
}

func NewGuard(maxAttempts int) Guard {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return Guard{max: maxAttempts}
}

func (g Guard) Check(s *Session) error {
	if s != nil && s.FailedAttempts >= g.max {
		return ErrTooManyAttempts
	}
	return nil
}

func (g Guard) RecordFailure(s *Session) {
	if s != nil {
		s.FailedAttempts++
	}
}

func (g Guard) RecordSuccess(s *Session) {
	if s != nil {
		s.FailedAttempts = 0
	}
}
