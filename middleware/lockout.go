package middleware

import (
	"sync"
	"time"
)

// Account lockout after repeated failed logins. In-memory, per instance.

type lockoutEntry struct {
	failures  int
	lockUntil time.Time
}

var (
	lockoutMu sync.Mutex
	lockouts  = make(map[uint]*lockoutEntry)
)

const (
	lockoutThreshold = 5
	lockoutWindow    = 15 * time.Minute
)

// IsAccountLocked reports whether the account is locked and for how long.
func IsAccountLocked(userID uint) (bool, time.Duration) {
	lockoutMu.Lock()
	defer lockoutMu.Unlock()
	e, ok := lockouts[userID]
	if !ok {
		return false, 0
	}
	if time.Now().Before(e.lockUntil) {
		return true, time.Until(e.lockUntil)
	}
	return false, 0
}

// RecordFailedLogin bumps the failure counter and locks the account once the
// threshold is hit.
func RecordFailedLogin(userID uint) {
	lockoutMu.Lock()
	defer lockoutMu.Unlock()
	e, ok := lockouts[userID]
	if !ok {
		e = &lockoutEntry{}
		lockouts[userID] = e
	}
	e.failures++
	if e.failures >= lockoutThreshold {
		e.lockUntil = time.Now().Add(lockoutWindow)
		e.failures = 0
	}
}

// ResetFailedLogin clears the failure counter after a successful login.
func ResetFailedLogin(userID uint) {
	lockoutMu.Lock()
	defer lockoutMu.Unlock()
	delete(lockouts, userID)
}
