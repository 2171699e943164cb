// internal/services/locks.go
package services

import (
	"sync"

	"github.com/google/uuid"
)

// Per-enrollment mutexes. Every state transition on an enrollment runs
// under its lock, so concurrent admin actions on the same enrollment
// serialize and the loser sees a clean guard failure instead of a half
// applied transition. Different enrollments proceed in parallel.
var enrollmentLocks sync.Map

func lockEnrollment(id uuid.UUID) func() {
	v, _ := enrollmentLocks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
