package model

import "github.com/google/uuid"

// Thread is the process-wide unique identifier of one orchestration run.
// It is immutable once minted and carried through every checkpoint and
// analyzer invocation.
type Thread string

// NewThread mints a fresh version-4 UUID thread identifier.
func NewThread() Thread {
	return Thread(uuid.New().String())
}

func (t Thread) String() string { return string(t) }
