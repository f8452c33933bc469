package events

import "time"

// CommitEvent is emitted after a successful commit.
type CommitEvent struct {
	ActorID string
	AuditID string
	Moves   int
	Time    time.Time
}

// ConflictEvent is emitted when a commit aborts because a bus no longer has
// the seats the preview promised.
type ConflictEvent struct {
	ActorID string
	BusIDs  []string
	Time    time.Time
}

// RevertEvent is emitted after a successful undo.
type RevertEvent struct {
	ActorID string
	Token   string
	Moves   int
	Time    time.Time
}

// StagingClearedEvent is emitted when a staging session is bulk-cleared.
type StagingClearedEvent struct {
	Operations int
	Time       time.Time
}
