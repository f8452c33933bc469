package commit

import (
	"time"

	"github.com/pmarg/reseat/core/model"
)

// Actor identifies who triggered a commit.
type Actor struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// AuditMove is one student move inside an audit entry.
type AuditMove struct {
	StudentID string      `json:"student_id"`
	FromBusID string      `json:"from_bus_id,omitempty"`
	ToBusID   string      `json:"to_bus_id,omitempty"`
	Shift     model.Shift `json:"shift"`
}

// AuditEntry records one committed net-change set, enumerating every
// individual move. Entries are append-only; a revert writes its own entry.
type AuditEntry struct {
	ID            string            `json:"id"`
	ActorID       string            `json:"actor_id"`
	ActorMetadata map[string]string `json:"actor_metadata,omitempty"`
	Reverted      bool              `json:"reverted,omitempty"`
	Moves         []AuditMove       `json:"moves"`
	CreatedAt     time.Time         `json:"created_at"`
}
