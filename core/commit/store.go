package commit

import (
	"context"

	"github.com/pmarg/reseat/core/model"
)

// TransactionalStore is the narrow persistence capability the committer
// needs. Any store offering serializable read-check-write transactions can
// implement it; the engine itself is storage-engine-agnostic.
type TransactionalStore interface {
	// Snapshot bulk-reads the fleet for staging and preview. The result may
	// go stale; the committer never trusts it.
	Snapshot(ctx context.Context) (*model.Snapshot, error)

	// RunInTransaction executes fn atomically. If fn returns an error the
	// transaction rolls back and no write becomes visible. The store's
	// transaction provides mutual exclusion across concurrent operators;
	// no in-process lock is layered on top.
	RunInTransaction(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes reads and writes inside one transaction. Reads observe the
// transaction's isolated view, not any pre-transaction snapshot.
type Tx interface {
	Student(id string) (model.Student, error)
	Bus(id string) (model.Bus, error)
	PutStudent(st model.Student) error
	PutBus(b model.Bus) error
	AppendAudit(entry AuditEntry) error
}
