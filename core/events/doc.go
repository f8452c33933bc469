// Package events defines the engine events emitted on the event bus.
//
// Available event types:
//   - CommitEvent: a net-change set was applied
//   - ConflictEvent: a commit aborted on the in-transaction capacity check
//   - RevertEvent: an undo token was consumed
//   - StagingClearedEvent: an operator dropped a staging session
package events
