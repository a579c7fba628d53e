package scheduler

import (
	"context"

	"github.com/chris/vault-wallet/pkg/models"
)

// IntentScheduler hands an unfinished intent to an asynchronous worker.
type IntentScheduler interface {
	// ScheduleIntent enqueues the intent for replay.
	ScheduleIntent(ctx context.Context, intent *models.Intent) error
}

// Message is the queue payload. Workers re-read the intent by id, so a stale
// message can never roll back a newer status.
type Message struct {
	IntentId string            `json:"intent_id"`
	Kind     models.IntentKind `json:"kind"`
}
