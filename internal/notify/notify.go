package notify

import (
	"context"
	"fmt"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Payload is the outcome report delivered to the operator.
type Payload struct {
	Status    string
	Engine    string
	Database  string
	Timestamp string // local time, human formatted
	Timezone  string
	RemoteKey string // empty unless the upload succeeded
	Error     string // empty unless the job failed
}

type Notifier interface {
	Notify(ctx context.Context, p Payload) error
}

// Error reports a failed delivery attempt. The orchestrator logs and
// swallows it; it must never change a job's recorded outcome.
type Error struct {
	Cause error
}

func (e *Error) Error() string { return fmt.Sprintf("notification: %v", e.Cause) }

func (e *Error) Unwrap() error { return e.Cause }
