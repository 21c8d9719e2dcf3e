package models

import (
	"regexp"
	"time"
)

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type Action string

const (
	ActionReady    Action = "ready"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

// QueueEntry is one customer's waitlist registration. Entries live in
// process memory only and are never deleted; transitions overwrite the
// status in place.
type QueueEntry struct {
	ID          string    `json:"id"`
	Phone       string    `json:"phone"`
	QueueNumber int       `json:"queueNumber"`
	CreatedAt   time.Time `json:"createdAt"`
	Status      Status    `json:"status"`
}

var phonePattern = regexp.MustCompile(`^010-\d{4}-\d{4}$`)

func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// transitions keys the allowed admin actions by current status. The
// completed and cancelled states are terminal.
var transitions = map[Status]map[Action]Status{
	StatusWaiting: {
		ActionReady:    StatusReady,
		ActionComplete: StatusCompleted,
		ActionCancel:   StatusCancelled,
	},
	StatusReady: {
		ActionComplete: StatusCompleted,
		ActionCancel:   StatusCancelled,
	},
}

func IsValidAction(action Action) bool {
	switch action {
	case ActionReady, ActionComplete, ActionCancel:
		return true
	}
	return false
}

// NextStatus resolves the status an action moves an entry to. The second
// return is false when the action is not allowed from the current status.
func NextStatus(current Status, action Action) (Status, bool) {
	next, ok := transitions[current][action]
	return next, ok
}
