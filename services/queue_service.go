package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"waitlist-system/internal/realtime"
	"waitlist-system/internal/status"
	"waitlist-system/models"
	"waitlist-system/monitoring"
	"waitlist-system/utils"
)

// Notifier is the outbound messaging boundary. Every send reports a bare
// boolean; failures never fail the enclosing queue operation.
type Notifier interface {
	SendQueueRegistered(ctx context.Context, phone string, queueNumber int) bool
	SendReadyForEntry(ctx context.Context, phone string, queueNumber int) bool
	SendPlainMessage(ctx context.Context, phone, text string) bool
}

// QueueStatus is the customer-facing view of one entry.
type QueueStatus struct {
	QueueNumber       int           `json:"queueNumber"`
	Status            models.Status `json:"status"`
	WaitingAhead      int           `json:"waitingAhead"`
	EstimatedWaitTime int           `json:"estimatedWaitTime"`
	CreatedAt         time.Time     `json:"createdAt"`
}

// QueueService is the single authoritative owner of the waitlist. One
// mutex guards the entries, the insertion order and the number counter, so
// the duplicate-phone check and the counter increment are atomic with the
// append. Entries are process-local and lost on restart.
type QueueService struct {
	mu         sync.Mutex
	entries    map[int]*models.QueueEntry
	order      []int
	nextNumber int

	notifier  Notifier
	publisher *realtime.Publisher
}

func NewQueueService(notifier Notifier, publisher *realtime.Publisher) *QueueService {
	return &QueueService{
		entries:    make(map[int]*models.QueueEntry),
		nextNumber: 1,
		notifier:   notifier,
		publisher:  publisher,
	}
}

// Register validates the phone, allocates the next queue number and
// appends a waiting entry, then attempts the registration notification.
// The notification result is reported, never enforced.
func (s *QueueService) Register(ctx context.Context, phone string) (models.QueueEntry, bool, error) {
	if !models.IsValidPhone(phone) {
		monitoring.TrackQueueOperation("register", "invalid")
		return models.QueueEntry{}, false, status.ErrInvalidPhone
	}

	s.mu.Lock()
	for _, number := range s.order {
		entry := s.entries[number]
		if entry.Phone == phone && entry.Status == models.StatusWaiting {
			s.mu.Unlock()
			monitoring.TrackQueueOperation("register", "conflict")
			return models.QueueEntry{}, false, status.ErrAlreadyWaiting
		}
	}

	entry := &models.QueueEntry{
		ID:          utils.NewQueueEntryID(),
		Phone:       phone,
		QueueNumber: s.nextNumber,
		CreatedAt:   time.Now(),
		Status:      models.StatusWaiting,
	}
	s.nextNumber++
	s.entries[entry.QueueNumber] = entry
	s.order = append(s.order, entry.QueueNumber)
	snapshot := *entry
	s.mu.Unlock()

	slog.Info("queue: entry registered", "queueNumber", snapshot.QueueNumber, "id", snapshot.ID)
	monitoring.TrackQueueOperation("register", "success")
	s.publisher.PublishQueueEvent("queue_registered", snapshot.QueueNumber, snapshot.Status)

	notificationSent := s.notifier.SendQueueRegistered(ctx, snapshot.Phone, snapshot.QueueNumber)
	monitoring.TrackNotification("queue_registered", notificationSent)

	return snapshot, notificationSent, nil
}

// Totals reports the waiting count and the most recently issued number.
func (s *QueueService) Totals() (totalQueue, currentNumber int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.entries {
		if entry.Status == models.StatusWaiting {
			totalQueue++
		}
	}
	return totalQueue, s.nextNumber - 1
}

// WaitingCount satisfies monitoring.WaitingCounter.
func (s *QueueService) WaitingCount() int {
	waiting, _ := s.Totals()
	return waiting
}

// ListWaiting returns waiting entries ascending by queue number.
func (s *QueueService) ListWaiting() []models.QueueEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	waiting := []models.QueueEntry{}
	for _, number := range s.order {
		entry := s.entries[number]
		if entry.Status == models.StatusWaiting {
			waiting = append(waiting, *entry)
		}
	}
	sort.Slice(waiting, func(i, j int) bool {
		return waiting[i].QueueNumber < waiting[j].QueueNumber
	})
	return waiting
}

// Transition applies an admin action to an entry. Illegal (status, action)
// pairs are rejected; the source system allowed arbitrary overwrites, the
// explicit table here is a deliberate tightening. The ready and cancel
// actions send notifications, complete does not.
func (s *QueueService) Transition(ctx context.Context, queueNumber int, action models.Action) (models.QueueEntry, bool, error) {
	if !models.IsValidAction(action) {
		monitoring.TrackQueueOperation(string(action), "invalid")
		return models.QueueEntry{}, false, status.ErrInvalidAction
	}

	s.mu.Lock()
	entry, ok := s.entries[queueNumber]
	if !ok {
		s.mu.Unlock()
		monitoring.TrackQueueOperation(string(action), "not_found")
		return models.QueueEntry{}, false, status.ErrEntryNotFound
	}

	next, allowed := models.NextStatus(entry.Status, action)
	if !allowed {
		s.mu.Unlock()
		monitoring.TrackQueueOperation(string(action), "invalid")
		return models.QueueEntry{}, false, status.ErrInvalidTransition
	}

	entry.Status = next
	snapshot := *entry
	s.mu.Unlock()

	slog.Info("queue: entry transitioned", "queueNumber", queueNumber, "action", action, "status", snapshot.Status)
	monitoring.TrackQueueOperation(string(action), "success")
	s.publisher.PublishQueueEvent("queue_transitioned", snapshot.QueueNumber, snapshot.Status)

	notificationSent := false
	switch action {
	case models.ActionReady:
		notificationSent = s.notifier.SendReadyForEntry(ctx, snapshot.Phone, snapshot.QueueNumber)
		monitoring.TrackNotification("ready_for_entry", notificationSent)
	case models.ActionCancel:
		text := fmt.Sprintf("대기가 취소되었습니다. (대기번호: #%d)", snapshot.QueueNumber)
		notificationSent = s.notifier.SendPlainMessage(ctx, snapshot.Phone, text)
		monitoring.TrackNotification("cancelled", notificationSent)
	}

	return snapshot, notificationSent, nil
}

// StatusByNumber looks an entry up by its queue number.
func (s *QueueService) StatusByNumber(queueNumber int) (QueueStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[queueNumber]
	if !ok {
		return QueueStatus{}, status.ErrEntryNotFound
	}
	return s.statusLocked(entry), nil
}

// StatusByPhone looks up the phone's first non-completed entry, matching
// the lookup customers use after registering.
func (s *QueueService) StatusByPhone(phone string) (QueueStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, number := range s.order {
		entry := s.entries[number]
		if entry.Phone == phone && entry.Status != models.StatusCompleted {
			return s.statusLocked(entry), nil
		}
	}
	return QueueStatus{}, status.ErrEntryNotFound
}

func (s *QueueService) statusLocked(entry *models.QueueEntry) QueueStatus {
	waitingAhead := 0
	for _, other := range s.entries {
		if other.Status == models.StatusWaiting && other.QueueNumber < entry.QueueNumber {
			waitingAhead++
		}
	}

	estimated := waitingAhead * 15
	if estimated < 5 {
		estimated = 5
	}

	return QueueStatus{
		QueueNumber:       entry.QueueNumber,
		Status:            entry.Status,
		WaitingAhead:      waitingAhead,
		EstimatedWaitTime: estimated,
		CreatedAt:         entry.CreatedAt,
	}
}
