package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waitlist-system/internal/status"
	"waitlist-system/models"
)

// stubNotifier records send attempts and returns canned results.
type stubNotifier struct {
	mu              sync.Mutex
	registeredCalls []int
	readyCalls      []int
	plainMessages   []string
	sendResult      bool
}

func (n *stubNotifier) SendQueueRegistered(_ context.Context, _ string, queueNumber int) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.registeredCalls = append(n.registeredCalls, queueNumber)
	return n.sendResult
}

func (n *stubNotifier) SendReadyForEntry(_ context.Context, _ string, queueNumber int) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.readyCalls = append(n.readyCalls, queueNumber)
	return n.sendResult
}

func (n *stubNotifier) SendPlainMessage(_ context.Context, _ string, text string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.plainMessages = append(n.plainMessages, text)
	return n.sendResult
}

func setupTestQueueService() (*QueueService, *stubNotifier) {
	notifier := &stubNotifier{sendResult: true}
	return NewQueueService(notifier, nil), notifier
}

func TestQueueService_Register_Success(t *testing.T) {
	service, notifier := setupTestQueueService()

	entry, sent, err := service.Register(context.Background(), "010-1234-5678")

	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, 1, entry.QueueNumber)
	assert.Equal(t, models.StatusWaiting, entry.Status)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.Equal(t, []int{1}, notifier.registeredCalls)
}

func TestQueueService_Register_InvalidPhone(t *testing.T) {
	service, notifier := setupTestQueueService()

	invalid := []string{
		"",
		"01012345678",
		"010-123-5678",
		"011-1234-5678",
		"010-1234-56789",
		"hello",
	}

	for _, phone := range invalid {
		_, _, err := service.Register(context.Background(), phone)
		assert.ErrorIs(t, err, status.ErrInvalidPhone, "phone %q", phone)
	}

	total, _ := service.Totals()
	assert.Equal(t, 0, total)
	assert.Empty(t, notifier.registeredCalls)
}

func TestQueueService_Register_DuplicateWaiting(t *testing.T) {
	service, _ := setupTestQueueService()

	_, _, err := service.Register(context.Background(), "010-1234-5678")
	require.NoError(t, err)

	_, _, err = service.Register(context.Background(), "010-1234-5678")
	assert.ErrorIs(t, err, status.ErrAlreadyWaiting)

	total, _ := service.Totals()
	assert.Equal(t, 1, total)
}

func TestQueueService_Register_SamePhoneAfterCancel(t *testing.T) {
	service, _ := setupTestQueueService()

	first, _, err := service.Register(context.Background(), "010-1234-5678")
	require.NoError(t, err)

	_, _, err = service.Transition(context.Background(), first.QueueNumber, models.ActionCancel)
	require.NoError(t, err)

	second, _, err := service.Register(context.Background(), "010-1234-5678")
	require.NoError(t, err)
	assert.Equal(t, 2, second.QueueNumber)
}

func TestQueueService_Register_NotificationFailureDoesNotFail(t *testing.T) {
	service, notifier := setupTestQueueService()
	notifier.sendResult = false

	entry, sent, err := service.Register(context.Background(), "010-1234-5678")

	require.NoError(t, err)
	assert.False(t, sent)
	assert.Equal(t, 1, entry.QueueNumber)
}

func TestQueueService_Register_NumbersStrictlyIncreasing(t *testing.T) {
	service, _ := setupTestQueueService()

	phones := []string{"010-1111-1111", "010-2222-2222", "010-3333-3333", "010-4444-4444"}
	for i, phone := range phones {
		entry, _, err := service.Register(context.Background(), phone)
		require.NoError(t, err)
		assert.Equal(t, i+1, entry.QueueNumber)
	}

	// Cancelled numbers are never reused
	_, _, err := service.Transition(context.Background(), 2, models.ActionCancel)
	require.NoError(t, err)

	entry, _, err := service.Register(context.Background(), "010-5555-5555")
	require.NoError(t, err)
	assert.Equal(t, 5, entry.QueueNumber)
}

func TestQueueService_Register_ConcurrentUniqueNumbers(t *testing.T) {
	service, _ := setupTestQueueService()

	const workers = 50
	results := make(chan int, workers)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			entry, _, err := service.Register(context.Background(), uniquePhone(n))
			if err == nil {
				results <- entry.QueueNumber
			}
		}(i)
	}
	wg.Wait()
	close(results)

	seen := make(map[int]bool)
	for number := range results {
		assert.False(t, seen[number], "queue number %d assigned twice", number)
		seen[number] = true
	}
	assert.Len(t, seen, workers)
}

func uniquePhone(n int) string {
	digits := []byte{'0', '0', '0', '0'}
	for i := 3; i >= 0 && n > 0; i-- {
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return "010-9" + string(digits[1:]) + "-" + string(digits)
}

func TestQueueService_Totals(t *testing.T) {
	service, _ := setupTestQueueService()

	total, current := service.Totals()
	assert.Equal(t, 0, total)
	assert.Equal(t, 0, current)

	_, _, err := service.Register(context.Background(), "010-1111-1111")
	require.NoError(t, err)
	_, _, err = service.Register(context.Background(), "010-2222-2222")
	require.NoError(t, err)

	_, _, err = service.Transition(context.Background(), 1, models.ActionComplete)
	require.NoError(t, err)

	total, current = service.Totals()
	assert.Equal(t, 1, total)
	assert.Equal(t, 2, current)
}

func TestQueueService_ListWaiting_OrderedByNumber(t *testing.T) {
	service, _ := setupTestQueueService()

	for _, phone := range []string{"010-1111-1111", "010-2222-2222", "010-3333-3333"} {
		_, _, err := service.Register(context.Background(), phone)
		require.NoError(t, err)
	}

	_, _, err := service.Transition(context.Background(), 2, models.ActionCancel)
	require.NoError(t, err)

	waiting := service.ListWaiting()
	require.Len(t, waiting, 2)
	assert.Equal(t, 1, waiting[0].QueueNumber)
	assert.Equal(t, 3, waiting[1].QueueNumber)
}

func TestQueueService_Transition_NotFound(t *testing.T) {
	service, _ := setupTestQueueService()

	_, _, err := service.Transition(context.Background(), 42, models.ActionReady)
	assert.ErrorIs(t, err, status.ErrEntryNotFound)
}

func TestQueueService_Transition_InvalidAction(t *testing.T) {
	service, _ := setupTestQueueService()

	_, _, err := service.Register(context.Background(), "010-1234-5678")
	require.NoError(t, err)

	_, _, err = service.Transition(context.Background(), 1, models.Action("promote"))
	assert.ErrorIs(t, err, status.ErrInvalidAction)
}

func TestQueueService_Transition_ReadySendsNotification(t *testing.T) {
	service, notifier := setupTestQueueService()

	_, _, err := service.Register(context.Background(), "010-1234-5678")
	require.NoError(t, err)

	entry, sent, err := service.Transition(context.Background(), 1, models.ActionReady)
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, models.StatusReady, entry.Status)
	assert.Equal(t, []int{1}, notifier.readyCalls)
}

func TestQueueService_Transition_CompleteSendsNoNotification(t *testing.T) {
	service, notifier := setupTestQueueService()

	_, _, err := service.Register(context.Background(), "010-1234-5678")
	require.NoError(t, err)

	entry, sent, err := service.Transition(context.Background(), 1, models.ActionComplete)
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Equal(t, models.StatusCompleted, entry.Status)
	assert.Empty(t, notifier.readyCalls)
	assert.Empty(t, notifier.plainMessages)
}

func TestQueueService_Transition_CancelSendsPlainMessage(t *testing.T) {
	service, notifier := setupTestQueueService()

	_, _, err := service.Register(context.Background(), "010-1234-5678")
	require.NoError(t, err)

	entry, sent, err := service.Transition(context.Background(), 1, models.ActionCancel)
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, models.StatusCancelled, entry.Status)
	require.Len(t, notifier.plainMessages, 1)
	assert.Contains(t, notifier.plainMessages[0], "#1")
}

func TestQueueService_Transition_TerminalStatesRejectActions(t *testing.T) {
	service, _ := setupTestQueueService()

	_, _, err := service.Register(context.Background(), "010-1234-5678")
	require.NoError(t, err)
	_, _, err = service.Transition(context.Background(), 1, models.ActionCancel)
	require.NoError(t, err)

	_, _, err = service.Transition(context.Background(), 1, models.ActionComplete)
	assert.ErrorIs(t, err, status.ErrInvalidTransition)

	result, err := service.StatusByNumber(1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, result.Status)
}

func TestQueueService_StatusByNumber_FreshEntry(t *testing.T) {
	service, _ := setupTestQueueService()

	_, _, err := service.Register(context.Background(), "010-1234-5678")
	require.NoError(t, err)

	result, err := service.StatusByNumber(1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaiting, result.Status)
	assert.Equal(t, 0, result.WaitingAhead)
	assert.Equal(t, 5, result.EstimatedWaitTime)
}

func TestQueueService_StatusByNumber_ThreeAhead(t *testing.T) {
	service, _ := setupTestQueueService()

	phones := []string{"010-1111-1111", "010-2222-2222", "010-3333-3333", "010-4444-4444"}
	for _, phone := range phones {
		_, _, err := service.Register(context.Background(), phone)
		require.NoError(t, err)
	}

	result, err := service.StatusByNumber(4)
	require.NoError(t, err)
	assert.Equal(t, 3, result.WaitingAhead)
	assert.Equal(t, 45, result.EstimatedWaitTime)
}

func TestQueueService_StatusByNumber_NotFound(t *testing.T) {
	service, _ := setupTestQueueService()

	_, err := service.StatusByNumber(7)
	assert.ErrorIs(t, err, status.ErrEntryNotFound)
}

func TestQueueService_StatusByPhone_SkipsCompleted(t *testing.T) {
	service, _ := setupTestQueueService()

	_, _, err := service.Register(context.Background(), "010-1234-5678")
	require.NoError(t, err)
	_, _, err = service.Transition(context.Background(), 1, models.ActionComplete)
	require.NoError(t, err)

	_, err = service.StatusByPhone("010-1234-5678")
	assert.ErrorIs(t, err, status.ErrEntryNotFound)

	// A cancelled entry is still visible by phone
	_, _, err = service.Register(context.Background(), "010-1234-5678")
	require.NoError(t, err)
	_, _, err = service.Transition(context.Background(), 2, models.ActionCancel)
	require.NoError(t, err)

	result, err := service.StatusByPhone("010-1234-5678")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, result.Status)
}
