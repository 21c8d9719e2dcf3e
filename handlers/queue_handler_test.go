package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waitlist-system/models"
	"waitlist-system/services"
)

type fakeNotifier struct {
	sendResult bool
}

func (n *fakeNotifier) SendQueueRegistered(context.Context, string, int) bool { return n.sendResult }
func (n *fakeNotifier) SendReadyForEntry(context.Context, string, int) bool   { return n.sendResult }
func (n *fakeNotifier) SendPlainMessage(context.Context, string, string) bool { return n.sendResult }

func setupQueueTest() (*QueueHandler, *AdminHandler, *services.QueueService) {
	queueService := services.NewQueueService(&fakeNotifier{sendResult: true}, nil)
	return NewQueueHandler(queueService), NewAdminHandler(queueService), queueService
}

func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestQueueHandler_RegisterQueue_Success(t *testing.T) {
	queueHandler, _, _ := setupQueueTest()

	c, rec := newJSONContext(http.MethodPost, "/register-queue", `{"phone":"010-1234-5678"}`)
	require.NoError(t, queueHandler.RegisterQueue(c))

	assert.Equal(t, http.StatusOK, rec.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, true, response["success"])
	assert.Equal(t, float64(1), response["queueNumber"])
	assert.Equal(t, true, response["notificationSent"])
	assert.Contains(t, response["id"], "queue_")
}

func TestQueueHandler_RegisterQueue_InvalidPhone(t *testing.T) {
	queueHandler, _, queueService := setupQueueTest()

	c, rec := newJSONContext(http.MethodPost, "/register-queue", `{"phone":"123"}`)
	require.NoError(t, queueHandler.RegisterQueue(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	total, _ := queueService.Totals()
	assert.Equal(t, 0, total)
}

func TestQueueHandler_RegisterQueue_Duplicate(t *testing.T) {
	queueHandler, _, queueService := setupQueueTest()

	c, rec := newJSONContext(http.MethodPost, "/register-queue", `{"phone":"010-1234-5678"}`)
	require.NoError(t, queueHandler.RegisterQueue(c))
	require.Equal(t, http.StatusOK, rec.Code)

	c, rec = newJSONContext(http.MethodPost, "/register-queue", `{"phone":"010-1234-5678"}`)
	require.NoError(t, queueHandler.RegisterQueue(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	total, _ := queueService.Totals()
	assert.Equal(t, 1, total)
}

func TestQueueHandler_GetQueueTotals(t *testing.T) {
	queueHandler, _, queueService := setupQueueTest()

	_, _, err := queueService.Register(context.Background(), "010-1234-5678")
	require.NoError(t, err)

	c, rec := newJSONContext(http.MethodGet, "/register-queue", "")
	require.NoError(t, queueHandler.GetQueueTotals(c))

	assert.Equal(t, http.StatusOK, rec.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["totalQueue"])
	assert.Equal(t, float64(1), response["currentNumber"])
}

func TestQueueHandler_GetQueueStatus_MissingParams(t *testing.T) {
	queueHandler, _, _ := setupQueueTest()

	c, rec := newJSONContext(http.MethodGet, "/queue-status", "")
	require.NoError(t, queueHandler.GetQueueStatus(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueueHandler_GetQueueStatus_NotFound(t *testing.T) {
	queueHandler, _, _ := setupQueueTest()

	c, rec := newJSONContext(http.MethodGet, "/queue-status?queueNumber=9", "")
	require.NoError(t, queueHandler.GetQueueStatus(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQueueHandler_RegisterThenStatus_EndToEnd(t *testing.T) {
	queueHandler, _, _ := setupQueueTest()

	c, rec := newJSONContext(http.MethodPost, "/register-queue", `{"phone":"010-1234-5678"}`)
	require.NoError(t, queueHandler.RegisterQueue(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var registered map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))
	assert.Equal(t, true, registered["success"])
	assert.Equal(t, float64(1), registered["queueNumber"])

	c, rec = newJSONContext(http.MethodGet, "/queue-status?queueNumber=1", "")
	require.NoError(t, queueHandler.GetQueueStatus(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var result map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "waiting", result["status"])
	assert.Equal(t, float64(0), result["waitingAhead"])
	assert.Equal(t, float64(5), result["estimatedWaitTime"])
}

func TestQueueHandler_GetQueueStatus_ByPhone(t *testing.T) {
	queueHandler, _, queueService := setupQueueTest()

	_, _, err := queueService.Register(context.Background(), "010-1234-5678")
	require.NoError(t, err)

	c, rec := newJSONContext(http.MethodGet, "/queue-status?phone=010-1234-5678", "")
	require.NoError(t, queueHandler.GetQueueStatus(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var result map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, float64(1), result["queueNumber"])
}

func TestAdminHandler_ListQueue(t *testing.T) {
	_, adminHandler, queueService := setupQueueTest()

	for _, phone := range []string{"010-1111-1111", "010-2222-2222"} {
		_, _, err := queueService.Register(context.Background(), phone)
		require.NoError(t, err)
	}
	_, _, err := queueService.Transition(context.Background(), 1, models.ActionComplete)
	require.NoError(t, err)

	c, rec := newJSONContext(http.MethodGet, "/admin/queue", "")
	require.NoError(t, adminHandler.ListQueue(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Queue []map[string]any `json:"queue"`
		Total int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Total)
	require.Len(t, response.Queue, 1)
	assert.Equal(t, float64(2), response.Queue[0]["queueNumber"])
}

func TestAdminHandler_TransitionQueue_Ready(t *testing.T) {
	_, adminHandler, queueService := setupQueueTest()

	_, _, err := queueService.Register(context.Background(), "010-1234-5678")
	require.NoError(t, err)

	c, rec := newJSONContext(http.MethodPatch, "/admin/queue", `{"queueNumber":1,"action":"ready"}`)
	require.NoError(t, adminHandler.TransitionQueue(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, true, response["success"])
	assert.Equal(t, "ready", response["status"])
	assert.Equal(t, true, response["notificationSent"])
}

func TestAdminHandler_TransitionQueue_NotFound(t *testing.T) {
	_, adminHandler, _ := setupQueueTest()

	c, rec := newJSONContext(http.MethodPatch, "/admin/queue", `{"queueNumber":42,"action":"ready"}`)
	require.NoError(t, adminHandler.TransitionQueue(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminHandler_TransitionQueue_InvalidAction(t *testing.T) {
	_, adminHandler, queueService := setupQueueTest()

	_, _, err := queueService.Register(context.Background(), "010-1234-5678")
	require.NoError(t, err)

	c, rec := newJSONContext(http.MethodPatch, "/admin/queue", `{"queueNumber":1,"action":"promote"}`)
	require.NoError(t, adminHandler.TransitionQueue(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminHandler_TransitionQueue_MissingFields(t *testing.T) {
	_, adminHandler, _ := setupQueueTest()

	c, rec := newJSONContext(http.MethodPatch, "/admin/queue", `{}`)
	require.NoError(t, adminHandler.TransitionQueue(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
