package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"waitlist-system/internal/status"
	"waitlist-system/models"
	"waitlist-system/services"
)

type AdminHandler struct {
	queueService *services.QueueService
}

func NewAdminHandler(queueService *services.QueueService) *AdminHandler {
	return &AdminHandler{queueService: queueService}
}

// ListQueue handles GET /admin/queue.
func (h *AdminHandler) ListQueue(c echo.Context) error {
	waiting := h.queueService.ListWaiting()

	return c.JSON(http.StatusOK, map[string]any{
		"queue": waiting,
		"total": len(waiting),
	})
}

// TransitionQueue handles PATCH /admin/queue.
func (h *AdminHandler) TransitionQueue(c echo.Context) error {
	var req struct {
		QueueNumber int    `json:"queueNumber"`
		Action      string `json:"action"`
	}
	if err := c.Bind(&req); err != nil || req.QueueNumber == 0 || req.Action == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "대기번호와 액션이 필요합니다.",
		})
	}

	entry, notificationSent, err := h.queueService.Transition(
		c.Request().Context(), req.QueueNumber, models.Action(req.Action))
	switch {
	case errors.Is(err, status.ErrEntryNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "대기열 항목을 찾을 수 없습니다.",
		})
	case errors.Is(err, status.ErrInvalidAction):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "유효하지 않은 액션입니다.",
		})
	case errors.Is(err, status.ErrInvalidTransition):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "현재 상태에서 처리할 수 없는 액션입니다.",
		})
	case err != nil:
		return internalError(c)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":          true,
		"queueNumber":      entry.QueueNumber,
		"status":           entry.Status,
		"notificationSent": notificationSent,
	})
}
