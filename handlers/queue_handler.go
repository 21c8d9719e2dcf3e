package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v5"

	"waitlist-system/internal/status"
	"waitlist-system/services"
)

type QueueHandler struct {
	queueService *services.QueueService
}

func NewQueueHandler(queueService *services.QueueService) *QueueHandler {
	return &QueueHandler{queueService: queueService}
}

// RegisterQueue handles POST /register-queue.
func (h *QueueHandler) RegisterQueue(c echo.Context) error {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "올바른 휴대폰 번호를 입력해주세요.",
		})
	}

	entry, notificationSent, err := h.queueService.Register(c.Request().Context(), req.Phone)
	switch {
	case errors.Is(err, status.ErrInvalidPhone):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "올바른 휴대폰 번호를 입력해주세요.",
		})
	case errors.Is(err, status.ErrAlreadyWaiting):
		return c.JSON(http.StatusConflict, map[string]string{
			"error": "이미 대기열에 등록된 번호입니다.",
		})
	case err != nil:
		return internalError(c)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":          true,
		"queueNumber":      entry.QueueNumber,
		"id":               entry.ID,
		"notificationSent": notificationSent,
		"message":          "대기열에 등록되었습니다.",
	})
}

// GetQueueTotals handles GET /register-queue.
func (h *QueueHandler) GetQueueTotals(c echo.Context) error {
	totalQueue, currentNumber := h.queueService.Totals()

	return c.JSON(http.StatusOK, map[string]any{
		"totalQueue":    totalQueue,
		"currentNumber": currentNumber,
	})
}

// GetQueueStatus handles GET /queue-status?queueNumber=|phone=.
func (h *QueueHandler) GetQueueStatus(c echo.Context) error {
	queueNumberParam := c.QueryParam("queueNumber")
	phone := c.QueryParam("phone")

	if queueNumberParam == "" && phone == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "대기번호 또는 휴대폰 번호가 필요합니다.",
		})
	}

	var (
		result services.QueueStatus
		err    error
	)
	if queueNumberParam != "" {
		queueNumber, convErr := strconv.Atoi(queueNumberParam)
		if convErr != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "대기번호 또는 휴대폰 번호가 필요합니다.",
			})
		}
		result, err = h.queueService.StatusByNumber(queueNumber)
	} else {
		result, err = h.queueService.StatusByPhone(phone)
	}

	if errors.Is(err, status.ErrEntryNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "대기열 정보를 찾을 수 없습니다.",
		})
	}
	if err != nil {
		return internalError(c)
	}

	return c.JSON(http.StatusOK, result)
}

func internalError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": "서버 오류가 발생했습니다.",
	})
}
