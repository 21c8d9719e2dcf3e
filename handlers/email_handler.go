package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"waitlist-system/internal/email"
)

// EmailHandler exposes the email debug endpoints. Registered in
// development only.
type EmailHandler struct {
	emailService *email.ResendService
}

func NewEmailHandler(emailService *email.ResendService) *EmailHandler {
	return &EmailHandler{emailService: emailService}
}

// SendTest handles POST /api/email/test.
func (h *EmailHandler) SendTest(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "이메일 주소를 입력해주세요.",
		})
	}

	messageID, err := h.emailService.SendTest(c.Request().Context(), req.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "이메일 발송 실패: " + err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message":   "테스트 이메일이 발송되었습니다.",
		"messageId": messageID,
	})
}

// GetStatus handles GET /api/email/status?messageId=.
func (h *EmailHandler) GetStatus(c echo.Context) error {
	messageID := c.QueryParam("messageId")
	if messageID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "Message ID가 필요합니다.",
		})
	}

	sent, err := h.emailService.Status(c.Request().Context(), messageID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "이메일 상태 확인에 실패했습니다.",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    sent,
	})
}
