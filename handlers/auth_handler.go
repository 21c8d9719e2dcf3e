package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"waitlist-system/internal/status"
	"waitlist-system/services"
)

const userCookieMaxAge = 60 * 60 * 24 * 7

type AuthHandler struct {
	accountService *services.AccountService
	secureCookies  bool
}

func NewAuthHandler(accountService *services.AccountService, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		accountService: accountService,
		secureCookies:  secureCookies,
	}
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req services.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "모든 필드를 입력해주세요.",
		})
	}

	err := h.accountService.Signup(c.Request().Context(), req)
	switch {
	case errors.Is(err, status.ErrMissingFields):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "모든 필드를 입력해주세요.",
		})
	case errors.Is(err, status.ErrUsernameLength):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "아이디는 3자 이상 50자 이하여야 합니다.",
		})
	case errors.Is(err, status.ErrNameLength):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "이름은 2자 이상 100자 이하여야 합니다.",
		})
	case errors.Is(err, status.ErrPasswordTooShort):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "비밀번호는 6자 이상이어야 합니다.",
		})
	case errors.Is(err, status.ErrInvalidPhone):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "올바른 휴대폰 번호 형식이 아닙니다.",
		})
	case errors.Is(err, status.ErrInvalidEmail):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "올바른 이메일 형식이 아닙니다.",
		})
	case errors.Is(err, status.ErrUsernameTaken):
		return c.JSON(http.StatusConflict, map[string]string{
			"message": "이미 존재하는 아이디입니다.",
		})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "회원가입 중 오류가 발생했습니다.",
		})
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"message": "회원가입이 완료되었습니다.",
	})
}

// Login handles POST /auth/login. The cookie carries the persistent user
// id in plaintext; there is no session store behind it.
func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "아이디와 비밀번호를 입력해주세요.",
		})
	}

	user, err := h.accountService.Login(c.Request().Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, status.ErrMissingFields):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "아이디와 비밀번호를 입력해주세요.",
		})
	case errors.Is(err, status.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"message": "아이디 또는 비밀번호가 잘못되었습니다.",
		})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "로그인 중 오류가 발생했습니다.",
		})
	}

	c.SetCookie(&http.Cookie{
		Name:     "userId",
		Value:    user.ID.Hex(),
		Path:     "/",
		MaxAge:   userCookieMaxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})

	return c.JSON(http.StatusOK, map[string]any{
		"message": "로그인이 완료되었습니다.",
		"user": map[string]any{
			"id":       user.ID.Hex(),
			"username": user.Username,
			"name":     user.Name,
			"email":    user.Email,
		},
	})
}

// FindID handles POST /auth/find-id.
func (h *AuthHandler) FindID(c echo.Context) error {
	var req struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "이름과 휴대폰 번호를 입력해주세요.",
		})
	}

	masked, err := h.accountService.FindID(c.Request().Context(), req.Name, req.Phone)
	switch {
	case errors.Is(err, status.ErrMissingFields):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "이름과 휴대폰 번호를 입력해주세요.",
		})
	case errors.Is(err, status.ErrInvalidPhone):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "올바른 휴대폰 번호 형식이 아닙니다.",
		})
	case errors.Is(err, status.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{
			"message": "일치하는 사용자 정보를 찾을 수 없습니다.",
		})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "아이디 찾기 중 오류가 발생했습니다.",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"username": masked,
		"message":  "아이디를 찾았습니다.",
	})
}

// ResetPassword handles POST /auth/reset-password.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "아이디와 이메일을 입력해주세요.",
		})
	}

	messageID, err := h.accountService.ResetPassword(c.Request().Context(), req.Username, req.Email)
	switch {
	case errors.Is(err, status.ErrMissingFields):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "아이디와 이메일을 입력해주세요.",
		})
	case errors.Is(err, status.ErrInvalidEmail):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "올바른 이메일 형식이 아닙니다.",
		})
	case errors.Is(err, status.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{
			"message": "일치하는 사용자 정보를 찾을 수 없습니다.",
		})
	case errors.Is(err, status.ErrEmailSend):
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "이메일 발송에 실패했습니다. 잠시 후 다시 시도해주세요.",
		})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "비밀번호 초기화 중 오류가 발생했습니다.",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message":   "임시 비밀번호가 이메일로 발송되었습니다.",
		"messageId": messageID,
	})
}
