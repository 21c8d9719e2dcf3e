package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"

	"waitlist-system/config"
	"waitlist-system/internal/status"
)

// ResendService wraps the Resend transactional email API. Sends are
// single-shot; the returned message id is the provider's identifier for
// the accepted message, not a delivery confirmation.
type ResendService struct {
	client *resend.Client
	from   string
	appURL string
}

func NewResendService(cfg *config.Config) *ResendService {
	return &ResendService{
		client: resend.NewClient(cfg.ResendAPIKey),
		from:   cfg.ResendFromEmail,
		appURL: cfg.AppURL,
	}
}

// SendTempPassword mails a freshly issued temporary password. Returns the
// provider message id on success.
func (s *ResendService) SendTempPassword(ctx context.Context, to, username, tempPassword string) (string, error) {
	html, err := renderTempPasswordHTML(username, tempPassword, s.appURL)
	if err != nil {
		return "", fmt.Errorf("render temp password template: %w", err)
	}

	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: "[캐치테이블] 임시 비밀번호 발급",
		Html:    html,
		Text:    renderTempPasswordText(username, tempPassword, s.appURL),
	})
	if err != nil {
		slog.Error("resend: temp password send failed", "to", to, "error", err)
		return "", fmt.Errorf("%w: %v", status.ErrEmailSend, err)
	}

	slog.Info("resend: temp password sent", "to", to, "messageId", sent.Id)
	return sent.Id, nil
}

// SendTest sends a plain connectivity-check email. Development use only.
func (s *ResendService) SendTest(ctx context.Context, to string) (string, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: "[캐치테이블] 테스트 이메일",
		Html: `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #2563eb;">캐치테이블</h1>
  <p>이메일 설정이 정상적으로 작동합니다!</p>
  <p>이 테스트 이메일을 받으셨다면 Resend 설정이 완료되었습니다.</p>
</div>`,
		Text: "캐치테이블 테스트 이메일입니다. 이메일 설정이 정상적으로 작동합니다!",
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", status.ErrEmailSend, err)
	}

	return sent.Id, nil
}

// Status fetches the provider's view of a previously sent message.
func (s *ResendService) Status(ctx context.Context, messageID string) (*resend.Email, error) {
	return s.client.Emails.GetWithContext(ctx, messageID)
}
