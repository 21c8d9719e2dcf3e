package kakao

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"waitlist-system/config"
)

const defaultAPIHost = "https://kapi.kakao.com"

// messageTemplate is the Kakao "default" template payload.
type messageTemplate struct {
	ObjectType  string        `json:"object_type"`
	Text        string        `json:"text"`
	Link        *templateLink `json:"link,omitempty"`
	ButtonTitle string        `json:"button_title,omitempty"`
}

type templateLink struct {
	WebURL       string `json:"web_url,omitempty"`
	MobileWebURL string `json:"mobile_web_url,omitempty"`
}

// NotificationService wraps the Kakao talk friends message API. Every send
// is a single synchronous HTTP call: no retry, no queueing, no delivery
// tracking. A false result means the call did not succeed, nothing more.
type NotificationService struct {
	adminKey string
	appURL   string
	apiHost  string
	client   *http.Client
}

func NewNotificationService(cfg *config.Config) *NotificationService {
	return &NotificationService{
		adminKey: cfg.KakaoAdminKey,
		appURL:   cfg.AppURL,
		apiHost:  defaultAPIHost,
		client:   http.DefaultClient,
	}
}

// SendQueueRegistered notifies a customer that their registration was
// accepted, linking back to the status page.
func (s *NotificationService) SendQueueRegistered(ctx context.Context, phone string, queueNumber int) bool {
	statusURL := fmt.Sprintf("%s/complete?queueNumber=%d", s.appURL, queueNumber)
	template := messageTemplate{
		ObjectType: "text",
		Text: fmt.Sprintf("🍽️ 캐치테이블 대기열 등록완료\n\n대기번호: #%d\n예상 대기시간: 15-20분\n\n입장 순서가 되면 다시 알림을 보내드립니다.",
			queueNumber),
		Link:        &templateLink{WebURL: statusURL, MobileWebURL: statusURL},
		ButtonTitle: "상태 확인",
	}

	uuid, err := s.resolveUUID(ctx, phone)
	if err != nil {
		slog.Error("kakao: recipient lookup failed", "phone", phone, "error", err)
		return false
	}

	if err := s.sendTemplate(ctx, uuid, template); err != nil {
		slog.Error("kakao: queue registered send failed", "queueNumber", queueNumber, "error", err)
		return false
	}

	return true
}

// SendReadyForEntry notifies a customer that their table is ready.
func (s *NotificationService) SendReadyForEntry(ctx context.Context, phone string, queueNumber int) bool {
	statusURL := fmt.Sprintf("%s/complete?queueNumber=%d", s.appURL, queueNumber)
	template := messageTemplate{
		ObjectType: "text",
		Text: fmt.Sprintf("🔔 입장 준비 완료!\n\n대기번호: #%d\n5분 이내에 매장으로 와주세요.\n\n늦으시면 대기가 취소될 수 있습니다.",
			queueNumber),
		Link:        &templateLink{WebURL: statusURL, MobileWebURL: statusURL},
		ButtonTitle: "확인",
	}

	uuid, err := s.resolveUUID(ctx, phone)
	if err != nil {
		slog.Error("kakao: recipient lookup failed", "phone", phone, "error", err)
		return false
	}

	if err := s.sendTemplate(ctx, uuid, template); err != nil {
		slog.Error("kakao: ready send failed", "queueNumber", queueNumber, "error", err)
		return false
	}

	return true
}

// SendPlainMessage sends free-form text. When the recipient cannot be
// resolved the send degrades to a logged simulation and reports success,
// matching the behavior the admin cancel flow relies on.
func (s *NotificationService) SendPlainMessage(ctx context.Context, phone, text string) bool {
	template := messageTemplate{
		ObjectType: "text",
		Text:       text,
	}

	uuid, err := s.resolveUUID(ctx, phone)
	if err != nil {
		slog.Info("kakao: simulating message send", "phone", phone, "text", text)
		return true
	}

	if err := s.sendTemplate(ctx, uuid, template); err != nil {
		if _, ok := err.(*sendStatusError); ok {
			return false
		}
		slog.Info("kakao: simulating message send", "phone", phone, "text", text)
		return true
	}

	return true
}

type sendStatusError struct {
	code int
}

func (e *sendStatusError) Error() string {
	return fmt.Sprintf("kakao send returned status %d", e.code)
}

// resolveUUID looks the phone number up in the app's talk friends list.
// Kakao stores numbers without dashes.
func (s *NotificationService) resolveUUID(ctx context.Context, phone string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiHost+"/v1/api/talk/friends", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "KakaoAK "+s.adminKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("friends lookup returned status %d", resp.StatusCode)
	}

	var friends struct {
		Elements []struct {
			UUID        string `json:"uuid"`
			PhoneNumber string `json:"phone_number"`
		} `json:"elements"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&friends); err != nil {
		return "", err
	}

	normalized := strings.ReplaceAll(phone, "-", "")
	for _, friend := range friends.Elements {
		if friend.PhoneNumber == normalized {
			return friend.UUID, nil
		}
	}

	return "", fmt.Errorf("no friend matches phone %s", phone)
}

func (s *NotificationService) sendTemplate(ctx context.Context, uuid string, template messageTemplate) error {
	uuids, err := json.Marshal([]string{uuid})
	if err != nil {
		return err
	}
	templateJSON, err := json.Marshal(template)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("receiver_uuids", string(uuids))
	form.Set("template_object", string(templateJSON))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.apiHost+"/v1/api/talk/friends/message/default/send", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "KakaoAK "+s.adminKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &sendStatusError{code: resp.StatusCode}
	}

	return nil
}
