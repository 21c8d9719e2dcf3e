package realtime

import (
	"log/slog"

	pubnub "github.com/pubnub/go"

	"waitlist-system/config"
	"waitlist-system/models"
)

const adminChannel = "waitlist-admin"

// Publisher pushes queue lifecycle events to the admin dashboard channel.
// Publishing is best-effort; a nil-configured publisher is a no-op.
type Publisher struct {
	pn *pubnub.PubNub
}

func NewPublisher(cfg *config.Config) *Publisher {
	if cfg.PubNubPublishKey == "" || cfg.PubNubSubscribeKey == "" {
		return &Publisher{}
	}

	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey

	return &Publisher{pn: pubnub.NewPubNub(pnConfig)}
}

func (p *Publisher) Enabled() bool {
	return p != nil && p.pn != nil
}

// PublishQueueEvent announces a registration or transition on the admin
// channel.
func (p *Publisher) PublishQueueEvent(event string, queueNumber int, entryStatus models.Status) {
	if !p.Enabled() {
		return
	}

	_, _, err := p.pn.Publish().
		Channel(adminChannel).
		Message(map[string]any{
			"type":         event,
			"queue_number": queueNumber,
			"status":       string(entryStatus),
		}).
		Execute()
	if err != nil {
		slog.Error("pubnub: publish failed", "event", event, "queueNumber", queueNumber, "error", err)
	}
}
