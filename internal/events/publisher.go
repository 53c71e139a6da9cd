package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Subjects published by this service. Consumers include the notifications
// pipeline and the reporting warehouse loader.
const (
	SubjectSiteCreated   = "linkbuilding.site.created"
	SubjectSitesImported = "linkbuilding.sites.imported"
	SubjectOrderCreated  = "linkbuilding.order.created"
	SubjectOrderStatus   = "linkbuilding.order.status_changed"
	SubjectPlacementLive = "linkbuilding.placement.live"
)

// Event is the envelope for every message this service emits.
type Event struct {
	ID        string      `json:"id"`
	Subject   string      `json:"subject"`
	TenantID  string      `json:"tenantId"`
	ActorID   string      `json:"actorId,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Publisher emits domain events over NATS. A nil connection disables
// publishing; every Publish becomes a no-op so the service runs without a
// broker in development.
type Publisher struct {
	nc     *nats.Conn
	logger *logrus.Entry
}

// Connect dials NATS and returns a Publisher. An empty URL returns a disabled
// publisher rather than an error.
func Connect(url string, logger *logrus.Logger) (*Publisher, error) {
	entry := logger.WithField("component", "events")
	if url == "" {
		entry.Info("NATS URL not configured, event publishing disabled")
		return &Publisher{logger: entry}, nil
	}

	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			entry.WithError(err).Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			entry.Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, err
	}

	entry.WithField("url", url).Info("Connected to NATS")
	return &Publisher{nc: nc, logger: entry}, nil
}

// Publish emits one event. Failures are logged and swallowed; event delivery
// never blocks or fails the originating request.
func (p *Publisher) Publish(subject, tenantID, actorID string, data interface{}) {
	if p == nil || p.nc == nil {
		return
	}

	event := Event{
		ID:        uuid.New().String(),
		Subject:   subject,
		TenantID:  tenantID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).WithField("subject", subject).Error("Failed to marshal event")
		return
	}

	if err := p.nc.Publish(subject, payload); err != nil {
		p.logger.WithError(err).WithField("subject", subject).Error("Failed to publish event")
	}
}

// Close drains the connection.
func (p *Publisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	_ = p.nc.Drain()
}
