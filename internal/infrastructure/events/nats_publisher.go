package events

import (
	"context"
	"fmt"
	"time"

	"portfolio_tracker/internal/domain/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NATSPublisher forwards refresh events to NATS core subjects
// "<prefix>.<event type>", e.g. portfolio.refresh.address.refreshed.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	logger *zap.Logger
}

// ConnectNATS dials url and returns a publisher for subjects under prefix.
func ConnectNATS(url, prefix string, logger *zap.Logger) (*NATSPublisher, error) {
	logger = logger.Named("nats-publisher")
	logger.Info("Connecting to NATS server", zap.String("url", url))

	opts := []nats.Option{
		nats.Name("portfolio-tracker"),
		nats.Timeout(5 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		logger.Error("Failed to connect to NATS", zap.Error(err))
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn, prefix: prefix, logger: logger}, nil
}

// Subject returns the subject an event of type t is published on.
func Subject(prefix string, t entity.EventType) string {
	if prefix == "" {
		return string(t)
	}
	return prefix + "." + string(t)
}

// Publish implements port.EventPublisher.
func (p *NATSPublisher) Publish(_ context.Context, event entity.RefreshEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	subject := Subject(p.prefix, event.Type)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	p.logger.Debug("Event published", zap.String("subject", subject), zap.Int("bytes", len(data)))
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn("NATS drain failed", zap.Error(err))
		p.conn.Close()
	}
}
