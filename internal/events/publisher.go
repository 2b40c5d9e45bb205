package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	applog "barter/internal/log"
)

const (
	SubjectProposalCreated  = "exchange.proposal.created"
	SubjectProposalAccepted = "exchange.proposal.accepted"
	SubjectProposalRejected = "exchange.proposal.rejected"
	SubjectProposalDeleted  = "exchange.proposal.deleted"
)

// ProposalEvent is the payload of every exchange.proposal.* message.
type ProposalEvent struct {
	ExchangeID     int64  `json:"exchange_id"`
	Status         string `json:"status"`
	SenderAdID     int64  `json:"ad_sender_id"`
	ReceiverAdID   int64  `json:"ad_receiver_id"`
	SenderUserID   int64  `json:"sender_user_id"`
	ReceiverUserID int64  `json:"receiver_user_id"`
	ActorUserID    int64  `json:"actor_user_id"`
	At             string `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
	Close()
}

// Nop drops every event. It is used when no NATS URL is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
func (Nop) Close()                                     {}

type NATSPublisher struct {
	conn *nats.Conn
	log  *zap.Logger
}

func NewNATSPublisher(url, appName string) (*NATSPublisher, error) {
	log := applog.L().Named("nats")
	log.Info("nats.connect", zap.String("url", url))

	opts := []nats.Option{
		nats.Name(fmt.Sprintf("%s publisher", appName)),
		nats.Timeout(10 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("nats.disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats.reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("nats.closed")
		}),
	}
	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	return &NATSPublisher{conn: conn, log: log}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", subject, err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	p.log.Debug("nats.published", zap.String("subject", subject), zap.Int("bytes", len(data)))
	return nil
}

// Close drains pending messages before closing the connection.
func (p *NATSPublisher) Close() {
	if p.conn == nil || p.conn.IsClosed() {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.log.Error("nats.drain", zap.Error(err))
	}
	p.conn.Close()
}
