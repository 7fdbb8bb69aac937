package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/berniyo/payson-lambda/internal/lib/sl"
	"github.com/berniyo/payson-lambda/internal/payson"
)

// PaymentClient defines the subset of the Payson client used by the processor.
type PaymentClient interface {
	Validate(ctx context.Context, message string) (bool, error)
}

// ErrNotificationInvalid is returned when Payson does not recognise a
// notification as one it sent.
var ErrNotificationInvalid = errors.New("notification rejected by payson")

// Notification summarises a verified IPN message for downstream systems.
type Notification struct {
	Token       string          `json:"token"`
	PurchaseID  string          `json:"purchase_id,omitempty"`
	Status      string          `json:"status"`
	Type        string          `json:"type"`
	TrackingID  string          `json:"tracking_id,omitempty"`
	Currency    string          `json:"currency"`
	Amount      decimal.Decimal `json:"amount"`
	SenderEmail string          `json:"sender_email,omitempty"`
	Custom      any             `json:"custom,omitempty"`
	ReceivedAt  time.Time       `json:"received_at"`
}

// CallbackSender delivers verified notifications to downstream systems.
type CallbackSender interface {
	Send(ctx context.Context, payload Notification) error
}

// Processor verifies inbound IPN messages and forwards them.
type Processor struct {
	client   PaymentClient
	logger   *slog.Logger
	callback CallbackSender
	metrics  *Metrics
	now      func() time.Time
}

// Option customizes the processor.
type Option func(*Processor)

// WithLogger lets callers supply a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithCallbackSender wires a callback destination invoked after verification.
func WithCallbackSender(sender CallbackSender) Option {
	return func(p *Processor) {
		p.callback = sender
	}
}

// WithMetrics counts processed notifications on m.
func WithMetrics(m *Metrics) Option {
	return func(p *Processor) {
		p.metrics = m
	}
}

// WithClock overrides the time source used for ReceivedAt.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

// NewProcessor builds a Processor with sane defaults.
func NewProcessor(client PaymentClient, opts ...Option) *Processor {
	p := &Processor{
		client: client,
		logger: sl.Discard(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Process validates raw, the notification body exactly as received, and
// decodes it. Validation happens before any parsing so Payson sees the
// bytes it sent.
func (p *Processor) Process(ctx context.Context, raw string) (*Notification, error) {
	const op = "handler.Processor.Process"
	log := p.logger.With(slog.String("op", op))

	verified, err := p.client.Validate(ctx, raw)
	if err != nil {
		p.metrics.observe(outcomeError)
		log.Error("notification validation failed", sl.Err(err))
		return nil, fmt.Errorf("validate notification: %w", err)
	}
	if !verified {
		p.metrics.observe(outcomeInvalid)
		log.Warn("payson rejected notification")
		return nil, ErrNotificationInvalid
	}

	fields, err := payson.ParseFields(raw)
	if err != nil {
		p.metrics.observe(outcomeError)
		return nil, fmt.Errorf("parse notification: %w", err)
	}
	details, err := payson.ParsePaymentDetails(fields)
	if err != nil {
		p.metrics.observe(outcomeError)
		return nil, fmt.Errorf("decode notification: %w", err)
	}

	n := Notification{
		Token:       details.Token,
		PurchaseID:  details.PurchaseID,
		Status:      details.Status,
		Type:        details.Type,
		TrackingID:  details.TrackingID,
		Currency:    details.CurrencyCode,
		Amount:      details.Amount(),
		SenderEmail: details.SenderEmail,
		Custom:      details.Custom,
		ReceivedAt:  p.now().UTC(),
	}
	p.metrics.observe(outcomeVerified)
	log.Info("notification verified",
		slog.String("token", n.Token),
		slog.String("status", n.Status),
		slog.String("amount", n.Amount.String()),
	)

	p.emitCallback(ctx, n)
	return &n, nil
}

func (p *Processor) emitCallback(ctx context.Context, n Notification) {
	if p.callback == nil {
		return
	}
	if err := p.callback.Send(ctx, n); err != nil {
		p.logger.Error("callback delivery failed", slog.String("token", n.Token), sl.Err(err))
	}
}
