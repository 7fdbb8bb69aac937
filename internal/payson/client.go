package payson

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/berniyo/payson-lambda/internal/lib/sl"
)

const (
	apiVersion = "1.0"

	headerUserID   = "PAYSON-SECURITY-USERID"
	headerPassword = "PAYSON-SECURITY-PASSWORD"
)

// API actions, appended to <base>/1.0/.
const (
	actionPay            = "Pay"
	actionPaymentDetails = "PaymentDetails"
	actionPaymentUpdate  = "PaymentUpdate"
	actionValidate       = "Validate"
	actionSendIPN        = "SendIPN"
)

// Literal bodies returned by the Validate action.
const (
	validationVerified = "VERIFIED"
	validationInvalid  = "INVALID"
)

// APIError surfaces non-2xx HTTP responses from Payson.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("payson api error: status=%d body=%s", e.StatusCode, e.Body)
}

// ErrUnexpectedValidation is returned when the Validate action answers
// with anything other than VERIFIED or INVALID.
var ErrUnexpectedValidation = errors.New("unexpected payson validation response")

// Client talks to the Payson API. The environment is chosen once in
// NewClient and never changes, so a Client is safe for concurrent use as
// long as its *http.Client is.
type Client struct {
	httpClient *http.Client
	creds      Credentials
	sandbox    []Credentials
	env        Environment
	logger     *slog.Logger
	metrics    *Metrics
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient sets the transport. Timeouts and redirect policy belong to it.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithLogger lets callers supply a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// WithSandboxCredentials lists the credential pairs that select the sandbox.
func WithSandboxCredentials(pairs ...Credentials) Option {
	return func(cl *Client) {
		cl.sandbox = append(cl.sandbox, pairs...)
	}
}

// WithMetrics records every API call on m.
func WithMetrics(m *Metrics) Option {
	return func(cl *Client) {
		cl.metrics = m
	}
}

// NewClient builds a client for the given agent credentials.
func NewClient(creds Credentials, opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		creds:      creds,
		logger:     sl.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.env = ResolveEnvironment(creds, c.sandbox)
	c.logger = c.logger.With(slog.String("payson_env", c.env.Name))
	return c
}

// Environment reports the environment selected at construction.
func (c *Client) Environment() Environment {
	return c.env
}

func (c *Client) endpoint(action string) string {
	return fmt.Sprintf("%s/%s/%s/", c.env.BaseURL, apiVersion, action)
}

// Pay initializes a payment. A request Payson rejects is not an error: the
// response reports Success() == false and carries the error list.
func (c *Client) Pay(ctx context.Context, req PayRequest) (*PayResponse, error) {
	fields, err := req.fields()
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, actionPay, fields)
	if err != nil {
		return nil, err
	}

	pay, err := parsePayResponse(c.env.ForwardURLTemplate, resp)
	if err != nil {
		return nil, err
	}
	c.logger.Info("payment initialized",
		slog.Bool("success", pay.Success()),
		slog.String("token", pay.Token),
		slog.String("correlation_id", pay.Envelope.CorrelationID),
	)
	return pay, nil
}

// PaymentDetails fetches the current state of a payment.
func (c *Client) PaymentDetails(ctx context.Context, token string) (*PaymentDetailsResponse, error) {
	resp, err := c.doRequest(ctx, actionPaymentDetails, Fields{"token": token})
	if err != nil {
		return nil, err
	}
	return parsePaymentDetailsResponse(resp)
}

// UpdatePayment applies action to the payment, e.g. marks it shipped. It
// returns true iff Payson acknowledged the update with SUCCESS.
func (c *Client) UpdatePayment(ctx context.Context, token string, action UpdateAction) (bool, error) {
	return c.ackRequest(ctx, actionPaymentUpdate, Fields{
		"token":  token,
		"action": string(action),
	})
}

// ResendNotification asks Payson to deliver the IPN for token again.
func (c *Client) ResendNotification(ctx context.Context, token string) (bool, error) {
	return c.ackRequest(ctx, actionSendIPN, Fields{"token": token})
}

// Validate checks an IPN message with Payson. message must be the body of
// the notification exactly as received; it is forwarded byte for byte.
func (c *Client) Validate(ctx context.Context, message string) (bool, error) {
	body, err := c.send(ctx, actionValidate, message)
	if err != nil {
		return false, err
	}
	return ParseValidation(body)
}

// ParseValidation maps the literal Validate response to a verdict. Any
// text other than VERIFIED or INVALID is a protocol violation.
func ParseValidation(body string) (bool, error) {
	switch body {
	case validationVerified:
		return true, nil
	case validationInvalid:
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnexpectedValidation, body)
	}
}

func (c *Client) ackRequest(ctx context.Context, action string, fields Fields) (bool, error) {
	resp, err := c.doRequest(ctx, action, fields)
	if err != nil {
		return false, err
	}

	env, err := ParseResponseEnvelope(resp)
	if err != nil {
		return false, err
	}
	if !env.Success() {
		c.logger.Warn("payson rejected request",
			slog.String("action", action),
			slog.String("correlation_id", env.CorrelationID),
			slog.Any("errors", env.Errors),
		)
	}
	return env.Success(), nil
}

func (c *Client) doRequest(ctx context.Context, action string, fields Fields) (Fields, error) {
	body, err := c.send(ctx, action, fields.Encode())
	if err != nil {
		return nil, err
	}
	return ParseFields(body)
}

// send posts body to the action endpoint and returns the response body.
// Transport errors are returned unchanged.
func (c *Client) send(ctx context.Context, action, body string) (_ string, err error) {
	const op = "payson.Client.send"
	log := c.logger.With(slog.String("op", op), slog.String("action", action))

	start := time.Now()
	defer func() { c.metrics.observe(action, start, err) }()

	url := c.endpoint(action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(headerUserID, c.creds.AgentID)
	req.Header.Set(headerPassword, c.creds.APIKey)

	log.Debug("calling payson", slog.String("url", url))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("payson request failed", sl.Err(err))
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err = &APIError{StatusCode: resp.StatusCode, Body: string(data)}
		log.Error("payson returned error status", sl.Err(err))
		return "", err
	}

	log.Debug("payson responded", slog.Int("status", resp.StatusCode), slog.Int("bytes", len(data)))
	return string(data), nil
}
