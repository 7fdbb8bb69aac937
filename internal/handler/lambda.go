package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/berniyo/payson-lambda/internal/lib/sl"
)

// HandleAPIGateway implements the AWS Lambda entry point for IPN calls
// routed through API Gateway. Failures are reported through the status
// code; Payson resends notifications that do not get a 200.
func (p *Processor) HandleAPIGateway(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log := p.logger.With(
		slog.String("op", "handler.Processor.HandleAPIGateway"),
		slog.String("request_id", req.RequestContext.RequestID),
	)

	raw := req.Body
	if req.IsBase64Encoded {
		data, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			log.Error("failed to decode notification body", sl.Err(err))
			return textResponse(http.StatusBadRequest, "malformed body"), nil
		}
		raw = string(data)
	}

	n, err := p.Process(ctx, raw)
	status := statusFor(err)
	if err != nil {
		return textResponse(status, http.StatusText(status)), nil
	}

	log.Debug("notification acknowledged", slog.String("token", n.Token))
	return textResponse(status, "OK"), nil
}

// statusFor maps a Process result to the HTTP status returned to Payson.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotificationInvalid):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func textResponse(status int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "text/plain; charset=utf-8"},
		Body:       body,
	}
}
