package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandleAPIGateway(t *testing.T) {
	tests := []struct {
		name           string
		req            events.APIGatewayProxyRequest
		setupMock      func(*MockClient)
		expectedStatus int
		expectedBody   string
		expectCallback bool
	}{
		{
			name: "verified notification",
			req:  events.APIGatewayProxyRequest{Body: ipnBody},
			setupMock: func(m *MockClient) {
				m.On("Validate", mock.Anything, ipnBody).Return(true, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "OK",
			expectCallback: true,
		},
		{
			name: "base64 body is decoded before validation",
			req: events.APIGatewayProxyRequest{
				Body:            base64.StdEncoding.EncodeToString([]byte(ipnBody)),
				IsBase64Encoded: true,
			},
			setupMock: func(m *MockClient) {
				m.On("Validate", mock.Anything, ipnBody).Return(true, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "OK",
			expectCallback: true,
		},
		{
			name:           "undecodable base64",
			req:            events.APIGatewayProxyRequest{Body: "%%%", IsBase64Encoded: true},
			setupMock:      func(*MockClient) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "malformed body",
		},
		{
			name: "invalid notification",
			req:  events.APIGatewayProxyRequest{Body: ipnBody},
			setupMock: func(m *MockClient) {
				m.On("Validate", mock.Anything, ipnBody).Return(false, nil)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   "Forbidden",
		},
		{
			name: "payson unreachable",
			req:  events.APIGatewayProxyRequest{Body: ipnBody},
			setupMock: func(m *MockClient) {
				m.On("Validate", mock.Anything, ipnBody).Return(false, errors.New("dial tcp: i/o timeout"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &MockClient{}
			tt.setupMock(client)
			cb := &fakeCallback{}
			processor := newTestProcessor(client, WithCallbackSender(cb))

			resp, err := processor.HandleAPIGateway(context.Background(), tt.req)
			require.NoError(t, err)
			require.Equal(t, tt.expectedStatus, resp.StatusCode)
			require.Equal(t, tt.expectedBody, resp.Body)
			require.Equal(t, "text/plain; charset=utf-8", resp.Headers["Content-Type"])
			require.Equal(t, tt.expectCallback, len(cb.calls) == 1)
			client.AssertExpectations(t)
		})
	}
}
