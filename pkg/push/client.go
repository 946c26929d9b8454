package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/careswap-app/careswap-backend/pkg/config"
	pkgerrors "github.com/careswap-app/careswap-backend/pkg/errors"
	"github.com/careswap-app/careswap-backend/pkg/logger"
)

const defaultTimeout = 10 * time.Second

var errLoggerRequired = errors.New("push logger is required")

// Notification is the user-visible portion of a push message.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// MulticastMessage targets every registered device token for a recipient.
type MulticastMessage struct {
	Tokens       []string          `json:"tokens"`
	Notification Notification      `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
	// Android/APNS blocks pass platform options through untouched.
	Android map[string]any `json:"android,omitempty"`
	APNS    map[string]any `json:"apns,omitempty"`
}

// MulticastResult aggregates per-token outcomes. Individual token failures are
// not returned; stale tokens are a fact of life and the caller only needs the
// counts.
type MulticastResult struct {
	SuccessCount int `json:"successCount"`
	FailureCount int `json:"failureCount"`
}

// Sender is the delivery surface consumed by the notification dispatcher.
type Sender interface {
	SendMulticast(ctx context.Context, msg MulticastMessage) (MulticastResult, error)
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the push gateway over HTTP.
type Client struct {
	gatewayURL string
	apiKey     string
	httpClient httpDoer
	logger     *logger.Logger
}

// NewClient initializes the push gateway wrapper and validates configuration.
func NewClient(cfg config.PushConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	gatewayURL := strings.TrimSpace(cfg.GatewayURL)
	if gatewayURL == "" {
		return nil, errors.New("push gateway url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		gatewayURL: gatewayURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logg,
	}, nil
}

// SendMulticast delivers the message to every token and returns aggregate
// counts. A gateway-level failure is returned as a dependency error; the
// caller decides whether that is fatal (for this backend it never is).
func (c *Client) SendMulticast(ctx context.Context, msg MulticastMessage) (MulticastResult, error) {
	if len(msg.Tokens) == 0 {
		return MulticastResult{}, nil
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return MulticastResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode push message")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return MulticastResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build push request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return MulticastResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "push gateway unreachable")
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return MulticastResult{}, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("push gateway returned status %d", resp.StatusCode))
	}

	var result MulticastResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return MulticastResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode push response")
	}

	if result.FailureCount > 0 {
		logCtx := c.logger.WithFields(ctx, map[string]any{
			"success_count": result.SuccessCount,
			"failure_count": result.FailureCount,
		})
		c.logger.Warn(logCtx, "push multicast completed with token failures")
	}

	return result, nil
}
