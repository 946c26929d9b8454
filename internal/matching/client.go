package matching

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

	"github.com/google/uuid"

	"github.com/careswap-app/careswap-backend/pkg/config"
	pkgerrors "github.com/careswap-app/careswap-backend/pkg/errors"
	"github.com/careswap-app/careswap-backend/pkg/logger"
)

const defaultTimeout = 5 * time.Second

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the external compatibility scorer over HTTP.
type Client struct {
	scorerURL  string
	httpClient httpDoer
	logger     *logger.Logger
}

// NewClient builds the scorer client, or a permissive scorer when no endpoint
// is configured.
func NewClient(cfg config.MatchingConfig, logg *logger.Logger) (Scorer, error) {
	if logg == nil {
		return nil, errors.New("matching logger is required")
	}
	scorerURL := strings.TrimSpace(cfg.ScorerURL)
	if scorerURL == "" {
		return NewPermissiveScorer(), nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		scorerURL:  scorerURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logg,
	}, nil
}

type scoreRequest struct {
	ProposerID  uuid.UUID `json:"proposerId"`
	RecipientID uuid.UUID `json:"recipientId"`
}

// Score asks the scorer service for the pair's verdict.
func (c *Client) Score(ctx context.Context, proposerID, recipientID uuid.UUID) (Result, error) {
	body, err := json.Marshal(scoreRequest{ProposerID: proposerID, RecipientID: recipientID})
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode score request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.scorerURL, bytes.NewReader(body))
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build score request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scorer unreachable")
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("scorer returned status %d", resp.StatusCode))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode score response")
	}
	return result, nil
}
