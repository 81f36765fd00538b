package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/finalyzer/support/backend/internal/model/profile"
	"github.com/finalyzer/support/backend/internal/service/reply"
)

var ErrSignupRejected = errors.New("signup webhook rejected the profile")

// maxBodyBytes bounds how much of a webhook response is read.
const maxBodyBytes = 1 << 20

type chatRequest struct {
	Message     string               `json:"message"`
	UserProfile *profile.UserProfile `json:"userProfile"`
}

// Client posts chat messages to the reply webhook.
type Client struct {
	url        string
	httpClient *http.Client
	logger     logrus.FieldLogger
}

// NewClient builds a chat webhook client. A zero timeout means none.
func NewClient(url string, timeout time.Duration, logger logrus.FieldLogger) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Reply sends one message and never fails: transport errors become the
// connectivity text and unusable bodies become the fallback text.
func (c *Client) Reply(ctx context.Context, text string, p *profile.UserProfile) reply.Result {
	payload, err := json.Marshal(chatRequest{Message: text, UserProfile: p})
	if err != nil {
		return reply.Reject(reply.FallbackText, fmt.Errorf("encode chat request: %w", err))
	}

	c.logger.WithField("length", len(text)).Debug("sending message to webhook")

	body, status, err := post(ctx, c.httpClient, c.url, payload)
	if err != nil {
		c.logger.WithError(err).Warn("chat webhook unreachable")
		return reply.Reject(reply.ConnectivityText, err)
	}
	if status < 200 || status > 299 {
		c.logger.WithField("status", status).Warn("chat webhook returned non-success status")
	}

	result := Extract(body)
	if !result.Accepted() {
		c.logger.WithError(result.Reason).WithField("status", status).Warn("chat webhook reply unusable")
	}
	return result
}

// SignupClient registers a submitted profile with the form webhook.
type SignupClient struct {
	url        string
	httpClient *http.Client
	logger     logrus.FieldLogger
}

// NewSignupClient builds a signup webhook client. A zero timeout means none.
func NewSignupClient(url string, timeout time.Duration, logger logrus.FieldLogger) *SignupClient {
	return &SignupClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Register posts the profile; any non-2xx status is ErrSignupRejected.
func (c *SignupClient) Register(ctx context.Context, p profile.UserProfile) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode signup request: %w", err)
	}

	_, status, err := post(ctx, c.httpClient, c.url, payload)
	if err != nil {
		return fmt.Errorf("signup webhook unreachable: %w", err)
	}
	if status < 200 || status > 299 {
		c.logger.WithField("status", status).Warn("signup webhook returned non-success status")
		return fmt.Errorf("%w: status %d", ErrSignupRejected, status)
	}
	return nil
}

func post(ctx context.Context, client *http.Client, url string, payload []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}
