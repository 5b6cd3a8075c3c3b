package line

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kart-io/herald/pkg/utils/httpclient"
	"github.com/kart-io/herald/pkg/utils/json"
)

// MaxTextLength is the LINE limit for one text message.
const MaxTextLength = 5000

// Message is one message object in a push or reply payload.
type Message struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// NewTextMessage builds a text message, truncated to the LINE limit.
func NewTextMessage(text string) Message {
	runes := []rune(text)
	if len(runes) > MaxTextLength {
		text = string(runes[:MaxTextLength])
	}
	return Message{Type: "text", Text: text}
}

// Result carries the request id LINE returns for a delivery.
type Result struct {
	RequestID string
}

// Messenger is the delivery surface the bot depends on.
type Messenger interface {
	Push(ctx context.Context, to string, messages []Message) (*Result, error)
	Reply(ctx context.Context, replyToken string, messages []Message) (*Result, error)
}

// Client talks to the LINE Messaging API.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *httpclient.Client
}

var _ Messenger = (*Client)(nil)

// NewClient creates a Messaging API client. Delivery calls are not retried;
// the caller records failures instead.
func NewClient(baseURL, accessToken string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://api.line.me"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient:  httpclient.NewClient(timeout, 0),
	}
}

// Push sends messages to a user or group.
func (c *Client) Push(ctx context.Context, to string, messages []Message) (*Result, error) {
	payload := map[string]any{
		"to":       to,
		"messages": messages,
	}
	return c.post(ctx, "/v2/bot/message/push", payload)
}

// Reply answers a webhook event using its reply token.
func (c *Client) Reply(ctx context.Context, replyToken string, messages []Message) (*Result, error) {
	payload := map[string]any{
		"replyToken": replyToken,
		"messages":   messages,
	}
	return c.post(ctx, "/v2/bot/message/reply", payload)
}

func (c *Client) post(ctx context.Context, path string, payload map[string]any) (*Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.DoRequest(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("http_%d:%s", resp.StatusCode, string(respBody))
	}

	return &Result{RequestID: resp.Header.Get("x-line-request-id")}, nil
}
