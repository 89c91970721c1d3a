package chatbase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// pageSize is the provider-side cap on conversations per page. Only the
// first page is fetched — windows wider than one page silently truncate,
// which is acceptable at hourly polling volume.
const pageSize = 50

type Client struct {
	apiKey  string
	botID   string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewClient(apiKey, botID, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		botID:   botID,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Fetch returns the conversations Chatbase recorded inside the window, in
// provider order. Transport failures, non-2xx responses, and unrecognized
// payload shapes are soft failures: logged and reported as an empty list so
// a transient provider outage never kills a scheduled run. The returned
// error covers only invalid input, which is a configuration fault.
func (c *Client) Fetch(ctx context.Context, w Window) ([]Conversation, error) {
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid window: %w", err)
	}

	q := url.Values{}
	q.Set("bot_id", c.botID)
	q.Set("start_date", w.Start.Format(time.RFC3339))
	q.Set("end_date", w.End.Format(time.RFC3339))
	q.Set("page", "1")
	q.Set("page_size", fmt.Sprintf("%d", pageSize))
	reqURL := c.baseURL + "/get-conversations?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Info("fetching conversations", "window", w.String(), "bot_id", c.botID)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("chatbase request failed", "error", err)
		return []Conversation{}, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("read chatbase response", "error", err)
		return []Conversation{}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("chatbase returned error",
			"status", resp.StatusCode,
			"body", string(body),
		)
		return []Conversation{}, nil
	}

	convos, err := decodeConversations(body)
	if err != nil {
		c.logger.Error("unexpected chatbase response shape", "error", err, "body", string(body))
		return []Conversation{}, nil
	}

	c.logger.Info("retrieved conversations", "count", len(convos))
	return convos, nil
}

// decodeConversations normalizes the two payload shapes Chatbase has
// shipped: a bare array of conversations, or an envelope holding the array
// under "conversations" (older deployments used "data"). Anything else is
// malformed.
func decodeConversations(body []byte) ([]Conversation, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty body")
	}

	if trimmed[0] == '[' {
		var convos []Conversation
		if err := json.Unmarshal(trimmed, &convos); err != nil {
			return nil, fmt.Errorf("decode conversation list: %w", err)
		}
		return convos, nil
	}

	if trimmed[0] == '{' {
		var envelope struct {
			Conversations json.RawMessage `json:"conversations"`
			Data          json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("decode envelope: %w", err)
		}
		list := envelope.Conversations
		if isAbsent(list) {
			list = envelope.Data
		}
		if isAbsent(list) {
			return nil, fmt.Errorf("envelope has no conversation list")
		}
		var convos []Conversation
		if err := json.Unmarshal(list, &convos); err != nil {
			return nil, fmt.Errorf("decode enveloped list: %w", err)
		}
		return convos, nil
	}

	return nil, fmt.Errorf("body is neither a list nor an envelope")
}

func isAbsent(raw json.RawMessage) bool {
	return raw == nil || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
