// Package slack provides a thin client for the Slack Web API.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/crewsight/nonengage/internal/logger"
)

// Config holds the configuration for the Web API client.
type Config struct {
	Token   string
	BaseURL string
	Timeout time.Duration
}

// Client wraps the Web API with bot-token auth and client-side rate limiting.
// It performs no retries — failures are reported to the caller as-is.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	limiter    *RateLimiter
	log        *logger.Logger
}

// NewClient creates a new Web API client with the provided configuration.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://slack.com/api"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      cfg.Token,
		limiter:    DefaultRateLimiter(),
		log:        logger.Get(),
	}
}

// envelope is the ok/error header every Web API response carries.
type envelope struct {
	Ok    bool   `json:"ok"`
	Error string `json:"error"`
}

func (e envelope) status() (bool, string) { return e.Ok, e.Error }

// statuser lets call check the ok/error envelope of any response type.
type statuser interface {
	status() (ok bool, code string)
}

// call performs one Web API method call and decodes the response into out.
// An ok=false envelope becomes an *APIError; transport, HTTP-status and
// decode failures are returned as plain errors.
func (c *Client) call(ctx context.Context, method string, params url.Values, out statuser) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		if secs, aerr := strconv.Atoi(resp.Header.Get("Retry-After")); aerr == nil {
			c.log.Warn().Str("method", method).Int("retry_after", secs).Msg("slack: rate limited")
			c.limiter.SetRetryAfter(secs)
		}
		return &APIError{Method: method, Code: "ratelimited"}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", method, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if ok, code := out.status(); !ok {
		return &APIError{Method: method, Code: code}
	}
	return nil
}

type usersListResponse struct {
	envelope
	Members          []Member         `json:"members"`
	ResponseMetadata responseMetadata `json:"response_metadata"`
}

// UsersList returns one page of the workspace directory plus the cursor
// for the next page. An empty cursor means the last page.
func (c *Client) UsersList(ctx context.Context, cursor string) ([]Member, string, error) {
	params := url.Values{"limit": {"200"}}
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	var resp usersListResponse
	if err := c.call(ctx, "users.list", params, &resp); err != nil {
		return nil, "", err
	}
	return resp.Members, resp.ResponseMetadata.NextCursor, nil
}

type membersResponse struct {
	envelope
	Members          []string         `json:"members"`
	ResponseMetadata responseMetadata `json:"response_metadata"`
}

// ConversationsMembers returns one page of member IDs for a channel.
func (c *Client) ConversationsMembers(ctx context.Context, channel, cursor string) ([]string, string, error) {
	params := url.Values{"channel": {channel}, "limit": {"1000"}}
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	var resp membersResponse
	if err := c.call(ctx, "conversations.members", params, &resp); err != nil {
		return nil, "", err
	}
	return resp.Members, resp.ResponseMetadata.NextCursor, nil
}

type historyResponse struct {
	envelope
	Messages []Message `json:"messages"`
}

// GetMessage fetches the single message at the given timestamp using
// conversations.history with latest/inclusive. Returns ErrMessageNotFound
// if no message exists exactly at that timestamp.
func (c *Client) GetMessage(ctx context.Context, channel, ts string) (*Message, error) {
	params := url.Values{
		"channel":   {channel},
		"latest":    {ts},
		"inclusive": {"true"},
		"limit":     {"1"},
	}

	var resp historyResponse
	if err := c.call(ctx, "conversations.history", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Messages) == 0 || resp.Messages[0].TS != ts {
		return nil, ErrMessageNotFound
	}
	msg := resp.Messages[0]
	return &msg, nil
}

type reactionsResponse struct {
	envelope
	Message struct {
		Reactions []Reaction `json:"reactions"`
	} `json:"message"`
}

// ReactionsGet returns the reactions on the message at the given timestamp.
func (c *Client) ReactionsGet(ctx context.Context, channel, ts string) ([]Reaction, error) {
	params := url.Values{"channel": {channel}, "timestamp": {ts}}

	var resp reactionsResponse
	if err := c.call(ctx, "reactions.get", params, &resp); err != nil {
		return nil, err
	}
	return resp.Message.Reactions, nil
}

type repliesResponse struct {
	envelope
	Messages         []Message        `json:"messages"`
	ResponseMetadata responseMetadata `json:"response_metadata"`
}

// ConversationsReplies returns one page of the thread rooted at ts.
// The parent message is included in the first page.
func (c *Client) ConversationsReplies(ctx context.Context, channel, ts, cursor string) ([]Message, string, error) {
	params := url.Values{"channel": {channel}, "ts": {ts}, "limit": {"200"}}
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	var resp repliesResponse
	if err := c.call(ctx, "conversations.replies", params, &resp); err != nil {
		return nil, "", err
	}
	return resp.Messages, resp.ResponseMetadata.NextCursor, nil
}

type openResponse struct {
	envelope
	Channel Channel `json:"channel"`
}

// ConversationsOpen opens (or resumes) a DM with the given user and
// returns its channel ID.
func (c *Client) ConversationsOpen(ctx context.Context, userID string) (string, error) {
	params := url.Values{"users": {userID}}

	var resp openResponse
	if err := c.call(ctx, "conversations.open", params, &resp); err != nil {
		return "", err
	}
	return resp.Channel.ID, nil
}

// PostMessage posts a message to a channel or DM.
func (c *Client) PostMessage(ctx context.Context, channel, text string) error {
	params := url.Values{"channel": {channel}, "text": {text}}

	var resp envelope
	return c.call(ctx, "chat.postMessage", params, &resp)
}

// PostEphemeral posts a message visible only to the given user.
func (c *Client) PostEphemeral(ctx context.Context, channel, user, text string) error {
	params := url.Values{"channel": {channel}, "user": {user}, "text": {text}}

	var resp envelope
	return c.call(ctx, "chat.postEphemeral", params, &resp)
}

type uploadURLResponse struct {
	envelope
	UploadURL string `json:"upload_url"`
	FileID    string `json:"file_id"`
}

type fileRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// UploadFile uploads content as a file attachment to a channel using the
// external upload flow: files.getUploadURLExternal, a raw POST of the
// bytes, then files.completeUploadExternal.
func (c *Client) UploadFile(ctx context.Context, channel, filename, title string, content []byte) error {
	params := url.Values{"filename": {filename}, "length": {strconv.Itoa(len(content))}}

	var urlResp uploadURLResponse
	if err := c.call(ctx, "files.getUploadURLExternal", params, &urlResp); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlResp.UploadURL, bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("upload file: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upload file: unexpected status %d", resp.StatusCode)
	}

	files, err := json.Marshal([]fileRef{{ID: urlResp.FileID, Title: title}})
	if err != nil {
		return fmt.Errorf("upload file: %w", err)
	}
	complete := url.Values{"files": {string(files)}, "channel_id": {channel}}

	var compResp envelope
	return c.call(ctx, "files.completeUploadExternal", complete, &compResp)
}

// Respond posts an ephemeral response to a slash-command response_url.
func (c *Client) Respond(ctx context.Context, responseURL, text string) error {
	body, err := json.Marshal(map[string]string{
		"response_type": "ephemeral",
		"text":          text,
	})
	if err != nil {
		return fmt.Errorf("respond: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, responseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("respond: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("respond: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("respond: unexpected status %d", resp.StatusCode)
	}
	return nil
}
