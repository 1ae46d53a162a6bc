// Package mailpit implements the MailSource port against the Mailpit
// capture service's HTTP API.
package mailpit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hollis/phishguard/internal/core"
)

// Client fetches captured messages from a Mailpit instance
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Mailpit client. baseURL points at the API root,
// e.g. http://127.0.0.1:8025/api/v1.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// messageSummary is one entry of the Mailpit message list
type messageSummary struct {
	ID      string    `json:"ID"`
	Subject string    `json:"Subject"`
	From    address   `json:"From"`
	To      []address `json:"To"`
	Created time.Time `json:"Created"`
}

// messageDetail is the full Mailpit message
type messageDetail struct {
	ID          string       `json:"ID"`
	Subject     string       `json:"Subject"`
	From        address      `json:"From"`
	To          []address    `json:"To"`
	Text        string       `json:"Text"`
	HTML        string       `json:"HTML"`
	Created     time.Time    `json:"Created"`
	Attachments []attachment `json:"Attachments"`
}

type address struct {
	Address string `json:"Address"`
	Name    string `json:"Name"`
}

type attachment struct {
	FileName    string `json:"FileName"`
	ContentType string `json:"ContentType"`
	Size        int64  `json:"Size"`
}

// FetchMessages lists up to limit captured messages, each hydrated with
// its full body and authentication headers
func (c *Client) FetchMessages(ctx context.Context, limit int) ([]core.EmailInput, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	var list struct {
		Messages []messageSummary `json:"messages"`
	}
	if err := c.getJSON(ctx, "/messages?"+query.Encode(), &list); err != nil {
		return nil, fmt.Errorf("failed to fetch messages from Mailpit: %w", err)
	}

	emails := make([]core.EmailInput, 0, len(list.Messages))
	for _, summary := range list.Messages {
		email, err := c.FetchMessage(ctx, summary.ID)
		if err != nil {
			c.logger.Warn("Skipping message that could not be fetched",
				zap.String("message_id", summary.ID),
				zap.Error(err))
			continue
		}
		emails = append(emails, *email)
	}
	return emails, nil
}

// FetchMessage retrieves one message with body, attachments and
// authentication headers
func (c *Client) FetchMessage(ctx context.Context, sourceID string) (*core.EmailInput, error) {
	var detail messageDetail
	if err := c.getJSON(ctx, "/message/"+url.PathEscape(sourceID), &detail); err != nil {
		return nil, fmt.Errorf("failed to fetch message %s: %w", sourceID, err)
	}

	var headers map[string][]string
	if err := c.getJSON(ctx, "/message/"+url.PathEscape(sourceID)+"/headers", &headers); err != nil {
		// Headers are only needed for the authentication record; the
		// message is still analyzable without them
		c.logger.Debug("Could not fetch message headers",
			zap.String("message_id", sourceID),
			zap.Error(err))
		headers = nil
	}

	email := parseMessage(detail)
	email.Authentication = extractAuthentication(headers)
	return &email, nil
}

// DeleteMessage removes a message from the capture service
func (c *Client) DeleteMessage(ctx context.Context, sourceID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/message/"+url.PathEscape(sourceID), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete message %s: %w", sourceID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("mailpit returned status %d deleting message %s", resp.StatusCode, sourceID)
	}
	return nil
}

// Healthy reports whether the Mailpit API is reachable
func (c *Client) Healthy(ctx context.Context) bool {
	var list struct {
		Messages []messageSummary `json:"messages"`
	}
	return c.getJSON(ctx, "/messages?limit=1", &list) == nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// parseMessage converts a Mailpit message into the engine's input shape
func parseMessage(detail messageDetail) core.EmailInput {
	subject := detail.Subject
	if subject == "" {
		subject = "(No Subject)"
	}

	from := core.Address{Address: detail.From.Address, Name: detail.From.Name}
	if from.Address == "" {
		from.Address = "unknown@unknown.com"
	}

	to := make([]core.Address, 0, len(detail.To))
	for _, recipient := range detail.To {
		to = append(to, core.Address{Address: recipient.Address, Name: recipient.Name})
	}

	attachments := make([]core.Attachment, 0, len(detail.Attachments))
	for _, att := range detail.Attachments {
		attachments = append(attachments, core.Attachment{
			Filename:    att.FileName,
			ContentType: att.ContentType,
			Size:        att.Size,
		})
	}

	return core.EmailInput{
		SourceID:    detail.ID,
		Subject:     subject,
		From:        from,
		To:          to,
		Body:        core.Body{Text: detail.Text, HTML: detail.HTML},
		Attachments: attachments,
		ReceivedAt:  detail.Created,
	}
}

// extractAuthentication interprets the authentication headers. Absent or
// ambiguous headers yield unknown, never fail.
func extractAuthentication(headers map[string][]string) core.Authentication {
	return core.Authentication{
		DMARC: parseDMARC(firstHeader(headers, "Authentication-Results")),
		SPF:   parseSPF(firstHeader(headers, "Received-SPF")),
		DKIM:  parseDKIM(firstHeader(headers, "DKIM-Signature")),
	}
}

func firstHeader(headers map[string][]string, name string) string {
	if headers == nil {
		return ""
	}
	values := headers[name]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func parseDMARC(authResults string) core.AuthStatus {
	if authResults == "" {
		return core.AuthUnknown
	}
	lower := strings.ToLower(authResults)
	switch {
	case strings.Contains(lower, "dmarc=pass"):
		return core.AuthPass
	case strings.Contains(lower, "dmarc=fail"):
		return core.AuthFail
	default:
		return core.AuthUnknown
	}
}

func parseSPF(spfHeader string) core.AuthStatus {
	if spfHeader == "" {
		return core.AuthUnknown
	}
	lower := strings.ToLower(spfHeader)
	switch {
	case strings.Contains(lower, "pass"):
		return core.AuthPass
	case strings.Contains(lower, "fail"):
		return core.AuthFail
	default:
		return core.AuthUnknown
	}
}

// parseDKIM treats a present signature as a pass; full verification is
// the capture service's job
func parseDKIM(dkimHeader string) core.AuthStatus {
	if dkimHeader == "" {
		return core.AuthUnknown
	}
	return core.AuthPass
}
