// Package mailparse converts raw RFC 5322 messages into the engine's
// EmailInput shape: plain-text extraction from multipart bodies,
// attachment metadata and authentication header interpretation.
package mailparse

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/hollis/phishguard/internal/core"
)

// FromMessage converts a parsed mail message into an EmailInput
func FromMessage(msg *mail.Message) (*core.EmailInput, error) {
	if msg == nil {
		return nil, core.ErrMalformedInput
	}

	from := core.Address{Address: "unknown@unknown.com"}
	if parsed, err := mail.ParseAddress(msg.Header.Get("From")); err == nil {
		from = core.Address{Address: parsed.Address, Name: parsed.Name}
	}

	to := []core.Address{}
	if parsed, err := msg.Header.AddressList("To"); err == nil {
		for _, addr := range parsed {
			to = append(to, core.Address{Address: addr.Address, Name: addr.Name})
		}
	}

	text, attachments, err := extractContent(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to extract message content: %w", err)
	}

	receivedAt := time.Now().UTC()
	if date, err := msg.Header.Date(); err == nil {
		receivedAt = date
	}

	return &core.EmailInput{
		Subject:        msg.Header.Get("Subject"),
		From:           from,
		To:             to,
		Body:           core.Body{Text: text},
		Attachments:    attachments,
		Authentication: AuthenticationFromHeader(msg.Header.Get),
		ReceivedAt:     receivedAt,
	}, nil
}

// AuthenticationFromHeader interprets the authentication headers of a
// message. Absent or ambiguous headers yield unknown, never fail.
func AuthenticationFromHeader(get func(name string) string) core.Authentication {
	return core.Authentication{
		DMARC: dmarcStatus(get("Authentication-Results")),
		SPF:   spfStatus(get("Received-SPF")),
		DKIM:  dkimStatus(get("DKIM-Signature")),
	}
}

func dmarcStatus(authResults string) core.AuthStatus {
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

func spfStatus(spfHeader string) core.AuthStatus {
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

// dkimStatus treats a present signature as a pass; actual signature
// verification belongs to the mail transport, not this engine
func dkimStatus(dkimHeader string) core.AuthStatus {
	if dkimHeader == "" {
		return core.AuthUnknown
	}
	return core.AuthPass
}
