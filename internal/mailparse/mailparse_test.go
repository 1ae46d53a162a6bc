package mailparse

import (
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollis/phishguard/internal/core"
)

const plainMessage = `From: Alice <alice@example.com>
To: bob@corp.com
Subject: Quarterly numbers
Date: Mon, 12 Jan 2026 10:30:00 +0000
Authentication-Results: mx.corp.com; dmarc=fail header.from=example.com
Received-SPF: Fail (sender IP not authorized)

The numbers are attached in the portal.
`

const multipartMessage = `From: mallory@evil.tk
To: victim@corp.com
Subject: Invoice overdue
Content-Type: multipart/mixed; boundary="BOUNDARY"

--BOUNDARY
Content-Type: text/plain; charset=utf-8

Pay the attached invoice immediately.
--BOUNDARY
Content-Type: text/html

<p>ignored html part</p>
--BOUNDARY
Content-Type: application/octet-stream
Content-Disposition: attachment; filename="invoice.exe"

MZfakebinarycontent
--BOUNDARY--
`

func parse(t *testing.T, raw string) *mail.Message {
	t.Helper()
	msg, err := mail.ReadMessage(strings.NewReader(raw))
	require.NoError(t, err)
	return msg
}

func TestFromMessage_Nil(t *testing.T) {
	_, err := FromMessage(nil)
	assert.ErrorIs(t, err, core.ErrMalformedInput)
}

func TestFromMessage_Plain(t *testing.T) {
	email, err := FromMessage(parse(t, plainMessage))
	require.NoError(t, err)

	assert.Equal(t, "Quarterly numbers", email.Subject)
	assert.Equal(t, "alice@example.com", email.From.Address)
	assert.Equal(t, "Alice", email.From.Name)
	require.Len(t, email.To, 1)
	assert.Equal(t, "bob@corp.com", email.To[0].Address)
	assert.Contains(t, email.Body.Text, "The numbers are attached")
	assert.Empty(t, email.Attachments)
	assert.Equal(t, 2026, email.ReceivedAt.Year())

	assert.Equal(t, core.AuthFail, email.Authentication.DMARC)
	assert.Equal(t, core.AuthFail, email.Authentication.SPF)
	assert.Equal(t, core.AuthUnknown, email.Authentication.DKIM)
}

func TestFromMessage_MissingFrom(t *testing.T) {
	raw := "Subject: no sender\n\nbody\n"
	email, err := FromMessage(parse(t, raw))
	require.NoError(t, err)
	assert.Equal(t, "unknown@unknown.com", email.From.Address)
}

func TestFromMessage_Multipart(t *testing.T) {
	email, err := FromMessage(parse(t, multipartMessage))
	require.NoError(t, err)

	assert.Equal(t, "Pay the attached invoice immediately.", email.Body.Text)
	assert.NotContains(t, email.Body.Text, "ignored html part")

	require.Len(t, email.Attachments, 1)
	assert.Equal(t, "invoice.exe", email.Attachments[0].Filename)
	assert.Equal(t, "application/octet-stream", email.Attachments[0].ContentType)
	assert.Greater(t, email.Attachments[0].Size, int64(0))
}

func TestAuthenticationFromHeader(t *testing.T) {
	headers := map[string]string{
		"Authentication-Results": "mx; dmarc=pass",
		"Received-SPF":           "Neutral",
		"DKIM-Signature":         "v=1; a=rsa-sha256",
	}
	auth := AuthenticationFromHeader(func(name string) string { return headers[name] })

	assert.Equal(t, core.AuthPass, auth.DMARC)
	assert.Equal(t, core.AuthUnknown, auth.SPF)
	assert.Equal(t, core.AuthPass, auth.DKIM)

	empty := AuthenticationFromHeader(func(string) string { return "" })
	assert.Equal(t, core.AuthUnknown, empty.DMARC)
	assert.Equal(t, core.AuthUnknown, empty.SPF)
	assert.Equal(t, core.AuthUnknown, empty.DKIM)
}
