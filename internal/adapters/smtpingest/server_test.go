package smtpingest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hollis/phishguard/internal/adapters/storage"
)

const rawMessage = `From: sender@example.com
To: inbox@corp.com
Subject: Hello
Message-Id: <abc-123@example.com>

Just checking in.
`

func TestIngestMessage(t *testing.T) {
	store := storage.NewMemoryStore(zap.NewNop())
	server := NewServer(store, zap.NewNop(), "127.0.0.1:0")

	require.NoError(t, server.ingestMessage(strings.NewReader(rawMessage)))

	stored, err := store.GetEmailBySourceID(context.Background(), "<abc-123@example.com>")
	require.NoError(t, err)
	assert.Equal(t, "Hello", stored.Email.Subject)
	assert.Equal(t, "sender@example.com", stored.Email.From.Address)
	assert.False(t, stored.Analyzed)
}

func TestIngestMessage_GeneratesSourceID(t *testing.T) {
	store := storage.NewMemoryStore(zap.NewNop())
	server := NewServer(store, zap.NewNop(), "127.0.0.1:0")

	raw := "From: a@b.com\nSubject: no message id\n\nbody\n"
	require.NoError(t, server.ingestMessage(strings.NewReader(raw)))

	emails, total, err := store.ListEmails(context.Background(), nil, 0, 10)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.NotEmpty(t, emails[0].Email.SourceID)
}

func TestIngestMessage_Malformed(t *testing.T) {
	store := storage.NewMemoryStore(zap.NewNop())
	server := NewServer(store, zap.NewNop(), "127.0.0.1:0")

	assert.Error(t, server.ingestMessage(strings.NewReader("not an email at all")))
}
