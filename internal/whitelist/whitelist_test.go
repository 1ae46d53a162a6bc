package whitelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestChecker_IsTrusted(t *testing.T) {
	checker := NewChecker([]string{" Corp.Example.COM ", "", "partner.io"}, zap.NewNop())

	tests := []struct {
		name    string
		address string
		trusted bool
	}{
		{name: "exact domain", address: "it@corp.example.com", trusted: true},
		{name: "case insensitive", address: "IT@CORP.EXAMPLE.COM", trusted: true},
		{name: "second domain", address: "dev@partner.io", trusted: true},
		{name: "subdomain is not trusted", address: "it@mail.corp.example.com", trusted: false},
		{name: "other domain", address: "it@evil.com", trusted: false},
		{name: "no at sign", address: "corp.example.com", trusted: false},
		{name: "two at signs", address: "a@b@corp.example.com", trusted: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.trusted, checker.IsTrusted(tt.address))
		})
	}
}

func TestChecker_EmptyList(t *testing.T) {
	checker := NewChecker(nil, zap.NewNop())
	assert.False(t, checker.IsTrusted("anyone@anywhere.com"))
}
