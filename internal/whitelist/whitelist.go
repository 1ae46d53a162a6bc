package whitelist

import (
	"strings"

	"go.uber.org/zap"
)

// Checker answers whether a sender's domain is on the trusted list.
// Trusted senders still go through the framework analyzers (they are
// cheap and pure) but skip the narrative generation call.
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a checker over the given trusted domains
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := make([]string, 0, len(domains))
	for _, domain := range domains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain != "" {
			normalized = append(normalized, domain)
		}
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized trusted-domain checker", zap.Strings("domains", normalized))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// IsTrusted reports whether the address's domain is trusted
func (c *Checker) IsTrusted(address string) bool {
	if len(c.domains) == 0 {
		return false
	}

	parts := strings.Split(address, "@")
	if len(parts) != 2 {
		return false
	}
	domain := strings.ToLower(parts[1])

	for _, trusted := range c.domains {
		if trusted == domain {
			if c.logger != nil {
				c.logger.Debug("Sender domain is trusted", zap.String("domain", domain))
			}
			return true
		}
	}
	return false
}
