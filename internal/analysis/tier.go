package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// Tier selects how deep an analysis goes.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

var ErrInvalidTier = errors.New("invalid tier")

// ParseTier accepts "free" or "premium", case-insensitively.
func ParseTier(raw string) (Tier, error) {
	switch Tier(strings.ToLower(strings.TrimSpace(raw))) {
	case TierFree:
		return TierFree, nil
	case TierPremium:
		return TierPremium, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTier, raw)
	}
}

// TierFor maps the subscriber flag to a tier.
func TierFor(premium bool) Tier {
	if premium {
		return TierPremium
	}
	return TierFree
}
