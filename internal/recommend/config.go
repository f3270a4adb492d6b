package recommend

import (
	"fmt"
	"strings"
)

// ScoringPolicy weights each peer's contribution in collaborative filtering.
type ScoringPolicy string

const (
	// ScoringRaw counts one per peer that bought the candidate.
	ScoringRaw ScoringPolicy = "raw"
	// ScoringJaccard weights a peer by |A ∩ B| / |A ∪ B| over purchased products.
	ScoringJaccard ScoringPolicy = "jaccard"
)

func ParseScoringPolicy(s string) (ScoringPolicy, error) {
	switch ScoringPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScoringRaw:
		return ScoringRaw, nil
	case ScoringJaccard:
		return ScoringJaccard, nil
	default:
		return "", fmt.Errorf("unknown collaborative scoring policy %q", s)
	}
}

type Config struct {
	DefaultLimit         int
	MaxLimit             int
	CollaborativeScoring ScoringPolicy
}

func DefaultConfig() Config {
	return Config{
		DefaultLimit:         5,
		MaxLimit:             100,
		CollaborativeScoring: ScoringRaw,
	}
}

func (c Config) Validate() error {
	if c.DefaultLimit <= 0 {
		return fmt.Errorf("default limit must be positive, got %d", c.DefaultLimit)
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("max limit %d is below default limit %d", c.MaxLimit, c.DefaultLimit)
	}
	if _, err := ParseScoringPolicy(string(c.CollaborativeScoring)); err != nil {
		return err
	}
	return nil
}

// Limit resolves a caller limit: non-positive means the default, anything
// above the cap is clamped.
func (c Config) Limit(limit int) int {
	if limit <= 0 {
		limit = c.DefaultLimit
	}
	if c.MaxLimit > 0 && limit > c.MaxLimit {
		limit = c.MaxLimit
	}
	return limit
}
