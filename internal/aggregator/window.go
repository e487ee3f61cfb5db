package aggregator

import (
	"fmt"
	"time"

	"walrus-backend/internal/models"
)

// DefaultWindow is used by the API when the caller omits a window
const DefaultWindow = "24h"

var windows = map[string]time.Duration{
	"1h":  time.Hour,
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
}

// ParseWindow maps a window token to its duration. Only 1h, 24h, 7d and 30d are accepted.
func ParseWindow(token string) (time.Duration, error) {
	d, ok := windows[token]
	if !ok {
		return 0, fmt.Errorf("%w: unsupported duration %q (want 1h, 24h, 7d or 30d)", models.ErrInvalidArgument, token)
	}
	return d, nil
}
