package playlists

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vitrine-labs/signage-backend/pkg/enums"
)

const (
	defaultImageDurationMS = 10_000
	defaultLinkDurationMS  = 15_000
	// Videos advance on the player's ended event; this is only the timer
	// fallback when no such event arrives.
	defaultVideoDurationMS = 30_000
)

// durationPattern accepts "1m30s", "2m" and "45s". Bare integers are
// handled separately and read as seconds.
var durationPattern = regexp.MustCompile(`^(?:(\d+)m)?(?:(\d+)s)?$`)

// ParseDurationText parses an operator-entered display duration. Accepted
// forms are "90" (seconds), "45s", "2m" and "1m30s".
func ParseDurationText(text string) (time.Duration, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, fmt.Errorf("duration is empty")
	}

	if seconds, err := strconv.Atoi(trimmed); err == nil {
		if seconds <= 0 {
			return 0, fmt.Errorf("duration must be positive")
		}
		return time.Duration(seconds) * time.Second, nil
	}

	match := durationPattern.FindStringSubmatch(trimmed)
	if match == nil || (match[1] == "" && match[2] == "") {
		return 0, fmt.Errorf("unrecognized duration %q", text)
	}

	var total time.Duration
	if match[1] != "" {
		minutes, err := strconv.Atoi(match[1])
		if err != nil {
			return 0, fmt.Errorf("unrecognized duration %q", text)
		}
		total += time.Duration(minutes) * time.Minute
	}
	if match[2] != "" {
		seconds, err := strconv.Atoi(match[2])
		if err != nil {
			return 0, fmt.Errorf("unrecognized duration %q", text)
		}
		total += time.Duration(seconds) * time.Second
	}
	if total <= 0 {
		return 0, fmt.Errorf("duration must be positive")
	}
	return total, nil
}

// kindDefaultMS returns the display duration applied when an item carries no
// explicit duration. displayTimeSeconds only matters for links and comes
// from the joined external link row; zero means the link row was unavailable.
func kindDefaultMS(kind enums.ItemKind, displayTimeSeconds int) int64 {
	switch kind {
	case enums.ItemKindImage:
		return defaultImageDurationMS
	case enums.ItemKindLink:
		if displayTimeSeconds > 0 {
			return int64(displayTimeSeconds) * 1000
		}
		return defaultLinkDurationMS
	case enums.ItemKindVideo:
		return defaultVideoDurationMS
	default:
		return defaultImageDurationMS
	}
}

// resolveDurationMS turns an item's stored duration text into milliseconds.
// Unparseable stored text falls back to the kind default rather than failing
// the read; the write path rejects bad text up front.
func resolveDurationMS(kind enums.ItemKind, durationText *string, displayTimeSeconds int) int64 {
	if durationText != nil {
		if parsed, err := ParseDurationText(*durationText); err == nil {
			return parsed.Milliseconds()
		}
	}
	return kindDefaultMS(kind, displayTimeSeconds)
}
