package browser

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// chromeVersions lists recent stable Chrome releases. Chrome froze the minor
// components of the UA version years ago, so only the major moves.
var chromeVersions = []string{
	"136.0.0.0",
	"137.0.0.0",
	"138.0.0.0",
	"139.0.0.0",
}

var uaPlatforms = []string{
	"Windows NT 10.0; Win64; x64",
	"Macintosh; Intel Mac OS X 10_15_7",
	"X11; Linux x86_64",
}

// RandomUserAgent returns a realistic desktop Chrome user agent. A nil rng
// falls back to a time-seeded source.
func RandomUserAgent(rng *rand.Rand) string {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return fmt.Sprintf("Mozilla/5.0 (%s) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%s Safari/537.36",
		uaPlatforms[rng.Intn(len(uaPlatforms))],
		chromeVersions[rng.Intn(len(chromeVersions))])
}

// PlatformFor maps a user agent onto the navigator.platform value a real
// browser with that agent would report.
func PlatformFor(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "Windows"):
		return "Win32"
	case strings.Contains(userAgent, "Mac OS X"):
		return "MacIntel"
	default:
		return "Linux x86_64"
	}
}
