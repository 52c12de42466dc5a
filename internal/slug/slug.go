package slug

import (
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"gamatrix/internal/logging"
)

// Sentinel is returned when a title cannot be reduced to a usable slug.
const Sentinel = "-"

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	nonSlugChars   = regexp.MustCompile(`[^0-9A-Za-z-]`)
	dashRuns       = regexp.MustCompile(`-+`)

	mu     sync.RWMutex
	logger = logging.NewNop()
)

// SetLogger installs the logger used for slug warnings.
func SetLogger(l *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = logging.NewNop()
	}
	logger = logging.WithComponent(l, "slug")
}

func warn(msg string, attrs ...logging.Attr) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.Warn(msg, logging.Args(attrs...)...)
}

// Make returns a URL-safe slug for title. IGDB expands "/" to the word
// "slash", so we do the same before stripping special characters and
// collapsing whitespace and dash runs.
func Make(title string) string {
	s := strings.ReplaceAll(title, "/", " slash ")
	s = whitespaceRuns.ReplaceAllString(s, "-")
	s = strings.ToLower(nonSlugChars.ReplaceAllString(s, ""))
	s = dashRuns.ReplaceAllString(s, "-")

	if s == "" {
		warn("title yielded an empty slug, using sentinel",
			logging.String("title", title),
			logging.String("slug", Sentinel))
		return Sentinel
	}

	return s
}
