package reconcile

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// caption builds the one-line summary shown above a result list, e.g.
// "12 games in common between alice, bob (installed only)".
func (e *Engine) caption(opts Options, count int) string {
	names := e.cfg.Usernames(opts.UserIDs)

	var middle string
	switch {
	case opts.AllGames:
		middle = "total games owned by"
	case len(opts.UserIDs) == 1:
		middle = "games owned by"
	default:
		middle = "games in common between"
	}

	parts := make([]string, 0, len(opts.UserIDs))
	for _, uid := range opts.UserIDs {
		parts = append(parts, names[uid])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d %s %s", count, middle, strings.Join(parts, ", "))

	if opts.Exclusive && !opts.AllGames {
		excluded := e.excludedUserIDs(opts)
		if len(excluded) > 0 {
			excludedNames := e.cfg.Usernames(excluded)
			other := make([]string, 0, len(excluded))
			for _, uid := range excluded {
				other = append(other, excludedNames[uid])
			}
			fmt.Fprintf(&b, " and not owned by %s", strings.Join(other, ", "))
		}
	}

	if len(opts.ExcludePlatforms) > 0 {
		pretty := make([]string, 0, len(opts.ExcludePlatforms))
		for _, p := range opts.ExcludePlatforms {
			pretty = append(pretty, titleCaser.String(p))
		}
		fmt.Fprintf(&b, " (%s excluded)", strings.Join(pretty, ", "))
	}

	if opts.InstalledOnly && !opts.AllGames {
		b.WriteString(" (installed only)")
	}

	return b.String()
}
