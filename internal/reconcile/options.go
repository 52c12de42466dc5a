package reconcile

// Options captures one comparison request. The zero value compares nobody
// and keeps the strictest filters; callers fill in what they need.
type Options struct {
	// UserIDs are the users whose libraries are compared.
	UserIDs []int64

	// IncludeSinglePlayer keeps titles classified as single-player.
	IncludeSinglePlayer bool

	// InstalledOnly keeps only titles installed by every compared user.
	InstalledOnly bool

	// Exclusive removes titles owned by anyone outside UserIDs, instead of
	// requiring the standard all-must-own match.
	Exclusive bool

	// AllGames lists everything the compared users own; ownership filters
	// are skipped and only the single-player filter still applies.
	AllGames bool

	// ExcludePlatforms drops release keys from these storefronts at ingest.
	ExcludePlatforms []string

	// KeepUnclassified controls the ambiguous case of titles whose
	// classification never resolved (no override, no IGDB data). When
	// true they survive the single-player filter; when false they are
	// dropped with it. Historical revisions of this logic disagreed, so
	// both behaviors are supported.
	KeepUnclassified bool

	// RefreshCache re-attempts cache entries with incomplete info.
	RefreshCache bool
}

func (o Options) comparesUser(id int64) bool {
	for _, uid := range o.UserIDs {
		if uid == id {
			return true
		}
	}
	return false
}

func (o Options) excludesPlatform(platform string) bool {
	for _, p := range o.ExcludePlatforms {
		if p == platform {
			return true
		}
	}
	return false
}
