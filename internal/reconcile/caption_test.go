package reconcile

import "testing"

func TestCaption(t *testing.T) {
	e := New(testConfig(), nil, nil)

	cases := []struct {
		name  string
		opts  Options
		count int
		want  string
	}{
		{
			name:  "common",
			opts:  Options{UserIDs: []int64{1, 2}},
			count: 12,
			want:  "12 games in common between alice, bob",
		},
		{
			name:  "single user",
			opts:  Options{UserIDs: []int64{1}},
			count: 3,
			want:  "3 games owned by alice",
		},
		{
			name:  "all games",
			opts:  Options{UserIDs: []int64{1, 2}, AllGames: true},
			count: 250,
			want:  "250 total games owned by alice, bob",
		},
		{
			name:  "exclusive",
			opts:  Options{UserIDs: []int64{1}, Exclusive: true},
			count: 5,
			want:  "5 games owned by alice and not owned by bob, carol",
		},
		{
			name:  "platforms excluded",
			opts:  Options{UserIDs: []int64{1, 2}, ExcludePlatforms: []string{"steam", "epic"}},
			count: 7,
			want:  "7 games in common between alice, bob (Steam, Epic excluded)",
		},
		{
			name:  "installed only",
			opts:  Options{UserIDs: []int64{1, 2}, InstalledOnly: true},
			count: 4,
			want:  "4 games in common between alice, bob (installed only)",
		},
		{
			name:  "installed ignored in all-games mode",
			opts:  Options{UserIDs: []int64{1}, AllGames: true, InstalledOnly: true, Exclusive: true},
			count: 9,
			want:  "9 total games owned by alice",
		},
		{
			name:  "unknown user falls back to id",
			opts:  Options{UserIDs: []int64{1, 42}},
			count: 1,
			want:  "1 games in common between alice, 42",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := e.caption(tc.opts, tc.count); got != tc.want {
				t.Errorf("caption = %q, want %q", got, tc.want)
			}
		})
	}
}
