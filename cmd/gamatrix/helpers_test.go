package main

import (
	"bytes"
	"strings"
	"testing"

	"gamatrix/internal/reconcile"
)

func TestPlayersLabel(t *testing.T) {
	cases := []struct {
		game reconcile.Game
		want string
	}{
		{reconcile.Game{MaxPlayers: 4}, "4"},
		{reconcile.Game{Multiplayer: true}, "2+"},
		{reconcile.Game{Unclassified: true}, "?"},
	}
	for _, tc := range cases {
		if got := playersLabel(&tc.game); got != tc.want {
			t.Errorf("playersLabel(%+v) = %q, want %q", tc.game, got, tc.want)
		}
	}
}

func TestRenderComparisonPlain(t *testing.T) {
	result := &reconcile.Result{
		Caption: "1 games in common between alice, bob",
		Games: []*reconcile.Game{
			{Title: "Foo", Platforms: []string{"steam", "gog"}, MaxPlayers: 4},
		},
	}

	var out bytes.Buffer
	renderComparison(&out, result, false)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("output = %q, want caption plus one row", out.String())
	}
	if lines[0] != result.Caption {
		t.Errorf("caption line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "Foo") || !strings.Contains(lines[1], "gog, steam") {
		t.Errorf("row = %q", lines[1])
	}
}

func TestRenderComparisonTable(t *testing.T) {
	result := &reconcile.Result{
		Caption: "1 games owned by alice",
		Games: []*reconcile.Game{
			{Title: "Foo", Platforms: []string{"steam"}, MaxPlayers: 4},
		},
	}

	var out bytes.Buffer
	renderComparison(&out, result, true)

	if !strings.Contains(out.String(), "Title") || !strings.Contains(out.String(), "Foo") {
		t.Errorf("table output missing content: %q", out.String())
	}
}
