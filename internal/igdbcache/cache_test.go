package igdbcache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	doc, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer doc.Close()

	if doc.GameCount() != 0 {
		t.Errorf("expected empty cache, have %d entries", doc.GameCount())
	}
	if doc.Dirty() {
		t.Error("fresh cache should not be dirty")
	}
}

func TestSaveOnlyWhenDirty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	doc, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer doc.Close()

	if err := doc.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("clean cache should not have been written")
	}

	doc.SetGame("steam_100", GameEntry{IGDBID: 7351})
	if !doc.Dirty() {
		t.Fatal("SetGame should mark the document dirty")
	}
	if err := doc.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if doc.Dirty() {
		t.Error("Save should clear the dirty flag")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("cache file missing after save: %v", err)
	}
}

func TestRoundTripPreservesEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	doc, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	info := []GameInfo{{ID: 7351, Name: "Doom", GameModes: []int{1, 2}}}
	modes := []MultiplayerMode{{OnlineMax: 12, OfflineMax: 4}}
	doc.SetGame("steam_379720", GameEntry{
		IGDBID:      7351,
		Info:        &info,
		Multiplayer: &modes,
		MaxPlayers:  12,
	})
	doc.SetAccessToken("tok-1")
	if err := doc.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reloaded, err := Load(path, nil)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	defer reloaded.Close()

	entry, ok := reloaded.Game("steam_379720")
	if !ok {
		t.Fatal("entry missing after reload")
	}
	if entry.IGDBID != 7351 || entry.MaxPlayers != 12 {
		t.Errorf("entry fields wrong: %+v", entry)
	}
	if !entry.InfoSet() || len(*entry.Info) != 1 || (*entry.Info)[0].Name != "Doom" {
		t.Errorf("info payload wrong: %+v", entry.Info)
	}
	if !entry.MultiplayerSet() || (*entry.Multiplayer)[0].OnlineMax != 12 {
		t.Errorf("multiplayer payload wrong: %+v", entry.Multiplayer)
	}
	if reloaded.AccessToken() != "tok-1" {
		t.Errorf("token = %q, want tok-1", reloaded.AccessToken())
	}
}

func TestSentinelDistinctFromNeverLookedUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	doc, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer doc.Close()

	if _, ok := doc.Game("gog_1"); ok {
		t.Fatal("unexpected entry for never-looked-up key")
	}

	doc.SetGame("gog_1", GameEntry{IGDBID: 0})
	entry, ok := doc.Game("gog_1")
	if !ok {
		t.Fatal("sentinel entry should be present")
	}
	if entry.IGDBID != 0 {
		t.Errorf("IGDBID = %d, want sentinel 0", entry.IGDBID)
	}
	if entry.InfoSet() || entry.MultiplayerSet() {
		t.Error("fresh sentinel entry should have no payloads")
	}
}

func TestForeignRootKeysSurviveSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	original := `{"other_tool":{"nested":[1,2,3]},"igdb":{"games":{}}}`
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatalf("seed cache file: %v", err)
	}

	doc, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	doc.SetGame("steam_100", GameEntry{IGDBID: 42})
	if err := doc.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	doc.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved cache: %v", err)
	}
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		t.Fatalf("parse saved cache: %v", err)
	}
	var foreign struct {
		Nested []int `json:"nested"`
	}
	if err := json.Unmarshal(root["other_tool"], &foreign); err != nil {
		t.Fatalf("foreign region mangled: %v", err)
	}
	if len(foreign.Nested) != 3 {
		t.Errorf("foreign data lost: %+v", foreign)
	}
}
