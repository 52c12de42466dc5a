package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gamatrix/internal/config"
	"gamatrix/internal/reconcile"
	"gamatrix/internal/testsupport"
)

func mustCIDRs(t *testing.T, cidrs ...string) []*net.IPNet {
	t.Helper()
	var networks []*net.IPNet
	for _, c := range cidrs {
		_, network, err := net.ParseCIDR(c)
		if err != nil {
			t.Fatalf("parse cidr %q: %v", c, err)
		}
		networks = append(networks, network)
	}
	return networks
}

func testServer(t *testing.T) (*Server, *config.Config) {
	t.Helper()
	dbDir := t.TempDir()
	cfg := &config.Config{
		Paths: config.Paths{DBDir: dbDir},
		Users: []config.User{
			{ID: 1, Username: "alice", DB: "alice.db", Networks: mustCIDRs(t, "192.0.2.0/24")},
			{ID: 2, Username: "bob", DB: "bob.db", Networks: mustCIDRs(t, "198.51.100.0/24")},
		},
		Metadata: map[string]config.Override{},
	}
	engine := reconcile.New(cfg, nil, nil)
	return New(cfg, engine, nil, nil), cfg
}

func doRequest(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	if req.RemoteAddr == "" {
		req.RemoteAddr = "192.0.2.10:1234"
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestUsersEndpoint(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(srv, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Users []struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
		} `json:"users"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Users) != 2 || resp.Users[0].Username != "alice" {
		t.Errorf("users = %+v", resp.Users)
	}
}

func TestCompareEndpoint(t *testing.T) {
	srv, cfg := testServer(t)
	testsupport.WriteGalaxyDB(t, filepath.Join(cfg.Paths.DBDir, "alice.db"), 1,
		[]testsupport.GalaxyGame{
			{ReleaseKeys: []string{"steam_100"}, Title: "Foo"},
			{ReleaseKeys: []string{"steam_300"}, Title: "Bar"},
		})
	testsupport.WriteGalaxyDB(t, filepath.Join(cfg.Paths.DBDir, "bob.db"), 2,
		[]testsupport.GalaxyGame{
			{ReleaseKeys: []string{"steam_100"}, Title: "Foo"},
		})

	body := `{"user_ids":[1,2],"include_single_player":true,"keep_unclassified":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/compare", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := doRequest(srv, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var result reconcile.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(result.Games) != 1 || result.Games[0].Title != "Foo" {
		t.Errorf("games = %+v, want only the shared title Foo", result.Games)
	}
	if result.Caption != "1 games in common between alice, bob" {
		t.Errorf("caption = %q", result.Caption)
	}
}

func TestCompareUnknownUser(t *testing.T) {
	srv, _ := testServer(t)

	body := `{"user_ids":[99]}`
	req := httptest.NewRequest(http.MethodPost, "/api/compare", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	if rec := doRequest(srv, req); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAllowedNetworksRejectsOutsider(t *testing.T) {
	srv, cfg := testServer(t)
	cfg.Server.AllowedNetworks = mustCIDRs(t, "192.0.2.0/24")

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.RemoteAddr = "203.0.113.5:1234"
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func uploadRequest(t *testing.T, filename string, contents []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(contents); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func sqlitePayload(t *testing.T) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payload.db")
	testsupport.WriteGalaxyDB(t, path, 1, nil)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read payload: %v", err)
	}
	return data
}

func TestUploadReplacesDatabase(t *testing.T) {
	srv, cfg := testServer(t)
	target := filepath.Join(cfg.Paths.DBDir, "alice.db")
	if err := os.WriteFile(target, []byte("old"), 0o644); err != nil {
		t.Fatalf("seed old db: %v", err)
	}

	payload := sqlitePayload(t)
	rec := doRequest(srv, uploadRequest(t, "galaxy-2.0.db", payload))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	written, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read uploaded db: %v", err)
	}
	if !bytes.Equal(written, payload) {
		t.Error("uploaded database content mismatch")
	}
	backup, err := os.ReadFile(target + ".bak")
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(backup) != "old" {
		t.Errorf("backup = %q, want previous contents", backup)
	}
}

func TestUploadRejectsNonSQLite(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(srv, uploadRequest(t, "galaxy-2.0.db", []byte("not a database")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUploadRejectsWrongExtension(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(srv, uploadRequest(t, "galaxy.exe", sqlitePayload(t)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUploadUnknownAddress(t *testing.T) {
	srv, _ := testServer(t)

	req := uploadRequest(t, "galaxy-2.0.db", sqlitePayload(t))
	req.RemoteAddr = "203.0.113.5:1234"
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}
