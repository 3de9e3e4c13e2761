package vnt

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// newTestClient spins up a fake API server and a client pointed at it.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, "en")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestProjectID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/projects.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]Project{
			{ID: 7, Codename: "alpha"},
			{ID: 42, Codename: "tsukihime"},
		})
	})
	client := newTestClient(t, mux)

	id, err := client.ProjectID(context.Background(), "tsukihime")
	if err != nil {
		t.Fatalf("ProjectID failed: %v", err)
	}
	if id != 42 {
		t.Errorf("expected project ID 42, got %d", id)
	}

	_, err = client.ProjectID(context.Background(), "nope")
	if !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestScriptLinesFiltersLanguage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/project_files/3/lines.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]Line{
			{
				ID:            100,
				LineNumber:    0,
				CharacterName: "Alice",
				Original:      "こんにちは",
				Translations: []TranslationEntry{
					{Translation: "Bonjour", Language: Language{Code: "fr"}},
					{Translation: "Hello", Language: Language{Code: "en"}, CreatedBy: Author{Username: "trad1"}},
					{Translation: "Hi", Language: Language{Code: "en"}, CreatedBy: Author{Username: "trad2"}},
				},
			},
		})
	})
	client := newTestClient(t, mux)

	lines, err := client.ScriptLines(context.Background(), 3)
	if err != nil {
		t.Fatalf("ScriptLines failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}

	got := lines[0].Translations
	if len(got) != 2 {
		t.Fatalf("expected 2 English entries after filtering, got %d", len(got))
	}
	if got[0].Translation != "Hello" || got[1].Translation != "Hi" {
		t.Errorf("history order not preserved: %+v", got)
	}
}

func TestSubmitTranslationsPayload(t *testing.T) {
	var received []map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/translations.json", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})
	client := newTestClient(t, mux)

	updates := []Update{
		{LineID: 100, Translation: "Hello"},
		{LineID: 101, Translation: "Goodbye"},
	}
	if err := client.SubmitTranslations(context.Background(), updates); err != nil {
		t.Fatalf("SubmitTranslations failed: %v", err)
	}

	if len(received) != 2 {
		t.Fatalf("expected 2 upserts, got %d", len(received))
	}
	first := received[0]
	if first["translation"] != "Hello" {
		t.Errorf("unexpected translation: %v", first["translation"])
	}
	line, ok := first["line"].(map[string]any)
	if !ok || line["id"].(float64) != 100 {
		t.Errorf("unexpected line ref: %v", first["line"])
	}
	lang, ok := first["language"].(map[string]any)
	if !ok || lang["code"] != "en" {
		t.Errorf("unexpected language: %v", first["language"])
	}
}

func TestNetrcCredentials(t *testing.T) {
	var gotUser, gotPass string
	var gotAuth bool
	mux := http.NewServeMux()
	mux.HandleFunc("/projects.json", func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, gotAuth = r.BasicAuth()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]Project{{ID: 1, Codename: "proj"}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	// Point HOME at a fake netrc keyed by the test server's host.
	home := t.TempDir()
	t.Setenv("HOME", home)
	netrc := "machine 127.0.0.1 login translator password hunter2\n"
	if err := os.WriteFile(filepath.Join(home, ".netrc"), []byte(netrc), 0600); err != nil {
		t.Fatalf("failed to write netrc: %v", err)
	}

	client, err := NewClient(srv.URL, "en")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if _, err := client.ProjectID(context.Background(), "proj"); err != nil {
		t.Fatalf("ProjectID failed: %v", err)
	}

	if !gotAuth {
		t.Fatal("expected basic auth from netrc")
	}
	if gotUser != "translator" || gotPass != "hunter2" {
		t.Errorf("unexpected credentials: %s / %s", gotUser, gotPass)
	}
}

func TestMissingNetrcIsNotFatal(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, err := NewClient("https://example.test/api/v1", "en"); err != nil {
		t.Errorf("NewClient must tolerate a missing netrc: %v", err)
	}
}

func TestAPIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/projects.json", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "server on fire", http.StatusInternalServerError)
	})
	client := newTestClient(t, mux)

	_, err := client.ProjectID(context.Background(), "x")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", apiErr.Status)
	}
}
