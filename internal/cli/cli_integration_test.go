package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"infini-cli/internal/model"
)

// fakeGateway is an in-memory stand-in for the authoring gateway, covering
// the endpoints the CLI exercises end to end.
type fakeGateway struct {
	mu       sync.Mutex
	token    string
	projects []model.Project
	sections map[string][]model.Section // by project ID
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{token: "tok-abc", sections: map[string][]model.Section{}}
}

func (g *fakeGateway) handler() http.Handler {
	mux := http.NewServeMux()

	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"token": g.token,
			"user":  model.User{ID: "u1", Email: "ada@example.com", Name: "Ada"},
		})
	})

	auth := func(w http.ResponseWriter, r *http.Request) bool {
		if r.Header.Get("Authorization") != "Bearer "+g.token {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "missing token"})
			return false
		}
		return true
	}

	mux.HandleFunc("GET /projects", func(w http.ResponseWriter, r *http.Request) {
		if !auth(w, r) {
			return
		}
		g.mu.Lock()
		defer g.mu.Unlock()
		writeJSON(w, map[string]any{"projects": g.projects})
	})

	mux.HandleFunc("POST /projects", func(w http.ResponseWriter, r *http.Request) {
		if !auth(w, r) {
			return
		}
		var in struct {
			Title        string             `json:"title"`
			Topic        string             `json:"topic"`
			DocumentType model.DocumentType `json:"document_type"`
			Outline      []string           `json:"outline"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)

		g.mu.Lock()
		defer g.mu.Unlock()
		p := model.Project{ID: "p1", Title: in.Title, Topic: in.Topic, DocumentType: in.DocumentType}
		g.projects = append(g.projects, p)
		var secs []model.Section
		for i, title := range in.Outline {
			secs = append(secs, model.Section{
				ID: "s" + string(rune('1'+i)), ProjectID: p.ID, OrderIndex: i, Title: title,
			})
		}
		g.sections[p.ID] = secs
		writeJSON(w, map[string]any{"project": p})
	})

	mux.HandleFunc("GET /projects/{id}/sections", func(w http.ResponseWriter, r *http.Request) {
		if !auth(w, r) {
			return
		}
		g.mu.Lock()
		defer g.mu.Unlock()
		writeJSON(w, map[string]any{"sections": g.sections[r.PathValue("id")]})
	})

	mux.HandleFunc("POST /projects/{id}/generate", func(w http.ResponseWriter, r *http.Request) {
		if !auth(w, r) {
			return
		}
		g.mu.Lock()
		defer g.mu.Unlock()
		secs := g.sections[r.PathValue("id")]
		for i := range secs {
			content := "Generated prose for " + secs[i].Title + "."
			secs[i].Content = &content
		}
		g.sections[r.PathValue("id")] = secs
		writeJSON(w, map[string]any{"sections": secs})
	})

	mux.HandleFunc("POST /sections/{id}/refine", func(w http.ResponseWriter, r *http.Request) {
		if !auth(w, r) {
			return
		}
		writeJSON(w, map[string]string{"content": "Refined prose."})
	})

	mux.HandleFunc("GET /projects/{id}/export", func(w http.ResponseWriter, r *http.Request) {
		if !auth(w, r) {
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("PK-artifact-bytes"))
	})

	return mux
}

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()
	cmd := NewRootCmd()
	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func decodeData(t *testing.T, out []byte) any {
	t.Helper()
	var env map[string]any
	if err := json.Unmarshal(out, &env); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	return env["data"]
}

func setupGateway(t *testing.T) *fakeGateway {
	t.Helper()
	gw := newFakeGateway()
	srv := httptest.NewServer(gw.handler())
	t.Cleanup(srv.Close)
	t.Setenv("INFINI_API_BASE", srv.URL)
	t.Setenv("INFINI_CONFIG_DIR", t.TempDir())
	return gw
}

func TestCLI_LoginPersistsSessionForLaterCommands(t *testing.T) {
	setupGateway(t)

	out, _, err := runCLI(t, []string{"login", "--email", "ada@example.com", "--password", "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	user, _ := decodeData(t, out).(map[string]any)
	if user["email"] != "ada@example.com" {
		t.Fatalf("unexpected login output: %s", out)
	}

	out, _, err = runCLI(t, []string{"whoami"})
	if err != nil {
		t.Fatalf("whoami after login: %v", err)
	}
	user, _ = decodeData(t, out).(map[string]any)
	if user["name"] != "Ada" {
		t.Fatalf("unexpected whoami output: %s", out)
	}
}

func TestCLI_WhoamiWithoutSessionFails(t *testing.T) {
	setupGateway(t)

	_, stderr, err := runCLI(t, []string{"whoami"})
	if err == nil {
		t.Fatalf("expected whoami to fail without a session")
	}
	if !strings.Contains(string(stderr), "not logged in") {
		t.Fatalf("unexpected stderr: %s", stderr)
	}
}

func TestCLI_CreateThenListTriggersInitialGeneration(t *testing.T) {
	gw := setupGateway(t)

	if _, _, err := runCLI(t, []string{"login", "--email", "ada@example.com", "--password", "pw"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	out, _, err := runCLI(t, []string{"projects", "create", "--topic", "EV market analysis 2025", "--section", "Market Size", "--section", "Key Players"})
	if err != nil {
		t.Fatalf("projects create: %v", err)
	}
	p, _ := decodeData(t, out).(map[string]any)
	if p["title"] != "EV market analysis 2025" {
		t.Fatalf("unexpected project title: %s", out)
	}

	// Fresh project, no content: listing runs the one-shot bulk generation.
	out, _, err = runCLI(t, []string{"sections", "list", "p1"})
	if err != nil {
		t.Fatalf("sections list: %v", err)
	}
	secs, _ := decodeData(t, out).([]any)
	if len(secs) != 2 {
		t.Fatalf("expected 2 sections, got %s", out)
	}
	first, _ := secs[0].(map[string]any)
	if c, _ := first["content"].(string); !strings.Contains(c, "Generated prose") {
		t.Fatalf("expected generated content, got %s", out)
	}

	gw.mu.Lock()
	stored := gw.sections["p1"]
	gw.mu.Unlock()
	if stored[0].Content == nil {
		t.Fatalf("expected the gateway to have generated content")
	}
}

func TestCLI_RefineBlankPromptRejectedWithoutCall(t *testing.T) {
	setupGateway(t)

	if _, _, err := runCLI(t, []string{"login", "--email", "ada@example.com", "--password", "pw"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, _, err := runCLI(t, []string{"projects", "create", "--topic", "T", "--section", "Intro"}); err != nil {
		t.Fatalf("projects create: %v", err)
	}
	if _, _, err := runCLI(t, []string{"sections", "list", "p1"}); err != nil {
		t.Fatalf("sections list: %v", err)
	}

	_, stderr, err := runCLI(t, []string{"sections", "refine", "s1", "--project", "p1", "--prompt", "   "})
	if err == nil {
		t.Fatalf("expected a blank prompt to fail")
	}
	if !strings.Contains(string(stderr), "refine instruction is empty") {
		t.Fatalf("unexpected stderr: %s", stderr)
	}
}

func TestCLI_ExportWritesArtifact(t *testing.T) {
	setupGateway(t)
	dir := t.TempDir()

	if _, _, err := runCLI(t, []string{"login", "--email", "ada@example.com", "--password", "pw"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, _, err := runCLI(t, []string{"projects", "create", "--topic", "EV market 2025", "--section", "Intro"}); err != nil {
		t.Fatalf("projects create: %v", err)
	}

	out, _, err := runCLI(t, []string{"export", "p1", "--out", dir})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	res, _ := decodeData(t, out).(map[string]any)
	path, _ := res["path"].(string)
	if filepath.Base(path) != "EV market 2025.docx" {
		t.Fatalf("unexpected artifact name: %q", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(b) != "PK-artifact-bytes" {
		t.Fatalf("unexpected artifact bytes: %q", b)
	}
}

func TestCLI_DocsListsAndRendersTopics(t *testing.T) {
	out, _, err := runCLI(t, []string{"docs"})
	if err != nil {
		t.Fatalf("docs: %v", err)
	}
	env, _ := decodeData(t, out).(map[string]any)
	topics, _ := env["topics"].([]any)
	if len(topics) == 0 {
		t.Fatalf("expected at least one docs topic")
	}

	out, _, err = runCLI(t, []string{"docs", "workflow", "--raw"})
	if err != nil {
		t.Fatalf("docs workflow: %v", err)
	}
	if !strings.Contains(string(out), "authoring workflow") {
		t.Fatalf("unexpected docs body: %s", out)
	}
}
