package export

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"infini-cli/internal/api"
	"infini-cli/internal/model"
)

type fakeGateway struct {
	mu      sync.Mutex
	payload []byte
	err     error
	calls   int
	block   chan struct{}
}

func (f *fakeGateway) ExportProject(ctx context.Context, projectID string) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

func docxProject() model.Project {
	return model.Project{ID: "proj-1", Title: "EV market 2025", DocumentType: model.DocumentDocx}
}

func TestExport_WritesArtifact(t *testing.T) {
	dir := t.TempDir()
	gw := &fakeGateway{payload: []byte{0x50, 0x4b, 0x03, 0x04}}
	c := &Coordinator{}

	path, err := c.Export(context.Background(), gw, docxProject(), dir)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if filepath.Base(path) != "EV market 2025.docx" {
		t.Fatalf("unexpected artifact name: %s", filepath.Base(path))
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(b) != string(gw.payload) {
		t.Fatalf("payload mismatch")
	}
}

func TestExport_SingleInFlightPerProject(t *testing.T) {
	dir := t.TempDir()
	gw := &fakeGateway{payload: []byte("x"), block: make(chan struct{})}
	c := &Coordinator{}

	first := make(chan error, 1)
	go func() {
		_, err := c.Export(context.Background(), gw, docxProject(), dir)
		first <- err
	}()

	// Wait for the first export to reach the gateway.
	deadline := time.Now().Add(2 * time.Second)
	for {
		gw.mu.Lock()
		calls := gw.calls
		gw.mu.Unlock()
		if calls == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("first export never started")
		}
		time.Sleep(time.Millisecond)
	}

	// Second export for the same project is rejected before any call.
	_, err := c.Export(context.Background(), gw, docxProject(), dir)
	if _, ok := err.(api.ValidationError); !ok {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}

	// A different project is unaffected.
	other := model.Project{ID: "proj-2", Title: "Other", DocumentType: model.DocumentPptx}
	done := make(chan error, 1)
	go func() {
		_, err := c.Export(context.Background(), gw, other, dir)
		done <- err
	}()

	close(gw.block)
	if err := <-first; err != nil {
		t.Fatalf("first export: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("other project export: %v", err)
	}
	gw.mu.Lock()
	if gw.calls != 2 {
		t.Fatalf("expected 2 gateway calls, got %d", gw.calls)
	}
	gw.mu.Unlock()

	// After completion the project can be exported again.
	if _, err := c.Export(context.Background(), gw, docxProject(), dir); err != nil {
		t.Fatalf("re-export: %v", err)
	}
}

func TestExport_FailureDeliversNothing(t *testing.T) {
	dir := t.TempDir()
	gw := &fakeGateway{err: api.ExportError{Reason: "renderer crashed"}}
	c := &Coordinator{}

	_, err := c.Export(context.Background(), gw, docxProject(), dir)
	if _, ok := err.(api.ExportError); !ok {
		t.Fatalf("expected ExportError, got %T: %v", err, err)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(ents) != 0 {
		t.Fatalf("artifact written despite failure")
	}

	// The in-flight mark is cleared, so a retry goes through.
	gw.err = nil
	gw.payload = []byte("ok")
	if _, err := c.Export(context.Background(), gw, docxProject(), dir); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestArtifactName_Sanitizes(t *testing.T) {
	p := model.Project{ID: "p1", Title: "../../etc/passwd", DocumentType: model.DocumentPptx}
	name := ArtifactName(p)
	if filepath.Base(name) != name {
		t.Fatalf("name contains separators: %q", name)
	}
	if name != "_.._etc_passwd.pptx" {
		t.Fatalf("unexpected sanitized name: %q", name)
	}

	blank := model.Project{ID: "p2", Title: "   ", DocumentType: model.DocumentDocx}
	if got := ArtifactName(blank); got != "p2.docx" {
		t.Fatalf("expected id fallback, got %q", got)
	}
}
