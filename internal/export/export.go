// Package export turns a project into a downloadable document artifact on
// disk. The artifact always reflects the server's persisted section content;
// nothing local feeds into it, since every section mutation is persisted
// before it is shown.
package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"infini-cli/internal/api"
	"infini-cli/internal/model"
	"infini-cli/internal/store"
)

// Gateway is the slice of the API client the coordinator needs.
type Gateway interface {
	ExportProject(ctx context.Context, projectID string) ([]byte, error)
}

// Coordinator downloads export artifacts. At most one export per project may
// be in flight at a time; overlapping requests for the same project are
// rejected before any call is made. The zero value is ready to use.
type Coordinator struct {
	// Activity, when set, receives a best-effort audit entry per delivered
	// artifact.
	Activity *store.ActivityLog

	mu       sync.Mutex
	inFlight map[string]bool
}

// Export fetches the artifact for the project and writes it under dir as
// `<title>.<document type>`. It returns the written path.
func (c *Coordinator) Export(ctx context.Context, gw Gateway, p model.Project, dir string) (string, error) {
	if !c.begin(p.ID) {
		return "", api.ValidationError{Reason: "an export for this project is already in progress"}
	}
	defer c.end(p.ID)

	b, err := gw.ExportProject(ctx, p.ID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", api.ExportError{Reason: err.Error()}
	}
	path := filepath.Join(dir, ArtifactName(p))
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", api.ExportError{Reason: err.Error()}
	}

	if c.Activity != nil {
		_ = c.Activity.Append(ctx, "project.export", p.ID, filepath.Base(path))
	}
	return path, nil
}

func (c *Coordinator) begin(projectID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight == nil {
		c.inFlight = map[string]bool{}
	}
	if c.inFlight[projectID] {
		return false
	}
	c.inFlight[projectID] = true
	return true
}

func (c *Coordinator) end(projectID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, projectID)
}

// ArtifactName is `<project title>.<document type>` with path separators and
// control characters stripped so the title can't escape the target dir.
func ArtifactName(p model.Project) string {
	title := sanitizeFilename(p.Title)
	if title == "" {
		title = p.ID
	}
	if title == "" {
		title = "document"
	}
	ext := string(p.DocumentType)
	if ext == "" {
		ext = string(model.DocumentDocx)
	}
	return title + "." + ext
}

func sanitizeFilename(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '/' || r == '\\' || r == 0:
			b.WriteRune('_')
		case r < 0x20:
			// skip control characters
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(strings.TrimSpace(b.String()), ".")
}
