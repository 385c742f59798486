// Package outline owns the mutable ordered list of section titles that a
// user authors before a project exists. All mutations are pure local edits;
// only Suggest and Submit touch the gateway.
package outline

import (
	"context"
	"fmt"
	"strings"

	"infini-cli/internal/api"
	"infini-cli/internal/model"
)

// Gateway is the slice of the API client the builder needs.
type Gateway interface {
	SuggestOutline(ctx context.Context, topic string, docType model.DocumentType) ([]string, error)
	CreateProject(ctx context.Context, topic string, docType model.DocumentType, title string, outline []string) (*model.Project, error)
}

const maxTitleLen = 100

// Draft is the ordered sequence of section titles. Order is authoring order
// and is preserved verbatim into the created project's sections.
type Draft struct {
	titles []string
}

// NewDraft seeds the default skeleton offered for a fresh project.
func NewDraft() *Draft {
	return &Draft{titles: []string{"Introduction", "Main Content", "Conclusion"}}
}

func NewDraftFrom(titles []string) *Draft {
	d := &Draft{titles: make([]string, len(titles))}
	copy(d.titles, titles)
	return d
}

func (d *Draft) Len() int { return len(d.titles) }

// Titles returns a copy; callers cannot mutate the draft through it.
func (d *Draft) Titles() []string {
	out := make([]string, len(d.titles))
	copy(out, d.titles)
	return out
}

func (d *Draft) Title(i int) string {
	if i < 0 || i >= len(d.titles) {
		return ""
	}
	return d.titles[i]
}

// Add appends a placeholder titled with the next 1-based ordinal.
func (d *Draft) Add() {
	d.titles = append(d.titles, fmt.Sprintf("Section %d", len(d.titles)+1))
}

// Remove deletes the entry at i; out-of-range is a silent no-op.
func (d *Draft) Remove(i int) {
	if i < 0 || i >= len(d.titles) {
		return
	}
	d.titles = append(d.titles[:i], d.titles[i+1:]...)
}

// Update replaces the title at i verbatim, empty string included.
func (d *Draft) Update(i int, title string) {
	if i < 0 || i >= len(d.titles) {
		return
	}
	d.titles[i] = title
}

type Direction int

const (
	Up Direction = iota
	Down
)

// Move swaps the entry at i with its neighbor. The first entry cannot move
// up and the last cannot move down; those are no-ops.
func (d *Draft) Move(i int, dir Direction) {
	switch dir {
	case Up:
		if i > 0 && i < len(d.titles) {
			d.titles[i-1], d.titles[i] = d.titles[i], d.titles[i-1]
		}
	case Down:
		if i >= 0 && i < len(d.titles)-1 {
			d.titles[i], d.titles[i+1] = d.titles[i+1], d.titles[i]
		}
	}
}

// submittable reports whether the draft has at least one non-empty title.
func (d *Draft) submittable() bool {
	for _, t := range d.titles {
		if strings.TrimSpace(t) != "" {
			return true
		}
	}
	return false
}

// Suggest asks the AI engine for a full outline and wholesale-replaces the
// draft on success. On failure the draft is untouched and the error is
// returned for the caller to surface.
func (d *Draft) Suggest(ctx context.Context, gw Gateway, topic string, docType model.DocumentType) error {
	if strings.TrimSpace(topic) == "" {
		return api.ValidationError{Reason: "enter a topic first"}
	}
	titles, err := gw.SuggestOutline(ctx, topic, docType)
	if err != nil {
		return err
	}
	d.titles = titles
	return nil
}

// Submit creates the project and its initial sections (content unset for
// all) in one request. Local validation failures never reach the gateway.
func (d *Draft) Submit(ctx context.Context, gw Gateway, topic string, docType model.DocumentType) (*model.Project, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, api.ValidationError{Reason: "provide a topic"}
	}
	if !d.submittable() {
		return nil, api.ValidationError{Reason: "add at least one section"}
	}
	if !docType.Valid() {
		return nil, api.ValidationError{Reason: "unknown document type: " + string(docType)}
	}
	title := topic
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen]
	}
	return gw.CreateProject(ctx, topic, docType, title, d.Titles())
}
