// Package project owns the canonical in-memory section collection for the
// active project. Every mutation goes through the gateway first and is
// merged back only after the remote side confirms it, so the local view is a
// lagging mirror of server state, never ahead of it.
package project

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"infini-cli/internal/api"
	"infini-cli/internal/model"
	"infini-cli/internal/store"
)

// Gateway is the slice of the API client the store needs.
type Gateway interface {
	ListSections(ctx context.Context, projectID string) ([]model.Section, error)
	GenerateAll(ctx context.Context, projectID string) ([]model.Section, error)
	RefineSection(ctx context.Context, sectionID, instruction string) (string, error)
	SetFeedback(ctx context.Context, sectionID string, liked *bool) error
	SetComment(ctx context.Context, sectionID, comment string) error
}

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// Store holds the sections of exactly one project. Operations on different
// sections may run concurrently; operations on the same section must be
// serialized by the caller (the TUI's single update loop does this
// naturally). The mutex only guards the local collection and the generating
// flag, never a network call.
type Store struct {
	ProjectID string

	// Activity, when set, receives a best-effort audit entry for each
	// successful generation and refine. Failures to log never fail the
	// operation.
	Activity *store.ActivityLog

	gw Gateway

	mu             sync.Mutex
	sections       []model.Section
	generating     bool
	autoGenChecked bool
}

func New(gw Gateway, projectID string) *Store {
	return &Store{ProjectID: projectID, gw: gw}
}

// Sections returns a copy of the current collection, ordered by OrderIndex.
func (s *Store) Sections() []model.Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Section, len(s.sections))
	copy(out, s.sections)
	return out
}

// Section returns the current local state of one section.
func (s *Store) Section(sectionID string) (model.Section, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sec := range s.sections {
		if sec.ID == sectionID {
			return sec, true
		}
	}
	return model.Section{}, false
}

// Generating reports whether a bulk generation call is outstanding.
func (s *Store) Generating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generating
}

// Load fetches all sections for the project. If the fetched collection is
// empty or no section has content yet, it triggers bulk generation once
// before returning, so a freshly created project ends up populated without a
// separate user action. The check is a one-shot gate per Store lifetime: it
// is never re-evaluated on later loads, even after a failed generation.
func (s *Store) Load(ctx context.Context) ([]model.Section, error) {
	if err := s.rejectWhileGenerating(); err != nil {
		return nil, err
	}

	secs, err := s.gw.ListSections(ctx, s.ProjectID)
	if err != nil {
		return nil, err
	}
	sortSections(secs)

	s.mu.Lock()
	s.sections = secs
	needGenerate := false
	if !s.autoGenChecked {
		s.autoGenChecked = true
		needGenerate = allContentMissing(secs)
	}
	s.mu.Unlock()

	if needGenerate {
		return s.GenerateAll(ctx)
	}
	return s.Sections(), nil
}

// GenerateAll requests bulk AI generation for every section and replaces the
// whole collection with the server's response; the server is the source of
// truth for generated content, not a client-side merge. While the call is
// outstanding the store rejects every other mutation.
func (s *Store) GenerateAll(ctx context.Context) ([]model.Section, error) {
	s.mu.Lock()
	if s.generating {
		s.mu.Unlock()
		return nil, api.ValidationError{Reason: "generation already in progress"}
	}
	s.generating = true
	s.mu.Unlock()

	secs, err := s.gw.GenerateAll(ctx, s.ProjectID)

	s.mu.Lock()
	s.generating = false
	if err == nil {
		sortSections(secs)
		s.sections = secs
	}
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	s.logActivity(ctx, "project.generate", s.ProjectID, fmt.Sprintf("%d sections", len(secs)))
	return s.Sections(), nil
}

// Refine requests a content revision for one section. On success only that
// section's content changes; its feedback and comment, and every other
// section, stay untouched. A blank instruction is rejected locally without a
// gateway call.
func (s *Store) Refine(ctx context.Context, sectionID, instruction string) (model.Section, error) {
	if strings.TrimSpace(instruction) == "" {
		return model.Section{}, api.ValidationError{Reason: "refine instruction is empty"}
	}
	if err := s.rejectWhileGenerating(); err != nil {
		return model.Section{}, err
	}
	if _, ok := s.Section(sectionID); !ok {
		return model.Section{}, NotFoundError{Kind: "section", ID: sectionID}
	}

	content, err := s.gw.RefineSection(ctx, sectionID, instruction)
	if err != nil {
		return model.Section{}, err
	}

	updated, ok := s.patch(sectionID, func(sec *model.Section) {
		sec.Content = &content
	})
	if !ok {
		return model.Section{}, NotFoundError{Kind: "section", ID: sectionID}
	}
	s.logActivity(ctx, "section.refine", sectionID, instruction)
	return updated, nil
}

// SetFeedback persists the tri-state like signal; nil clears a prior vote.
// Re-setting the same value still issues the call.
func (s *Store) SetFeedback(ctx context.Context, sectionID string, liked *bool) error {
	if err := s.rejectWhileGenerating(); err != nil {
		return err
	}
	if _, ok := s.Section(sectionID); !ok {
		return NotFoundError{Kind: "section", ID: sectionID}
	}
	if err := s.gw.SetFeedback(ctx, sectionID, liked); err != nil {
		return err
	}
	s.patch(sectionID, func(sec *model.Section) {
		sec.Liked = liked
	})
	return nil
}

// SetComment persists free-text notes for one section, overwriting any prior
// comment.
func (s *Store) SetComment(ctx context.Context, sectionID, comment string) error {
	if err := s.rejectWhileGenerating(); err != nil {
		return err
	}
	if _, ok := s.Section(sectionID); !ok {
		return NotFoundError{Kind: "section", ID: sectionID}
	}
	if err := s.gw.SetComment(ctx, sectionID, comment); err != nil {
		return err
	}
	s.patch(sectionID, func(sec *model.Section) {
		sec.Comment = comment
	})
	return nil
}

func (s *Store) rejectWhileGenerating() error {
	if s.Generating() {
		return api.ValidationError{Reason: "generation in progress"}
	}
	return nil
}

// patch applies fn to the section in place, after remote confirmation only.
func (s *Store) patch(sectionID string, fn func(*model.Section)) (model.Section, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sections {
		if s.sections[i].ID == sectionID {
			fn(&s.sections[i])
			return s.sections[i], true
		}
	}
	return model.Section{}, false
}

func (s *Store) logActivity(ctx context.Context, kind, entityID, detail string) {
	if s.Activity == nil {
		return
	}
	_ = s.Activity.Append(ctx, kind, entityID, detail)
}

func sortSections(secs []model.Section) {
	sort.SliceStable(secs, func(i, j int) bool {
		return secs[i].OrderIndex < secs[j].OrderIndex
	})
}

func allContentMissing(secs []model.Section) bool {
	for _, sec := range secs {
		if sec.HasContent() {
			return false
		}
	}
	return true
}
