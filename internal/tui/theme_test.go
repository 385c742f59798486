package tui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestApplyThemePreference_EnvWinsOverConfig(t *testing.T) {
	t.Setenv("INFINI_TUI_THEME", "light")
	t.Setenv("INFINI_TUI_DARKBG", "")
	t.Setenv("COLORFGBG", "")

	applyThemePreference("dark")
	if lipgloss.HasDarkBackground() {
		t.Fatalf("expected the env preference to win")
	}
}

func TestApplyThemePreference_ConfigTheme(t *testing.T) {
	t.Setenv("INFINI_TUI_THEME", "")
	t.Setenv("INFINI_TUI_DARKBG", "")
	t.Setenv("COLORFGBG", "")

	applyThemePreference("dark")
	if !lipgloss.HasDarkBackground() {
		t.Fatalf("expected the persisted theme to apply")
	}
}

func TestMarkdownStyle_FollowsThemeEnv(t *testing.T) {
	t.Setenv("INFINI_TUI_MD_STYLE", "")
	t.Setenv("INFINI_TUI_THEME", "light")

	if got := markdownStyle(); got != "light" {
		t.Fatalf("markdownStyle() = %q, want light", got)
	}
}
