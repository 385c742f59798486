package format

import (
	"strings"
	"testing"
)

func TestWriteJSON_Compact(t *testing.T) {
	var sb strings.Builder
	if err := WriteJSON(&sb, map[string]string{"a": "b"}, false); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if sb.String() != "{\"a\":\"b\"}\n" {
		t.Fatalf("unexpected output: %q", sb.String())
	}
}

func TestWriteJSON_Pretty(t *testing.T) {
	var sb strings.Builder
	if err := WriteJSON(&sb, map[string]string{"a": "b"}, true); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !strings.Contains(sb.String(), "\n  \"a\": \"b\"\n") {
		t.Fatalf("expected indented output: %q", sb.String())
	}
}
