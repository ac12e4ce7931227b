package openapi

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// TestToolName_Properties checks invariants of derived tool names over
// arbitrary templated paths: never empty for non-empty paths, no brace
// or slash characters, operationId always wins.
func TestToolName_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		segments := rapid.SliceOfN(
			rapid.StringMatching(`[a-z]{1,8}|\{[a-z]{1,8}\}`), 1, 5,
		).Draw(t, "segments")
		path := "/" + strings.Join(segments, "/")
		method := rapid.SampledFrom([]string{"GET", "POST", "PUT", "PATCH", "DELETE"}).Draw(t, "method")

		name := ToolName(method, path, "")
		if name == "" {
			t.Fatalf("empty tool name for path %q", path)
		}
		if strings.ContainsAny(name, "{}/") {
			t.Fatalf("tool name %q contains path syntax", name)
		}
		if !strings.HasPrefix(name, strings.ToLower(method)+"_") {
			t.Fatalf("tool name %q missing method prefix", name)
		}

		withID := ToolName(method, path, "listUsers")
		if withID != "listUsers" {
			t.Fatalf("operationId not preferred: got %q", withID)
		}
	})
}
