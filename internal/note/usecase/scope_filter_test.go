package usecase

import (
	"testing"
	"time"

	notedomain "resurface-backend/internal/note/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pathRule(value string) *notedomain.ScopeItem {
	return &notedomain.ScopeItem{Kind: notedomain.ScopePath, Value: value, Enabled: true}
}

func TestScopeFilterRejectsMissingPath(t *testing.T) {
	f := NewScopeFilter(nil)

	ok, reason := f.Apply(map[string]interface{}{"kind": "upsert", "external_id": "a"}, time.Now())
	assert.False(t, ok)
	assert.Equal(t, "missing_path", reason)
}

func TestScopeFilterOutOfScope(t *testing.T) {
	f := NewScopeFilter([]*notedomain.ScopeItem{pathRule("work/")})

	item := map[string]interface{}{
		"kind":        "upsert",
		"external_id": "a",
		"path":        "personal/journal.md",
		"content":     "x",
	}
	ok, reason := f.Apply(item, time.Now())
	assert.False(t, ok)
	assert.Equal(t, "out_of_scope", reason)

	// Disabled rules never match.
	disabled := &notedomain.ScopeItem{Kind: notedomain.ScopePath, Value: "personal/", Enabled: false}
	f = NewScopeFilter([]*notedomain.ScopeItem{disabled})
	ok, reason = f.Apply(item, time.Now())
	assert.False(t, ok)
	assert.Equal(t, "out_of_scope", reason)
}

func TestScopeFilterMatching(t *testing.T) {
	tests := []struct {
		name string
		rule *notedomain.ScopeItem
		item map[string]interface{}
		want bool
	}{
		{
			name: "subtree prefix",
			rule: pathRule("work/"),
			item: map[string]interface{}{"external_id": "a", "path": "work/projects/roadmap.md"},
			want: true,
		},
		{
			name: "glob pattern",
			rule: pathRule("work/*.md"),
			item: map[string]interface{}{"external_id": "a", "path": "work/notes.md"},
			want: true,
		},
		{
			name: "glob does not cross directories",
			rule: pathRule("work/*.md"),
			item: map[string]interface{}{"external_id": "a", "path": "work/sub/notes.md"},
			want: false,
		},
		{
			name: "resource rule matches external id",
			rule: &notedomain.ScopeItem{Kind: notedomain.ScopeResource, Value: "page-42", Enabled: true},
			item: map[string]interface{}{"external_id": "page-42", "path": "anything.md"},
			want: true,
		},
		{
			name: "locator in metadata wins",
			rule: pathRule("work/"),
			item: map[string]interface{}{
				"external_id": "a",
				"path":        "personal/x.md",
				"metadata":    map[string]interface{}{"path": "work/x.md"},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewScopeFilter([]*notedomain.ScopeItem{tt.rule})
			ok, _ := f.Apply(tt.item, time.Now())
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestScopeFilterNormalization(t *testing.T) {
	f := NewScopeFilter(nil)
	received := ts("2026-05-01T10:00:00Z")

	item := map[string]interface{}{
		"kind":        "upsert",
		"external_id": "a",
		"path":        "work/projects/Roadmap 2026.md",
		"content":     "x",
	}
	ok, _ := f.Apply(item, received)
	require.True(t, ok)

	// Title derived from the basename, extension stripped.
	assert.Equal(t, "Roadmap 2026", item["title"])

	// Locator lifted into metadata.
	meta, ok := item["metadata"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "work/projects/Roadmap 2026.md", meta["path"])
}

func TestScopeFilterDeleteTimestampFallback(t *testing.T) {
	f := NewScopeFilter(nil)
	received := ts("2026-05-01T10:00:00Z")

	del := map[string]interface{}{
		"kind":        "delete",
		"external_id": "a",
		"path":        "work/gone.md",
	}
	ok, _ := f.Apply(del, received)
	require.True(t, ok)
	assert.Equal(t, received.UTC().Format(time.RFC3339Nano), del["timestamp"])

	// A delete that already carries a timestamp keeps it.
	del2 := map[string]interface{}{
		"kind":        "delete",
		"external_id": "a",
		"path":        "work/gone.md",
		"timestamp":   "2026-05-01T09:00:00Z",
	}
	ok, _ = f.Apply(del2, received)
	require.True(t, ok)
	assert.Equal(t, "2026-05-01T09:00:00Z", del2["timestamp"])
}
