package usecase

import (
	"path"
	"strings"
	"time"

	notedomain "resurface-backend/internal/note/domain"
)

const (
	rejectMissingPath = "missing_path"
	rejectOutOfScope  = "out_of_scope"
)

// ScopeFilter gates vault items against the connection's declared sync scope
// before they reach the resolver. Page-service items arrive pre-filtered
// upstream and bypass it.
type ScopeFilter struct {
	rules []*notedomain.ScopeItem
}

func NewScopeFilter(rules []*notedomain.ScopeItem) *ScopeFilter {
	return &ScopeFilter{rules: rules}
}

// Apply checks one raw item against the scope. It returns (false, reason)
// for rejected items. Passing items are normalized in place: the locator is
// lifted into metadata, a missing title is derived from the locator's
// basename, and timestamp-less deletes receive the batch receipt time so the
// resolver always has something to compare.
func (f *ScopeFilter) Apply(item map[string]interface{}, receivedAt time.Time) (bool, string) {
	locator := extractLocator(item)
	if locator == "" {
		return false, rejectMissingPath
	}

	if len(f.rules) > 0 && !f.matches(item, locator) {
		return false, rejectOutOfScope
	}

	meta, ok := item["metadata"].(map[string]interface{})
	if !ok {
		meta = map[string]interface{}{}
		item["metadata"] = meta
	}
	meta["path"] = locator

	if title, _ := item["title"].(string); title == "" {
		item["title"] = titleFromPath(locator)
	}

	if kind, _ := item["kind"].(string); kind == "delete" {
		if ts, _ := item["timestamp"].(string); ts == "" {
			item["timestamp"] = receivedAt.UTC().Format(time.RFC3339Nano)
		}
	}

	return true, ""
}

func (f *ScopeFilter) matches(item map[string]interface{}, locator string) bool {
	externalID, _ := item["external_id"].(string)

	for _, rule := range f.rules {
		if !rule.Enabled {
			continue
		}
		switch rule.Kind {
		case notedomain.ScopeResource:
			if externalID == rule.Value {
				return true
			}
		case notedomain.ScopePath:
			// Patterns ending in "/" include the whole subtree.
			if strings.HasSuffix(rule.Value, "/") {
				if strings.HasPrefix(locator, rule.Value) {
					return true
				}
				continue
			}
			if ok, err := path.Match(rule.Value, locator); err == nil && ok {
				return true
			}
		}
	}
	return false
}

func extractLocator(item map[string]interface{}) string {
	if meta, ok := item["metadata"].(map[string]interface{}); ok {
		if p, _ := meta["path"].(string); p != "" {
			return p
		}
	}
	p, _ := item["path"].(string)
	return p
}

func titleFromPath(locator string) string {
	base := path.Base(locator)
	return strings.TrimSuffix(base, path.Ext(base))
}
