package usecase

import (
	"fmt"
	"strings"
	"time"

	notedomain "resurface-backend/internal/note/domain"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const itemSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["kind", "external_id"],
	"properties": {
		"kind": {"enum": ["upsert", "delete"]},
		"external_id": {"type": "string", "minLength": 1},
		"title": {"type": "string"},
		"content": {"type": "string"},
		"content_encoding": {"enum": ["markdown", "html", "plain"]},
		"content_hash": {"type": "string"},
		"timestamp": {"type": "string"},
		"created_at": {"type": "string"},
		"path": {"type": "string"},
		"metadata": {"type": "object"}
	},
	"if": {"properties": {"kind": {"const": "upsert"}}},
	"then": {"required": ["content"]}
}`

var itemSchema = mustCompileItemSchema()

func mustCompileItemSchema() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(itemSchemaJSON))
	if err != nil {
		panic(fmt.Sprintf("item schema is not valid JSON: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("item.schema.json", doc); err != nil {
		panic(fmt.Sprintf("failed to add item schema: %v", err))
	}
	return compiler.MustCompile("item.schema.json")
}

// ValidateItem checks a raw source item against the ingestion schema.
func ValidateItem(item map[string]interface{}) error {
	return itemSchema.Validate(map[string]interface{}(item))
}

// DecodeEvent turns a validated raw item into its event variant. A missing
// content hash is computed from the normalized content.
func DecodeEvent(item map[string]interface{}) (notedomain.Event, error) {
	kind, _ := item["kind"].(string)
	externalID, _ := item["external_id"].(string)
	metadata, _ := item["metadata"].(map[string]interface{})

	timestamp, err := parseItemTime(item, "timestamp")
	if err != nil {
		return nil, err
	}

	switch kind {
	case "delete":
		return notedomain.DeleteEvent{
			ExternalID: externalID,
			DeletedAt:  timestamp,
			Metadata:   metadata,
		}, nil
	case "upsert":
		content, _ := item["content"].(string)
		hash, _ := item["content_hash"].(string)
		if hash == "" {
			hash = ContentHash(content)
		}
		encoding, _ := item["content_encoding"].(string)
		if encoding == "" {
			encoding = "markdown"
		}
		title, _ := item["title"].(string)
		createdAt, err := parseItemTime(item, "created_at")
		if err != nil {
			return nil, err
		}
		return notedomain.UpsertEvent{
			ExternalID:      externalID,
			Title:           title,
			Content:         content,
			ContentEncoding: encoding,
			ContentHash:     hash,
			CreatedAt:       createdAt,
			UpdatedAt:       timestamp,
			Metadata:        metadata,
		}, nil
	default:
		return nil, fmt.Errorf("unknown item kind %q", kind)
	}
}

func parseItemTime(item map[string]interface{}, key string) (*time.Time, error) {
	raw, _ := item[key].(string)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return &t, nil
}
