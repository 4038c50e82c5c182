// Package schema validates reasoning-model output against the analysis
// JSON Schema. Validation is all-or-nothing: a payload that fails any
// constraint is rejected whole, there is no partial salvage.
package schema

import (
	_ "embed"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/launchradar/launchradar/internal/model"
)

// Version is stamped into AnalysisMetadata.SchemaVersion.
const Version = "1.0"

//go:embed analysis.schema.json
var schemaJSON string

var (
	payloadSchema = mustCompile("#/$defs/payload")
	recordSchema  = mustCompile("#/$defs/record")
)

func mustCompile(fragment string) *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("analysis.schema.json", strings.NewReader(schemaJSON)); err != nil {
		panic(err)
	}
	s, err := c.Compile("analysis.schema.json" + fragment)
	if err != nil {
		panic(err)
	}
	return s
}

// CleanJSON strips markdown code fences and leading/trailing prose from
// model output, leaving the outermost JSON object.
func CleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

// ParsePayload cleans raw model output, validates it against the payload
// schema, and unmarshals it. Any violation rejects the whole payload.
func ParsePayload(raw string) (*model.AnalysisPayload, error) {
	cleaned := CleanJSON(raw)
	if cleaned == "" {
		return nil, eris.New("schema: empty model output")
	}

	var generic any
	if err := json.Unmarshal([]byte(cleaned), &generic); err != nil {
		return nil, eris.Wrap(err, "schema: parse model output")
	}
	if err := payloadSchema.Validate(generic); err != nil {
		return nil, eris.Wrap(err, "schema: payload validation")
	}

	var payload model.AnalysisPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, eris.Wrap(err, "schema: decode payload")
	}
	return &payload, nil
}

// ValidateRecord checks a fully assembled record, payload constraints
// included, before it is persisted or served.
func ValidateRecord(rec *model.AnalysisRecord) error {
	if rec == nil {
		return eris.New("schema: nil record")
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "schema: marshal record")
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return eris.Wrap(err, "schema: reparse record")
	}
	if err := recordSchema.Validate(generic); err != nil {
		return eris.Wrap(err, "schema: record validation")
	}
	return nil
}
