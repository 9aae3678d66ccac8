package api

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaBase = "https://sharai.schemas.local/api/"

// Response schemas only pin down the fields the client reads. Unknown
// fields are allowed.
const (
	optString = `{"type": ["string", "null"]}`
	optBool   = `{"type": ["boolean", "null"]}`
	fileInfo  = `{"type": ["object", "null"], "properties": {"url": ` + optString + `}}`

	termSchema = `{
		"type": "object",
		"required": ["term_id", "term_text"],
		"properties": {
			"term_id": {"type": "string"},
			"term_text": {"type": "string"},
			"is_valid_sharia": ` + optBool + `,
			"compliance_status": ` + optString + `,
			"sharia_issue": ` + optString + `,
			"reference_number": ` + optString + `,
			"modified_term": ` + optString + `,
			"is_confirmed_by_user": ` + optBool + `,
			"confirmed_modified_text": ` + optString + `,
			"has_expert_feedback": ` + optBool + `,
			"expert_override_is_valid_sharia": ` + optBool + `
		}
	}`
)

var responseSchemas = map[string]string{
	"analyze": `{
		"type": "object",
		"required": ["session_id", "analysis_results"],
		"properties": {
			"session_id": {"type": "string", "minLength": 1},
			"message": ` + optString + `,
			"analysis_results": {"type": "array", "items": ` + termSchema + `}
		}
	}`,
	"terms": `{"type": "array", "items": ` + termSchema + `}`,
	"session": `{
		"type": "object",
		"required": ["session_id"],
		"properties": {
			"session_id": {"type": "string"},
			"original_filename": ` + optString + `,
			"detected_contract_language": ` + optString + `,
			"original_cloudinary_info": ` + fileInfo + `,
			"interactions": {"type": ["array", "null"]},
			"confirmed_terms": {"type": ["object", "null"]},
			"pdf_preview_info": {
				"type": ["object", "null"],
				"properties": {"modified": ` + fileInfo + `, "marked": ` + fileInfo + `}
			}
		}
	}`,
	"interact": `{
		"type": "object",
		"properties": {
			"answer": ` + optString + `,
			"response": ` + optString + `,
			"suggested_clause": ` + optString + `,
			"reference_standard": ` + optString + `
		}
	}`,
	"review": `{
		"type": "object",
		"required": ["reviewed_text"],
		"properties": {
			"reviewed_text": {"type": "string"},
			"is_still_valid_sharia": ` + optBool + `,
			"compliance_status": ` + optString + `,
			"sharia_issue": ` + optString + `,
			"new_sharia_issue": ` + optString + `
		}
	}`,
	"confirm": `{
		"type": "object",
		"required": ["success"],
		"properties": {"success": {"type": "boolean"}, "message": ` + optString + `}
	}`,
	"generate_modified": `{
		"type": "object",
		"required": ["success"],
		"properties": {
			"success": {"type": "boolean"},
			"modified_docx_cloudinary_url": ` + optString + `,
			"modified_txt_cloudinary_url": ` + optString + `
		}
	}`,
	"generate_marked": `{
		"type": "object",
		"required": ["success"],
		"properties": {
			"success": {"type": "boolean"},
			"marked_docx_cloudinary_url": ` + optString + `
		}
	}`,
	"feedback": `{
		"type": "object",
		"required": ["success"],
		"properties": {"success": {"type": "boolean"}, "feedback_id": ` + optString + `}
	}`,
	"preview": `{
		"type": "object",
		"properties": {"pdf_url": ` + optString + `, "error": ` + optString + `}
	}`,
}

var (
	compileOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
)

func schemas() (map[string]*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		out := make(map[string]*jsonschema.Schema, len(responseSchemas))
		for name, src := range responseSchemas {
			url := schemaBase + name + ".schema.json"
			if err := c.AddResource(url, strings.NewReader(src)); err != nil {
				compileErr = fmt.Errorf("loading %s schema: %w", name, err)
				return
			}
			s, err := c.Compile(url)
			if err != nil {
				compileErr = fmt.Errorf("compiling %s schema: %w", name, err)
				return
			}
			out[name] = s
		}
		compiled = out
	})
	return compiled, compileErr
}

// validate checks a decoded JSON document against the named schema.
func validate(name string, doc any) error {
	all, err := schemas()
	if err != nil {
		return err
	}
	s, ok := all[name]
	if !ok {
		return fmt.Errorf("no schema registered for %q", name)
	}
	return s.Validate(doc)
}

// acceptsEmpty reports whether a body-less answer satisfies the named
// schema, meaning the endpoint has no required fields.
func acceptsEmpty(name string) bool {
	if name == "" {
		return true
	}
	return validate(name, map[string]any{}) == nil || validate(name, []any{}) == nil
}
