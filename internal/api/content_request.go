package api

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"wqsolutions/internal/schema"
)

// maxMultiUpload bounds the repeated file field for multi-image types.
const maxMultiUpload = 10

// contentRequest is the parsed, schema-coerced form of a create/update body.
type contentRequest struct {
	// Fields holds coerced values for every declared field present in the
	// request, plus "slug" when the type supports one. Absent fields are
	// absent from the map, which is what makes updates partial.
	Fields map[string]any
	// Files maps image field names to uploaded files.
	Files map[string]*multipart.FileHeader
	// MultiFiles are the uploads for the entity's multi-image set.
	MultiFiles []*multipart.FileHeader
}

// parseContentRequest reads either a multipart form or a JSON body, keeping
// only fields the entity declares. Unknown keys are silently dropped.
func parseContentRequest(c *gin.Context, e schema.Entity) (*contentRequest, error) {
	req := &contentRequest{
		Fields: map[string]any{},
		Files:  map[string]*multipart.FileHeader{},
	}

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, fmt.Errorf("parse multipart form: %w", err)
		}
		for _, f := range e.Fields {
			values, ok := form.Value[f.Name]
			if !ok || len(values) == 0 {
				continue
			}
			coerced, err := coerceFormValue(f, values[0])
			if err != nil {
				return nil, err
			}
			req.Fields[f.Name] = coerced
		}
		if e.HasSlug {
			if values, ok := form.Value["slug"]; ok && len(values) > 0 {
				req.Fields["slug"] = strings.TrimSpace(values[0])
			}
		}
		for _, name := range e.ImageFields {
			if files, ok := form.File[name]; ok && len(files) > 0 {
				req.Files[name] = files[0]
			}
		}
		if e.MultiImageField != "" {
			files := form.File[e.MultiImageField]
			if len(files) > maxMultiUpload {
				return nil, fmt.Errorf("at most %d files allowed for %s", maxMultiUpload, e.MultiImageField)
			}
			req.MultiFiles = files
		}
		return req, nil
	}

	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		return nil, fmt.Errorf("parse json body: %w", err)
	}
	for _, f := range e.Fields {
		value, ok := raw[f.Name]
		if !ok {
			continue
		}
		coerced, err := coerceJSONValue(f, value)
		if err != nil {
			return nil, err
		}
		req.Fields[f.Name] = coerced
	}
	if e.HasSlug {
		if value, ok := raw["slug"]; ok {
			s, _ := value.(string)
			req.Fields["slug"] = strings.TrimSpace(s)
		}
	}
	if e.MultiImageField != "" {
		if value, ok := raw[e.MultiImageField]; ok {
			paths, err := stringSlice(value)
			if err != nil {
				return nil, fmt.Errorf("%s must be an array of strings", e.MultiImageField)
			}
			encoded, err := json.Marshal(paths)
			if err != nil {
				return nil, fmt.Errorf("encode %s: %w", e.MultiImageField, err)
			}
			req.Fields[e.MultiImageField] = json.RawMessage(encoded)
		}
	}
	return req, nil
}

func coerceFormValue(f schema.Field, value string) (any, error) {
	switch f.Type {
	case schema.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("field %s must be a boolean", f.Name)
		}
		return b, nil
	case schema.Int:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("field %s must be an integer", f.Name)
		}
		return n, nil
	case schema.Float:
		n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("field %s must be a number", f.Name)
		}
		return n, nil
	default:
		return value, nil
	}
}

func coerceJSONValue(f schema.Field, value any) (any, error) {
	switch f.Type {
	case schema.Bool:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("field %s must be a boolean", f.Name)
		}
		return b, nil
	case schema.Int:
		n, ok := value.(float64)
		if !ok || n != float64(int(n)) {
			return nil, fmt.Errorf("field %s must be an integer", f.Name)
		}
		return int(n), nil
	case schema.Float:
		n, ok := value.(float64)
		if !ok {
			return nil, fmt.Errorf("field %s must be a number", f.Name)
		}
		return n, nil
	default:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("field %s must be a string", f.Name)
		}
		return s, nil
	}
}

func stringSlice(value any) ([]string, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("not an array")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("not a string array")
		}
		out = append(out, s)
	}
	return out, nil
}

// validateRequired checks that every required field of the entity is present
// and non-empty in a create request.
func validateRequired(e schema.Entity, fields map[string]any) error {
	for _, f := range e.Fields {
		if !f.Required {
			continue
		}
		value, ok := fields[f.Name]
		if !ok {
			return fmt.Errorf("field %s is required", f.Name)
		}
		if s, isString := value.(string); isString && strings.TrimSpace(s) == "" {
			return fmt.Errorf("field %s is required", f.Name)
		}
	}
	return nil
}

// normalizeRecord converts driver-specific scan values of a raw row into the
// JSON shapes the API promises: declared bools become real booleans, declared
// ints become integers and the multi-image column becomes a JSON array.
func normalizeRecord(e schema.Entity, row map[string]any) map[string]any {
	for _, f := range e.Fields {
		value, ok := row[f.Name]
		if !ok || value == nil {
			continue
		}
		switch f.Type {
		case schema.Bool:
			row[f.Name] = truthy(value)
		case schema.Int:
			row[f.Name] = asInt(value)
		}
	}
	if e.MultiImageField != "" {
		row[e.MultiImageField] = rawJSONArray(row[e.MultiImageField])
	}
	if e.HasAuthor {
		if value, ok := row["author_id"]; ok && value != nil {
			row["author_id"] = asInt(value)
		}
	}
	if value, ok := row["id"]; ok {
		row["id"] = asInt(value)
	}
	return row
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case float64:
		return v != 0
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

func asInt(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

func rawJSONArray(value any) json.RawMessage {
	switch v := value.(type) {
	case nil:
		return json.RawMessage("[]")
	case json.RawMessage:
		if len(v) == 0 {
			return json.RawMessage("[]")
		}
		return v
	case []byte:
		if len(v) == 0 {
			return json.RawMessage("[]")
		}
		return json.RawMessage(v)
	case string:
		if v == "" {
			return json.RawMessage("[]")
		}
		return json.RawMessage(v)
	}
	return json.RawMessage("[]")
}

// stringOf reads a row value as a string, tolerating nils.
func stringOf(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

// isConstraintErr classifies persistence failures that should surface as 400
// rather than 500 (duplicate slugs hitting the unique index, mostly).
func isConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") ||
		strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "constraint")
}

func userIDFromContext(c *gin.Context) (uint, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	case uint64:
		return uint(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	default:
		return 0, false
	}
}
