package httpapi

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"todo-api/internal/todo"
)

// id, isCompleted and createdAt are accepted on create so a client can post
// back an item it fetched. They are ignored.
const createTodoSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "id":          {"type": ["integer", "null"]},
    "title":       {"type": "string"},
    "description": {"type": ["string", "null"]},
    "isCompleted": {"type": ["boolean", "null"]},
    "createdAt":   {"type": ["string", "null"]}
  },
  "additionalProperties": false
}`

// null means "leave unchanged".
const updateTodoSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "title":       {"type": ["string", "null"]},
    "description": {"type": ["string", "null"]},
    "isCompleted": {"type": ["boolean", "null"]}
  },
  "additionalProperties": false
}`

var (
	createSchema = mustCompile("https://todo-api.local/schemas/create_todo.json", createTodoSchema)
	updateSchema = mustCompile("https://todo-api.local/schemas/update_todo.json", updateTodoSchema)
)

func mustCompile(name, src string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
		panic("httpapi: add schema " + name + ": " + err.Error())
	}
	return compiler.MustCompile(name)
}

func schemaFieldErrors(ve *jsonschema.ValidationError) *todo.ValidationError {
	var fields []todo.FieldError
	collectLeaves(ve, &fields)
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
	return &todo.ValidationError{Fields: fields}
}

func collectLeaves(ve *jsonschema.ValidationError, out *[]todo.FieldError) {
	if len(ve.Causes) == 0 {
		if names := unknownProperties(ve); len(names) > 0 {
			parent := pointerToField(ve.InstanceLocation)
			for _, name := range names {
				field := name
				if parent != "body" {
					field = parent + "." + name
				}
				*out = append(*out, todo.FieldError{Field: field, Message: name + " is not allowed"})
			}
			return
		}
		*out = append(*out, todo.FieldError{
			Field:   pointerToField(ve.InstanceLocation),
			Message: ve.Message,
		})
		return
	}
	for _, c := range ve.Causes {
		collectLeaves(c, out)
	}
}

var quotedName = regexp.MustCompile(`'((?:[^'\\]|\\.)*)'`)

// unknownProperties returns the keys an additionalProperties failure names,
// e.g. "additionalProperties 'a', 'b' not allowed".
func unknownProperties(ve *jsonschema.ValidationError) []string {
	if !strings.HasSuffix(ve.KeywordLocation, "/additionalProperties") &&
		!strings.HasPrefix(ve.Message, "additionalProperties ") {
		return nil
	}
	var names []string
	for _, m := range quotedName.FindAllStringSubmatch(ve.Message, -1) {
		name := strings.ReplaceAll(m[1], `\'`, "'")
		if u, err := strconv.Unquote(`"` + strings.ReplaceAll(name, `"`, `\"`) + `"`); err == nil {
			name = u
		}
		names = append(names, name)
	}
	return names
}

// pointerToField turns "/a/b" into "a.b". The document root is "body".
func pointerToField(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return "body"
	}
	parts := strings.Split(ptr, "/")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		parts[i] = strings.ReplaceAll(p, "~0", "~")
	}
	return strings.Join(parts, ".")
}
