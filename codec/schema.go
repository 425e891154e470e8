package codec

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "https://prism-todo.local/todos.schema.json"

// taskDocumentSchema describes an exported task list. Categories are kept
// as plain strings; unknown ones are accepted and simply never grouped.
const taskDocumentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Task list",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title", "category"],
    "properties": {
      "id": {"type": ["number", "string"]},
      "title": {"type": "string"},
      "category": {"type": "string"}
    }
  }
}`

var documentSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(taskDocumentSchema)); err != nil {
		panic(fmt.Sprintf("codec: add task schema: %v", err))
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		panic(fmt.Sprintf("codec: compile task schema: %v", err))
	}
	return schema
}

// validateDocument checks a decoded JSON value against the task list schema
// and returns one "path: message" entry per violation.
func validateDocument(doc any) []string {
	err := documentSchema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	var problems []string
	collectSchemaErrors(&problems, ve)
	sort.Strings(problems)
	return problems
}

func collectSchemaErrors(problems *[]string, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		*problems = append(*problems, jsonPointerToPath(err.InstanceLocation)+": "+err.Message)
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(problems, cause)
	}
}

// jsonPointerToPath renders "/0/title" as "$[0].title".
func jsonPointerToPath(ptr string) string {
	if ptr == "" || ptr == "/" {
		return "$"
	}
	var b strings.Builder
	b.WriteString("$")
	for _, part := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		part = strings.ReplaceAll(strings.ReplaceAll(part, "~1", "/"), "~0", "~")
		if isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		b.WriteString("." + part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
