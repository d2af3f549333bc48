// cmd/tools/worker-generator/generate.go
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"lending-workers/pkg/registry"
)

// ErrExists is returned when the target directory already holds a worker
// and overwriting was not requested.
var ErrExists = errors.New("worker directory already exists")

// WorkerData holds data for templates
type WorkerData struct {
	Name         string
	PackageName  string
	TaskType     string
	Category     string
	Description  string
	Timeout      string
	TimeoutExpr  string
	ErrorCodes   []string
	InputFields  []Field
	OutputFields []Field
	UsesModels   bool
}

type Field struct {
	Name     string
	JSONName string
	GoType   string
	Comment  string
}

// newWorkerData derives template data from a registry entry.
func newWorkerData(a *registry.Activity) WorkerData {
	data := WorkerData{
		Name:         a.DisplayName,
		PackageName:  strings.ReplaceAll(a.ID, "-", ""),
		TaskType:     a.TaskType,
		Category:     a.Category,
		Description:  a.Description,
		Timeout:      a.Timeout,
		ErrorCodes:   a.ErrorCodes,
		InputFields:  schemaFields(a.InputSchema),
		OutputFields: schemaFields(a.OutputSchema),
	}
	if data.TaskType == "" {
		data.TaskType = a.ID
	}
	if data.Timeout == "" {
		data.Timeout = "10s"
	}
	data.TimeoutExpr = durationExpr(data.Timeout)
	for _, f := range append(append([]Field{}, data.InputFields...), data.OutputFields...) {
		if strings.HasPrefix(f.GoType, "models.") {
			data.UsesModels = true
		}
	}
	return data
}

// schemaFields extracts sorted struct fields from a JSON schema object.
func schemaFields(schema map[string]interface{}) []Field {
	props, _ := schema["properties"].(map[string]interface{})
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]Field, 0, len(names))
	for _, name := range names {
		details, ok := props[name].(map[string]interface{})
		if !ok {
			continue
		}
		f := Field{
			Name:     exportedName(name),
			JSONName: name,
			GoType:   goType(details["type"]),
		}
		if desc, ok := details["description"].(string); ok {
			f.Comment = desc
		}
		fields = append(fields, f)
	}
	return fields
}

// goType maps JSON schema types to Go types. Form posts send amounts as
// strings, so a number|string union becomes models.Number.
func goType(jsonType interface{}) string {
	switch jt := jsonType.(type) {
	case string:
		switch jt {
		case "string":
			return "string"
		case "integer":
			return "int"
		case "number":
			return "float64"
		case "boolean":
			return "bool"
		case "object":
			return "map[string]interface{}"
		case "array":
			return "[]interface{}"
		}
	case []interface{}:
		types := map[string]bool{}
		for _, t := range jt {
			if s, ok := t.(string); ok {
				types[s] = true
			}
		}
		if types["number"] && types["string"] && len(types) == 2 {
			return "models.Number"
		}
	}
	return "interface{}"
}

// durationExpr renders a registry timeout as a Go duration expression.
func durationExpr(s string) string {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return "10 * time.Second"
	}
	if d%time.Second == 0 {
		return fmt.Sprintf("%d * time.Second", d/time.Second)
	}
	return fmt.Sprintf("%d * time.Millisecond", d/time.Millisecond)
}

// exportedName turns "applicationId" or "loan_amount" into "ApplicationID"
// and "LoanAmount".
func exportedName(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' })
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	name := b.String()
	if strings.HasSuffix(name, "Id") {
		name = strings.TrimSuffix(name, "Id") + "ID"
	}
	return name
}

// Generate writes a worker scaffold under outputDir/<category>/<id> and
// returns the directory.
func Generate(a *registry.Activity, outputDir string, force bool) (string, error) {
	data := newWorkerData(a)
	workerDir := filepath.Join(outputDir, strings.ToLower(data.Category), a.ID)

	if _, err := os.Stat(workerDir); err == nil && !force {
		return "", fmt.Errorf("%w: %s", ErrExists, workerDir)
	}
	if err := os.MkdirAll(workerDir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", workerDir, err)
	}

	templates := map[string]string{
		"config.go":       configTemplate,
		"models.go":       modelsTemplate,
		"handler.go":      handlerTemplate,
		"handler_test.go": testTemplate,
	}
	for filename, text := range templates {
		tmpl, err := template.New(filename).Parse(text)
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", filename, err)
		}
		if err := writeTemplate(filepath.Join(workerDir, filename), tmpl, data); err != nil {
			return "", err
		}
	}
	return workerDir, nil
}

func writeTemplate(path string, tmpl *template.Template, data WorkerData) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()
	if err := tmpl.Execute(file, data); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	return nil
}
