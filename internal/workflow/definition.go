// Package workflow loads workflow definition files and binds each task
// definition to an executable operation.
package workflow

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Definition is a parsed workflow file.
type Definition struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Tasks       []TaskDef `yaml:"tasks"`
	FilePath    string    `yaml:"-"` // Absolute path the definition was loaded from
}

// TaskDef describes one task. Exactly one of HTTP, Command or Shell is set.
// Command arguments, Dir and Env values support ${VAR} expansion; Shell
// scripts are left to sh, which expands variables itself.
type TaskDef struct {
	ID      string            `yaml:"id"`
	Name    string            `yaml:"name"`
	HTTP    *HTTPSpec         `yaml:"http"`
	Command []string          `yaml:"command"` // argv, run without a shell
	Shell   string            `yaml:"shell"`   // run via sh -c
	Dir     string            `yaml:"dir"`
	Env     map[string]string `yaml:"env"`
}

// HTTPSpec is a single REST call against a vendor API.
// URL, header values and body support ${VAR} environment expansion.
type HTTPSpec struct {
	Method       string            `yaml:"method"`
	URL          string            `yaml:"url"`
	Headers      map[string]string `yaml:"headers"`
	Body         string            `yaml:"body"`
	ExpectStatus int               `yaml:"expect_status"` // 0 accepts any 2xx
}

// Kind returns "http", "command", "shell", or "" when no operation is set.
func (t TaskDef) Kind() string {
	switch {
	case t.HTTP != nil:
		return "http"
	case len(t.Command) > 0:
		return "command"
	case t.Shell != "":
		return "shell"
	default:
		return ""
	}
}

// Parse decodes a YAML workflow definition. Unknown fields are rejected.
// Task names default to their id.
func Parse(r io.Reader) (*Definition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow: %w", err)
	}

	var def Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse workflow YAML: %w", err)
	}

	for i := range def.Tasks {
		if def.Tasks[i].Name == "" {
			def.Tasks[i].Name = def.Tasks[i].ID
		}
		if spec := def.Tasks[i].HTTP; spec != nil {
			spec.Method = strings.ToUpper(spec.Method)
			if spec.Method == "" {
				spec.Method = http.MethodGet
			}
		}
	}

	return &def, nil
}

// LoadFile reads and parses a .yaml or .yml workflow file.
func LoadFile(path string) (*Definition, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unknown file format: %s (supported: .yaml, .yml)", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workflow: %w", err)
	}
	defer file.Close()

	def, err := Parse(file)
	if err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	def.FilePath = absPath

	return def, nil
}

// Validate checks every task definition and returns all problems joined.
// Duplicate ids are not an error; see DuplicateIDs.
func (d *Definition) Validate() error {
	var errs []error
	for i, task := range d.Tasks {
		if err := task.validate(); err != nil {
			label := task.ID
			if label == "" {
				label = fmt.Sprintf("#%d", i+1)
			}
			errs = append(errs, fmt.Errorf("task %s: %w", label, err))
		}
	}
	return errors.Join(errs...)
}

func (t TaskDef) validate() error {
	if t.ID == "" {
		return errors.New("id is required")
	}

	set := 0
	if t.HTTP != nil {
		set++
	}
	if len(t.Command) > 0 {
		set++
	}
	if t.Shell != "" {
		set++
	}
	if set != 1 {
		return errors.New("exactly one of http, command or shell is required")
	}

	if t.HTTP != nil {
		return t.HTTP.validate()
	}
	return nil
}

func (h *HTTPSpec) validate() error {
	if h.URL == "" {
		return errors.New("http.url is required")
	}
	switch h.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodHead:
	default:
		return fmt.Errorf("unsupported http.method %q", h.Method)
	}
	if h.ExpectStatus != 0 && (h.ExpectStatus < 100 || h.ExpectStatus > 599) {
		return fmt.Errorf("http.expect_status %d is not a valid status code", h.ExpectStatus)
	}
	return nil
}

// DuplicateIDs returns ids that appear more than once, in first-seen order.
func (d *Definition) DuplicateIDs() []string {
	seen := make(map[string]int)
	var dups []string
	for _, task := range d.Tasks {
		seen[task.ID]++
		if seen[task.ID] == 2 {
			dups = append(dups, task.ID)
		}
	}
	return dups
}
