package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/harrison/taskflow/internal/executor"
)

// maxResponseBytes caps how much of an HTTP response body is read.
const maxResponseBytes = 1 << 20

// errorExcerptLen caps how much response body is quoted in an error.
const errorExcerptLen = 200

// Binder turns task definitions into executor tasks.
// Operations capture the binder's context, so cancelling it makes in-flight
// HTTP calls and commands fail (and be recorded as failed tasks).
type Binder struct {
	ctx        context.Context
	httpClient *http.Client
	expand     func(string) string
}

// NewBinder creates a Binder whose HTTP requests time out after httpTimeout (0 = never).
func NewBinder(ctx context.Context, httpTimeout time.Duration) *Binder {
	return &Binder{
		ctx:        ctx,
		httpClient: &http.Client{Timeout: httpTimeout},
		expand:     os.ExpandEnv,
	}
}

// BuildTasks creates one task per definition, in file order.
// The definition must already be valid.
func (b *Binder) BuildTasks(def *Definition, logger executor.Logger) ([]*executor.Task, error) {
	tasks := make([]*executor.Task, 0, len(def.Tasks))
	for _, td := range def.Tasks {
		op, err := b.Operation(td)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", td.ID, err)
		}
		tasks = append(tasks, executor.NewTask(td.ID, td.Name, op, logger))
	}
	return tasks, nil
}

// Operation binds a single task definition.
func (b *Binder) Operation(td TaskDef) (executor.Operation, error) {
	switch td.Kind() {
	case "http":
		spec := *td.HTTP
		return func() (interface{}, error) { return b.doHTTP(spec) }, nil
	case "command":
		argv := append([]string(nil), td.Command...)
		return func() (interface{}, error) {
			expanded := make([]string, len(argv))
			for i, arg := range argv {
				expanded[i] = b.expand(arg)
			}
			return b.runCommand(expanded, td.Dir, td.Env)
		}, nil
	case "shell":
		argv := []string{"sh", "-c", td.Shell}
		return func() (interface{}, error) { return b.runCommand(argv, td.Dir, td.Env) }, nil
	default:
		return nil, fmt.Errorf("no operation defined")
	}
}

// doHTTP performs the request and returns the response body.
// JSON bodies are compacted; a status other than the expected one is an error.
func (b *Binder) doHTTP(spec HTTPSpec) (string, error) {
	url := b.expand(spec.URL)

	var body io.Reader
	if spec.Body != "" {
		body = strings.NewReader(b.expand(spec.Body))
	}

	req, err := http.NewRequestWithContext(b.ctx, spec.Method, url, body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	for k, v := range spec.Headers {
		req.Header.Set(k, b.expand(v))
	}
	if spec.Body != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", spec.Method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response from %s: %w", url, err)
	}

	if !statusAccepted(resp.StatusCode, spec.ExpectStatus) {
		return "", fmt.Errorf("%s %s: unexpected status %d: %s",
			spec.Method, url, resp.StatusCode, excerpt(string(data)))
	}

	if json.Valid(data) {
		var compact bytes.Buffer
		if err := json.Compact(&compact, data); err == nil {
			return compact.String(), nil
		}
	}
	return strings.TrimSpace(string(data)), nil
}

func statusAccepted(got, expected int) bool {
	if expected != 0 {
		return got == expected
	}
	return got >= 200 && got < 300
}

// excerpt shortens s to errorExcerptLen runes, never splitting a character.
func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= errorExcerptLen {
		return s
	}
	return string([]rune(s)[:errorExcerptLen]) + "..."
}

// runCommand executes argv and returns its trimmed combined output.
func (b *Binder) runCommand(argv []string, dir string, env map[string]string) (string, error) {
	cmd := exec.CommandContext(b.ctx, argv[0], argv[1:]...)
	if dir != "" {
		cmd.Dir = b.expand(dir)
	}
	if len(env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range env {
			cmd.Env = append(cmd.Env, k+"="+b.expand(v))
		}
	}

	output, err := cmd.CombinedOutput()
	out := strings.TrimSpace(string(output))
	if err != nil {
		if out != "" {
			return "", fmt.Errorf("command %q failed: %w: %s", strings.Join(argv, " "), err, excerpt(out))
		}
		return "", fmt.Errorf("command %q failed: %w", strings.Join(argv, " "), err)
	}
	return out, nil
}
