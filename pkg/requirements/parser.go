// Package requirements reads pip requirements files into declared package names.
package requirements

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/viant/afs"
)

// namePattern matches a PEP 508 distribution name and whatever follows it.
var namePattern = regexp.MustCompile(`^([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)\s*(.*)$`)

// eggPattern pulls the project name out of a VCS or URL requirement.
var eggPattern = regexp.MustCompile(`#egg=([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)`)

// Requirement is one declared dependency line.
type Requirement struct {
	Line string // The logical line, trimmed, comments and continuations removed
	Name string // Distribution name, empty when it could not be determined
}

// Entry is the value recorded for the requirement: its name when one was
// found, the logical line otherwise.
func (r Requirement) Entry() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Line
}

// Parse reads requirement lines from reader. Blank lines, comments and pip
// option lines other than editables are not requirements and are skipped.
func Parse(reader io.Reader) ([]Requirement, error) {
	var result []Requirement

	scanner := bufio.NewScanner(reader)
	var pending strings.Builder
	for first := true; scanner.Scan(); first = false {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if strings.HasSuffix(line, `\`) {
			pending.WriteString(strings.TrimSuffix(line, `\`))
			continue
		}
		if pending.Len() > 0 {
			pending.WriteString(line)
			line = pending.String()
			pending.Reset()
		}

		if req, ok := parseLine(line); ok {
			result = append(result, req)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read requirements: %w", err)
	}

	if pending.Len() > 0 {
		if req, ok := parseLine(pending.String()); ok {
			result = append(result, req)
		}
	}

	return result, nil
}

func parseLine(raw string) (Requirement, bool) {
	line := stripComment(raw)
	if line == "" {
		return Requirement{}, false
	}

	if strings.HasPrefix(line, "-") {
		value, editable := editableValue(line)
		if !editable {
			return Requirement{}, false
		}
		return Requirement{Line: line, Name: eggName(value)}, true
	}

	name := requirementName(line)
	if name == "" {
		name = eggName(line)
	}
	return Requirement{Line: line, Name: name}, true
}

// stripComment drops a full-line comment or a " #" inline comment.
func stripComment(line string) string {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "#") {
		return ""
	}
	for i := 1; i < len(line); i++ {
		if line[i] == '#' && (line[i-1] == ' ' || line[i-1] == '\t') {
			return strings.TrimSpace(line[:i])
		}
	}
	return line
}

func editableValue(line string) (string, bool) {
	for _, flag := range []string{"--editable", "-e"} {
		if !strings.HasPrefix(line, flag) {
			continue
		}
		rest := strings.TrimPrefix(line, flag)
		rest = strings.TrimPrefix(strings.TrimSpace(rest), "=")
		return strings.TrimSpace(rest), true
	}
	return "", false
}

func eggName(location string) string {
	if m := eggPattern.FindStringSubmatch(location); m != nil {
		return m[1]
	}
	return ""
}

// requirementName returns the distribution name of a PEP 508 requirement,
// or "" when the text after the name is not a valid continuation.
func requirementName(line string) string {
	m := namePattern.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	name, rest := m[1], m[2]
	if rest == "" {
		return name
	}
	switch rest[0] {
	case '[', '(', ';', '<', '>', '=', '!', '~', '@', ',':
		return name
	}
	return ""
}

// Loader reads requirements files.
type Loader struct {
	logger *slog.Logger
	fs     afs.Service
}

// NewLoader creates a new requirements loader.
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: logger, fs: afs.New()}
}

// LoadFromFile parses the requirements file at location and returns one entry
// per requirement: the bare name when it resolves, otherwise the logical line.
func (l *Loader) LoadFromFile(ctx context.Context, location string) ([]string, error) {
	data, err := l.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read requirements %s: %w", location, err)
	}

	reqs, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}

	entries := make([]string, 0, len(reqs))
	for _, req := range reqs {
		if req.Name == "" {
			l.logger.Debug("keeping unparsed requirement verbatim", "path", location, "line", req.Line)
		}
		entries = append(entries, req.Entry())
	}
	return entries, nil
}
