// ABOUTME: Markdown export of habit data, one file per habit.
// ABOUTME: Files carry YAML frontmatter with logs and goals plus a readable checklist.

package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/harperreed/habits/internal/models"
	"gopkg.in/yaml.v3"
)

const (
	markdownExt    = ".md"
	frontmatterSep = "---"
)

// WriteMarkdown writes one markdown file per habit into dir and returns the
// paths written, in habit order.
func WriteMarkdown(dir string, data *ExportData) ([]string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	paths := make([]string, 0, len(data.Habits))
	for i := range data.Habits {
		h := &data.Habits[i]
		content, err := renderFrontmatter(h, renderChecklist(h))
		if err != nil {
			return nil, fmt.Errorf("render %q: %w", h.Name, err)
		}
		path := markdownPath(dir, h.Habit)
		if err := atomicWrite(path, []byte(content)); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ReadMarkdown loads every habit file in dir into an export document. The
// checklist body is ignored; frontmatter is authoritative.
func ReadMarkdown(dir string) (*ExportData, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read export directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), markdownExt) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	data := &ExportData{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC(),
		Tool:       "habits",
		Habits:     make([]ExportHabit, 0, len(names)),
	}
	for _, name := range names {
		h, err := readHabitFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		data.Habits = append(data.Habits, *h)
	}
	return data, nil
}

func readHabitFile(path string) (*ExportHabit, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	yamlStr, _ := parseFrontmatter(string(raw))
	if yamlStr == "" {
		return nil, fmt.Errorf("no frontmatter in %s", path)
	}

	var h ExportHabit
	if err := yaml.Unmarshal([]byte(yamlStr), &h); err != nil {
		return nil, fmt.Errorf("parse frontmatter in %s: %w", path, err)
	}
	return &h, nil
}

// markdownPath returns dir/<slug>-<id>.md.
func markdownPath(dir string, h models.Habit) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%d%s", slugify(h.Name), h.ID, markdownExt))
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "habit"
	}
	return slug
}

func renderChecklist(h *ExportHabit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n# %s\n", h.Name)

	if len(h.Logs) > 0 {
		b.WriteString("\n## Log\n\n")
		for _, l := range h.Logs {
			mark := " "
			if l.Completed {
				mark = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s", mark, l.Date)
			if n := l.NotesOrEmpty(); n != "" {
				fmt.Fprintf(&b, ": %s", n)
			}
			b.WriteByte('\n')
		}
	}

	if len(h.Goals) > 0 {
		b.WriteString("\n## Goals\n\n")
		for _, g := range h.Goals {
			fmt.Fprintf(&b, "- %s: %d completion(s)", g.GoalDate, g.TargetCount)
			if g.Notes != nil && *g.Notes != "" {
				fmt.Fprintf(&b, " (%s)", *g.Notes)
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func renderFrontmatter(v any, body string) (string, error) {
	fm, err := yaml.Marshal(v)
	if err != nil {
		return "", err
	}
	return frontmatterSep + "\n" + string(fm) + frontmatterSep + "\n" + body, nil
}

// parseFrontmatter splits a document into its YAML frontmatter and body.
// A document without frontmatter returns "" and the whole content.
func parseFrontmatter(content string) (string, string) {
	if !strings.HasPrefix(content, frontmatterSep+"\n") {
		return "", content
	}
	rest := content[len(frontmatterSep)+1:]
	end := strings.Index(rest, "\n"+frontmatterSep+"\n")
	if end < 0 {
		return "", content
	}
	return rest[:end+1], rest[end+len(frontmatterSep)+2:]
}

// atomicWrite writes via a temp file in the same directory and renames it
// into place.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*"+markdownExt)
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
