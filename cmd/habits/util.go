// ABOUTME: Shared CLI helpers for output styling, id parsing, and dates.
// ABOUTME: Dates accept YYYY-MM-DD or natural language such as "yesterday".
package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/habits/internal/models"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	faint  = color.New(color.Faint)
	bold   = color.New(color.Bold)
)

var dateParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// now is the CLI clock; tests pin it.
var now = time.Now

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id: %s", what, s)
	}
	return id, nil
}

// parseDay resolves a date argument to YYYY-MM-DD. Empty stays empty.
func parseDay(s string, base time.Time) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if _, err := models.ParseDate(s); err == nil {
		return s, nil
	}

	r, err := dateParser.Parse(s, base)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", s, err)
	}
	if r == nil {
		return "", fmt.Errorf("unrecognized date %q (use YYYY-MM-DD or words like \"yesterday\")", s)
	}
	return models.FormatDate(r.Time), nil
}

// truncate shortens s to maxLen runes, ending in "...".
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func check(ok bool) string {
	if ok {
		return green.Sprint("✓")
	}
	return red.Sprint("✗")
}

func percent(rate float64) string {
	return fmt.Sprintf("%.0f%%", rate*100)
}
