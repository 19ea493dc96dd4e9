// ABOUTME: Habit and HabitLog models for daily habit tracking.
// ABOUTME: Includes boundary validation for names, colors, and notes.
package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultColor is used when a habit is created without a color.
const DefaultColor = "#007bff"

// MaxHabitNameLength bounds habit names in runes.
const MaxHabitNameLength = 100

var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Habit is a user-defined recurring behavior.
type Habit struct {
	ID        int64     `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Color     string    `json:"color" yaml:"color"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// HabitLog records whether a habit was completed on a date.
// At most one log exists per (HabitID, Date).
type HabitLog struct {
	ID        int64   `json:"id" yaml:"id"`
	HabitID   int64   `json:"habit_id" yaml:"habit_id"`
	Date      string  `json:"date" yaml:"date"`
	Completed bool    `json:"completed" yaml:"completed"`
	Notes     *string `json:"notes" yaml:"notes,omitempty"`

	// Populated by queries that join habits.
	HabitName  string `json:"habit_name,omitempty" yaml:"-"`
	HabitColor string `json:"habit_color,omitempty" yaml:"-"`
}

// NotesOrEmpty returns the notes text or "" when unset.
func (l HabitLog) NotesOrEmpty() string {
	if l.Notes == nil {
		return ""
	}
	return *l.Notes
}

// ValidateHabitName checks that a habit name is present and reasonably short.
func ValidateHabitName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("habit name is required")
	}
	if utf8.RuneCountInString(trimmed) > MaxHabitNameLength {
		return fmt.Errorf("habit name exceeds %d characters", MaxHabitNameLength)
	}
	return nil
}

// ValidateColor accepts #rgb and #rrggbb hex colors. Empty means default.
func ValidateColor(color string) error {
	if color == "" {
		return nil
	}
	if !colorPattern.MatchString(color) {
		return fmt.Errorf("invalid color %q: use #rgb or #rrggbb", color)
	}
	return nil
}

// StringPtr returns nil for an empty string, otherwise a pointer to s.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
