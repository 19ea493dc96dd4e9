// ABOUTME: Builds the natural-language prompt sent to insight providers.
// ABOUTME: Pure and deterministic; both prompt styles share the same data and task text.
package insights

import (
	"fmt"
	"math"
	"strings"

	"github.com/harperreed/habits/internal/models"
)

// recentLogLimit caps the activity lines included in a prompt.
const recentLogLimit = 10

// SystemPrompt carries the coach framing for providers with a system role.
const SystemPrompt = "You are a helpful habit coach. Analyze the user's habit tracking data and provide personalized insights. Be concise and action-oriented. Keep it friendly and encouraging."

const coachHeader = "You are a helpful habit coach. Analyze the user's habit tracking data and provide personalized insights.\n\nDATA:\n"

const dataHeader = "Analyze the user's habit tracking data and provide personalized insights.\n\nDATA:\n\n"

const taskBlock = `
TASK:
Based on this data, provide a concise, actionable analysis. Include:

1. **Strengths**: What patterns show good consistency?
2. **Patterns**: Any noticeable trends (day-of-week, time-based)?
3. **Goal Progress**: How well are you meeting your weekly goals?
4. **Recommendations**: 2-3 specific suggestions to improve goal achievement.
5. **Encouragement**: A brief motivational note.

Keep it friendly, concise, and action-oriented. Avoid generic advice.

Format your response with clear headings and bullet points.`

// PromptStyle selects the prompt framing.
type PromptStyle int

const (
	// StyleCoach embeds the coach framing in the prompt itself.
	StyleCoach PromptStyle = iota
	// StyleData uses a neutral header and expects SystemPrompt alongside.
	StyleData
)

// HabitData is everything a prompt is built from.
type HabitData struct {
	Habits      []models.Habit      `json:"habits"`
	Stats       *models.Stats       `json:"stats"`
	Logs        []models.HabitLog   `json:"logs"`
	Streaks     []models.Streak     `json:"streaks"`
	WeeklyGoals []models.WeeklyGoal `json:"weekly_goals"`
}

// BuildPrompt renders data into a prompt. Sections with no source data are
// omitted; the order is fixed.
func BuildPrompt(data HabitData, style PromptStyle) string {
	var sb strings.Builder

	// Coach style separates sections with a blank line.
	sep := "\n"
	if style == StyleCoach {
		sb.WriteString(coachHeader)
	} else {
		sb.WriteString(dataHeader)
		sep = ""
	}

	if len(data.Habits) > 0 {
		names := make([]string, len(data.Habits))
		for i, h := range data.Habits {
			names[i] = h.Name
		}
		fmt.Fprintf(&sb, "%sActive habits: %s\n", sep, strings.Join(names, ", "))
	}

	if data.Stats != nil {
		fmt.Fprintf(&sb, "%sOverall completion rate: %d%%\n", sep, int(math.Round(data.Stats.CompletionRate*100)))
		fmt.Fprintf(&sb, "Total logged activities: %d\n", data.Stats.TotalLogs)
		fmt.Fprintf(&sb, "Completed activities: %d\n", data.Stats.Completed)
	}

	var active []models.Streak
	for _, s := range data.Streaks {
		if s.CurrentStreak > 0 {
			active = append(active, s)
		}
	}
	if len(active) > 0 {
		fmt.Fprintf(&sb, "%sCurrent streaks:\n", sep)
		for _, s := range active {
			fmt.Fprintf(&sb, "- %s: %d days\n", s.Name, s.CurrentStreak)
		}
	}

	if len(data.Logs) > 0 {
		fmt.Fprintf(&sb, "%sRecent activity patterns:\n", sep)
		logs := data.Logs
		if len(logs) > recentLogLimit {
			logs = logs[:recentLogLimit]
		}
		for _, l := range logs {
			fmt.Fprintf(&sb, "- %s: %s %s\n", l.Date, mark(l.Completed), nameOrUnknown(l.HabitName))
		}
	}

	if len(data.WeeklyGoals) > 0 {
		fmt.Fprintf(&sb, "%sWeekly goals:\n", sep)
		for _, g := range data.WeeklyGoals {
			fmt.Fprintf(&sb, "- %s: %s %s (Target: %d/%d)\n",
				g.GoalDate, mark(g.Achieved), nameOrUnknown(g.HabitName), g.Completed, g.Target)
		}
	}

	sb.WriteString(taskBlock)
	return sb.String()
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

func nameOrUnknown(name string) string {
	if name == "" {
		return "Unknown"
	}
	return name
}
