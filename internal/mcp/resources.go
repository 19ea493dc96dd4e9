// ABOUTME: MCP resource implementations for the habit tracker.
// ABOUTME: Provides habits://today, habits://streaks, and habits://week resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harperreed/habits/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	todayURI   = "habits://today"
	streaksURI = "habits://streaks"
	weekURI    = "habits://week"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         todayURI,
		Name:        "Today's Habits",
		Description: "Every habit with today's log, if any",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         streaksURI,
		Name:        "Habit Streaks",
		Description: "Current consecutive-day streak for every habit",
		MIMEType:    "application/json",
	}, s.handleStreaksResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         weekURI,
		Name:        "This Week's Goals",
		Description: "Monday through Sunday goals with progress",
		MIMEType:    "application/json",
	}, s.handleWeekResource)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

type todayHabit struct {
	models.Habit
	Logged    bool    `json:"logged"`
	Completed bool    `json:"completed"`
	Notes     *string `json:"notes,omitempty"`
}

// Resource handlers

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	today := models.FormatDate(s.now())

	habits, err := s.repo.ListHabits(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	logs, err := s.repo.GetAllLogs(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}

	byHabit := make(map[int64]models.HabitLog)
	for _, l := range logs {
		if l.Date == today {
			byHabit[l.HabitID] = l
		}
	}

	items := make([]todayHabit, 0, len(habits))
	done := 0
	for _, h := range habits {
		item := todayHabit{Habit: h}
		if l, ok := byHabit[h.ID]; ok {
			item.Logged = true
			item.Completed = l.Completed
			item.Notes = l.Notes
			if l.Completed {
				done++
			}
		}
		items = append(items, item)
	}

	return jsonResource(todayURI, map[string]any{
		"date":      today,
		"habits":    items,
		"completed": done,
		"total":     len(habits),
	})
}

func (s *Server) handleStreaksResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	streaks, err := s.repo.GetHabitStreaks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get streaks: %w", err)
	}
	return jsonResource(streaksURI, map[string]any{"streaks": streaks})
}

func (s *Server) handleWeekResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	now := s.now()
	goals, err := s.repo.GetWeeklyGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get weekly goals: %w", err)
	}

	achieved := 0
	for _, g := range goals {
		if g.Achieved {
			achieved++
		}
	}

	return jsonResource(weekURI, map[string]any{
		"week_start": models.FormatDate(models.WeekStart(now)),
		"week_end":   models.FormatDate(models.WeekEnd(now)),
		"goals":      goals,
		"achieved":   achieved,
	})
}
