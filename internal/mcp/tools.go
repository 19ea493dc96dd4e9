// ABOUTME: MCP tool implementations for habits, logs, goals, and insights.
// ABOUTME: Inputs are validated here the same way the HTTP API validates them.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/habits/internal/insights"
	"github.com/harperreed/habits/internal/models"
	"github.com/harperreed/habits/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "create_habit",
		Description: "Create a new habit to track daily",
	}, s.handleCreateHabit)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_habits",
		Description: "List all habits ordered by name",
	}, s.handleListHabits)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_habit",
		Description: "Delete a habit along with its logs and goals",
	}, s.handleDeleteHabit)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_habit",
		Description: "Mark a habit completed or skipped for a day (defaults to today). Replaces any existing entry for that day.",
	}, s.handleLogHabit)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_habit_logs",
		Description: "Get a habit's logs over a trailing window of days, newest first",
	}, s.handleGetHabitLogs)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "create_goal",
		Description: "Set a completion target for a habit on a date",
	}, s.handleCreateGoal)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_goals",
		Description: "List goals, optionally filtered by habit and date range",
	}, s.handleListGoals)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_goal",
		Description: "Delete a goal",
	}, s.handleDeleteGoal)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "goal_progress",
		Description: "Show how many completions count toward a goal",
	}, s.handleGoalProgress)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_stats",
		Description: "Completion statistics over a trailing window, for one habit or all",
	}, s.handleGetStats)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_streaks",
		Description: "Current consecutive-day streak for every habit",
	}, s.handleGetStreaks)

	if s.insights != nil {
		mcp.AddTool(s.mcpServer, &mcp.Tool{
			Name:        "get_insights",
			Description: "Generate AI coaching insights from recent habit data",
		}, s.handleGetInsights)
	}
}

// Tool input/output types

type emptyInput struct{}

type idInput struct {
	ID int64 `json:"id" jsonschema:"Record id"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type createHabitInput struct {
	Name  string `json:"name" jsonschema:"Habit name, up to 100 characters"`
	Color string `json:"color,omitempty" jsonschema:"Hex color such as #28a745"`
}

type habitOutput struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	Message string `json:"message"`
}

type habitsOutput struct {
	Habits []models.Habit `json:"habits"`
}

type logHabitInput struct {
	HabitID   int64  `json:"habit_id" jsonschema:"Habit id"`
	Completed bool   `json:"completed" jsonschema:"true if done, false if skipped"`
	Notes     string `json:"notes,omitempty" jsonschema:"Optional notes"`
	Date      string `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD, defaults to today"`
}

type habitLogsInput struct {
	HabitID int64 `json:"habit_id" jsonschema:"Habit id"`
	Days    int   `json:"days,omitempty" jsonschema:"Trailing window in days (default 30)"`
}

type logsOutput struct {
	Logs []models.HabitLog `json:"logs"`
}

type createGoalInput struct {
	HabitID     int64  `json:"habit_id" jsonschema:"Habit id"`
	GoalDate    string `json:"goal_date" jsonschema:"Target day as YYYY-MM-DD"`
	TargetCount int    `json:"target_count,omitempty" jsonschema:"Completions needed (default 1)"`
	Notes       string `json:"notes,omitempty" jsonschema:"Optional notes"`
}

type goalOutput struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

type listGoalsInput struct {
	HabitID   int64  `json:"habit_id,omitempty" jsonschema:"Only goals for this habit"`
	StartDate string `json:"start_date,omitempty" jsonschema:"Earliest goal date, YYYY-MM-DD"`
	EndDate   string `json:"end_date,omitempty" jsonschema:"Latest goal date, YYYY-MM-DD"`
}

type goalsOutput struct {
	Goals []models.Goal `json:"goals"`
}

type statsInput struct {
	HabitID int64 `json:"habit_id,omitempty" jsonschema:"Only this habit; omit for all habits"`
	Days    int   `json:"days,omitempty" jsonschema:"Trailing window in days (default 30)"`
}

type streaksOutput struct {
	Streaks []models.Streak `json:"streaks"`
}

type insightsOutput struct {
	Insights string `json:"insights"`
	Provider string `json:"provider"`
}

func optionalID(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}

func windowDays(days int) int {
	if days <= 0 {
		return models.DefaultWindowDays
	}
	return days
}

func validateDate(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := models.ParseDate(value); err != nil {
		return fmt.Errorf("invalid %s: %w", field, err)
	}
	return nil
}

// habitName returns the habit's name, or an error naming the missing id.
func (s *Server) habitName(ctx context.Context, id int64) (string, error) {
	h, err := s.repo.GetHabit(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", fmt.Errorf("habit not found: %d", id)
		}
		return "", fmt.Errorf("failed to get habit: %w", err)
	}
	return h.Name, nil
}

// Tool handlers

func (s *Server) handleCreateHabit(ctx context.Context, req *mcp.CallToolRequest, input createHabitInput) (*mcp.CallToolResult, habitOutput, error) {
	if err := models.ValidateHabitName(input.Name); err != nil {
		return nil, habitOutput{}, err
	}
	if err := models.ValidateColor(input.Color); err != nil {
		return nil, habitOutput{}, err
	}
	name := strings.TrimSpace(input.Name)
	color := input.Color
	if color == "" {
		color = models.DefaultColor
	}

	id, err := s.repo.CreateHabit(ctx, name, color)
	if err != nil {
		return nil, habitOutput{}, fmt.Errorf("failed to create habit: %w", err)
	}

	return nil, habitOutput{
		ID:      id,
		Name:    name,
		Color:   color,
		Message: fmt.Sprintf("Created habit %q (ID: %d)", name, id),
	}, nil
}

func (s *Server) handleListHabits(ctx context.Context, req *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, habitsOutput, error) {
	habits, err := s.repo.ListHabits(ctx)
	if err != nil {
		return nil, habitsOutput{}, fmt.Errorf("failed to list habits: %w", err)
	}
	return nil, habitsOutput{Habits: habits}, nil
}

func (s *Server) handleDeleteHabit(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, simpleOutput, error) {
	deleted, err := s.repo.DeleteHabit(ctx, input.ID)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete habit: %w", err)
	}
	if !deleted {
		return nil, simpleOutput{}, fmt.Errorf("habit not found: %d", input.ID)
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Deleted habit %d", input.ID)}, nil
}

func (s *Server) handleLogHabit(ctx context.Context, req *mcp.CallToolRequest, input logHabitInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := validateDate("date", input.Date); err != nil {
		return nil, simpleOutput{}, err
	}
	name, err := s.habitName(ctx, input.HabitID)
	if err != nil {
		return nil, simpleOutput{}, err
	}

	date := input.Date
	if date == "" {
		date = models.FormatDate(s.now())
	}
	if err := s.repo.LogHabit(ctx, input.HabitID, input.Completed, models.StringPtr(input.Notes), date); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to log habit: %w", err)
	}

	status := "completed"
	if !input.Completed {
		status = "skipped"
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Logged %s as %s on %s", name, status, date)}, nil
}

func (s *Server) handleGetHabitLogs(ctx context.Context, req *mcp.CallToolRequest, input habitLogsInput) (*mcp.CallToolResult, logsOutput, error) {
	logs, err := s.repo.GetHabitLogs(ctx, input.HabitID, windowDays(input.Days))
	if err != nil {
		return nil, logsOutput{}, fmt.Errorf("failed to get logs: %w", err)
	}
	return nil, logsOutput{Logs: logs}, nil
}

func (s *Server) handleCreateGoal(ctx context.Context, req *mcp.CallToolRequest, input createGoalInput) (*mcp.CallToolResult, goalOutput, error) {
	if input.GoalDate == "" {
		return nil, goalOutput{}, fmt.Errorf("goal_date is required")
	}
	if err := validateDate("goal_date", input.GoalDate); err != nil {
		return nil, goalOutput{}, err
	}
	if input.TargetCount < 0 {
		return nil, goalOutput{}, fmt.Errorf("target_count must not be negative")
	}
	name, err := s.habitName(ctx, input.HabitID)
	if err != nil {
		return nil, goalOutput{}, err
	}

	id, err := s.repo.CreateGoal(ctx, input.HabitID, input.GoalDate, input.TargetCount, models.StringPtr(input.Notes))
	if err != nil {
		return nil, goalOutput{}, fmt.Errorf("failed to create goal: %w", err)
	}

	target := input.TargetCount
	if target == 0 {
		target = models.DefaultTargetCount
	}
	return nil, goalOutput{
		ID:      id,
		Message: fmt.Sprintf("Goal for %s on %s: %d completion(s) (ID: %d)", name, input.GoalDate, target, id),
	}, nil
}

func (s *Server) handleListGoals(ctx context.Context, req *mcp.CallToolRequest, input listGoalsInput) (*mcp.CallToolResult, goalsOutput, error) {
	if err := validateDate("start_date", input.StartDate); err != nil {
		return nil, goalsOutput{}, err
	}
	if err := validateDate("end_date", input.EndDate); err != nil {
		return nil, goalsOutput{}, err
	}

	goals, err := s.repo.GetGoals(ctx, storage.GoalFilter{
		HabitID:   optionalID(input.HabitID),
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	})
	if err != nil {
		return nil, goalsOutput{}, fmt.Errorf("failed to list goals: %w", err)
	}
	return nil, goalsOutput{Goals: goals}, nil
}

func (s *Server) handleDeleteGoal(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, simpleOutput, error) {
	deleted, err := s.repo.DeleteGoal(ctx, input.ID)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete goal: %w", err)
	}
	if !deleted {
		return nil, simpleOutput{}, fmt.Errorf("goal not found: %d", input.ID)
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Deleted goal %d", input.ID)}, nil
}

func (s *Server) handleGoalProgress(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, models.GoalProgress, error) {
	p, err := s.repo.GetGoalProgress(ctx, input.ID)
	if err != nil {
		return nil, models.GoalProgress{}, fmt.Errorf("failed to get goal progress: %w", err)
	}
	if p == nil {
		return nil, models.GoalProgress{}, fmt.Errorf("goal not found: %d", input.ID)
	}
	return nil, *p, nil
}

func (s *Server) handleGetStats(ctx context.Context, req *mcp.CallToolRequest, input statsInput) (*mcp.CallToolResult, models.Stats, error) {
	stats, err := s.repo.GetStats(ctx, optionalID(input.HabitID), windowDays(input.Days))
	if err != nil {
		return nil, models.Stats{}, fmt.Errorf("failed to get stats: %w", err)
	}
	return nil, *stats, nil
}

func (s *Server) handleGetStreaks(ctx context.Context, req *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, streaksOutput, error) {
	streaks, err := s.repo.GetHabitStreaks(ctx)
	if err != nil {
		return nil, streaksOutput{}, fmt.Errorf("failed to get streaks: %w", err)
	}
	return nil, streaksOutput{Streaks: streaks}, nil
}

func (s *Server) handleGetInsights(ctx context.Context, req *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, insightsOutput, error) {
	data, err := insights.Gather(ctx, s.repo)
	if err != nil {
		return nil, insightsOutput{}, fmt.Errorf("failed to gather habit data: %w", err)
	}
	res := s.insights.Insights(ctx, data)
	if res.Err != nil {
		return nil, insightsOutput{}, fmt.Errorf("%s: %w", res.Text, res.Err)
	}
	return nil, insightsOutput{Insights: res.Text, Provider: res.Provider}, nil
}
