// ABOUTME: JSON API handlers for habits, logs, goals, stats, and insights.
// ABOUTME: Bad input is 400, missing rows 404, storage failures 500.
package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/habits/internal/insights"
	"github.com/harperreed/habits/internal/models"
	"github.com/harperreed/habits/internal/storage"
)

const (
	habitNotFound = "Habit not found"
	goalNotFound  = "Goal not found"

	// unavailableMessage answers insight requests that never reached a provider.
	unavailableMessage = "Unable to generate insights. Please check your API configuration."
)

type createHabitRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

type logHabitRequest struct {
	HabitID   int64   `json:"habit_id" binding:"required"`
	Completed *bool   `json:"completed" binding:"required"`
	Notes     *string `json:"notes"`
	Date      string  `json:"date"`
}

type createGoalRequest struct {
	HabitID     int64   `json:"habit_id" binding:"required"`
	GoalDate    string  `json:"goal_date" binding:"required"`
	TargetCount *int    `json:"target_count"`
	Notes       *string `json:"notes"`
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"detail": msg})
}

func notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, gin.H{"detail": msg})
}

func (s *Server) serverError(c *gin.Context, err error) {
	s.logger.Error("request failed", "path", c.Request.URL.Path, "err", err, "request_id", c.GetString(requestIDKey))
	c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

// queryID parses an optional id query parameter; nil when absent.
func queryID(c *gin.Context, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		badRequest(c, "invalid "+name)
		return nil, false
	}
	return &v, true
}

func queryDate(c *gin.Context, name string) (string, bool) {
	raw := c.Query(name)
	if raw == "" {
		return "", true
	}
	if _, err := models.ParseDate(raw); err != nil {
		badRequest(c, err.Error())
		return "", false
	}
	return raw, true
}

// requireHabit answers 404 when the habit does not exist.
func (s *Server) requireHabit(c *gin.Context, id int64) bool {
	if _, err := s.store.GetHabit(c.Request.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			notFound(c, habitNotFound)
		} else {
			s.serverError(c, err)
		}
		return false
	}
	return true
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleCreateHabit(c *gin.Context) {
	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return
	}
	if err := models.ValidateHabitName(req.Name); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := models.ValidateColor(req.Color); err != nil {
		badRequest(c, err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Color == "" {
		req.Color = models.DefaultColor
	}

	id, err := s.store.CreateHabit(c.Request.Context(), req.Name, req.Color)
	if err != nil {
		s.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "name": req.Name, "color": req.Color})
}

func (s *Server) handleListHabits(c *gin.Context) {
	habits, err := s.store.ListHabits(c.Request.Context())
	if err != nil {
		s.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habits": habits})
}

func (s *Server) handleDeleteHabit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	deleted, err := s.store.DeleteHabit(c.Request.Context(), id)
	if err != nil {
		s.serverError(c, err)
		return
	}
	if !deleted {
		notFound(c, habitNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleHabitLogs(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	days, ok := queryInt(c, "days", models.DefaultWindowDays)
	if !ok {
		return
	}
	logs, err := s.store.GetHabitLogs(c.Request.Context(), id, days)
	if err != nil {
		s.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func (s *Server) handleLogHabit(c *gin.Context) {
	var req logHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "habit_id and completed are required")
		return
	}
	if req.Date != "" {
		if _, err := models.ParseDate(req.Date); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	if !s.requireHabit(c, req.HabitID) {
		return
	}

	if err := s.store.LogHabit(c.Request.Context(), req.HabitID, *req.Completed, req.Notes, req.Date); err != nil {
		s.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleCreateGoal(c *gin.Context) {
	var req createGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "habit_id and goal_date are required")
		return
	}
	if _, err := models.ParseDate(req.GoalDate); err != nil {
		badRequest(c, err.Error())
		return
	}
	target := models.DefaultTargetCount
	if req.TargetCount != nil {
		if *req.TargetCount < 0 {
			badRequest(c, "target_count must not be negative")
			return
		}
		if *req.TargetCount > 0 {
			target = *req.TargetCount
		}
	}
	if !s.requireHabit(c, req.HabitID) {
		return
	}

	id, err := s.store.CreateGoal(c.Request.Context(), req.HabitID, req.GoalDate, target, req.Notes)
	if err != nil {
		s.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "message": "Goal created successfully"})
}

func (s *Server) handleListGoals(c *gin.Context) {
	habitID, ok := queryID(c, "habit_id")
	if !ok {
		return
	}
	start, ok := queryDate(c, "start_date")
	if !ok {
		return
	}
	end, ok := queryDate(c, "end_date")
	if !ok {
		return
	}

	goals, err := s.store.GetGoals(c.Request.Context(), storage.GoalFilter{
		HabitID:   habitID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		s.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

func (s *Server) handleWeeklyGoals(c *gin.Context) {
	goals, err := s.store.GetWeeklyGoals(c.Request.Context())
	if err != nil {
		s.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

func (s *Server) handleGoalProgress(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	progress, err := s.store.GetGoalProgress(c.Request.Context(), id)
	if err != nil {
		s.serverError(c, err)
		return
	}
	if progress == nil {
		notFound(c, goalNotFound)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (s *Server) handleDeleteGoal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	deleted, err := s.store.DeleteGoal(c.Request.Context(), id)
	if err != nil {
		s.serverError(c, err)
		return
	}
	if !deleted {
		notFound(c, goalNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleStats(c *gin.Context) {
	habitID, ok := queryID(c, "habit_id")
	if !ok {
		return
	}
	days, ok := queryInt(c, "days", models.DefaultWindowDays)
	if !ok {
		return
	}
	stats, err := s.store.GetStats(c.Request.Context(), habitID, days)
	if err != nil {
		s.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleStreaks(c *gin.Context) {
	streaks, err := s.store.GetHabitStreaks(c.Request.Context())
	if err != nil {
		s.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"streaks": streaks})
}

// handleInsights always answers 200. Failures carry an error detail next to
// the fallback text.
func (s *Server) handleInsights(c *gin.Context) {
	if s.insights == nil {
		c.JSON(http.StatusOK, gin.H{"insights": unavailableMessage, "error": insights.ErrNoProvider.Error()})
		return
	}

	data, err := insights.Gather(c.Request.Context(), s.store)
	if err != nil {
		s.logger.Error("gather insight data", "err", err, "request_id", c.GetString(requestIDKey))
		c.JSON(http.StatusOK, gin.H{"insights": unavailableMessage, "error": err.Error()})
		return
	}

	res := s.insights.Insights(c.Request.Context(), data)
	body := gin.H{"insights": res.Text, "provider": res.Provider}
	if res.Err != nil {
		body["error"] = res.Err.Error()
	}
	c.JSON(http.StatusOK, body)
}
