// ABOUTME: Server-rendered dashboard assembled from concurrent storage reads.
// ABOUTME: Shows today's checklist, the Monday-Sunday goal calendar, and recent logs.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/habits/internal/models"
	"golang.org/x/sync/errgroup"
)

// dashboardLogDays is the window shown in the recent activity list.
const dashboardLogDays = 7

// Dashboard is the view model for index.html.tmpl.
type Dashboard struct {
	Today         string
	Habits        []models.Habit
	Stats         *models.Stats
	TodayLogs     map[int64]models.HabitLog
	StreakByHabit map[int64]int
	WeekDates     []time.Time
	WeeklyGoals   []models.WeeklyGoal
	Provider      string
	Logs          []models.HabitLog
}

func (s *Server) buildDashboard(ctx context.Context) (*Dashboard, error) {
	now := s.now()
	d := &Dashboard{
		Today:         models.FormatDate(now),
		WeekDates:     models.WeekDates(now),
		Provider:      s.insights.ProviderName(),
		TodayLogs:     map[int64]models.HabitLog{},
		StreakByHabit: map[int64]int{},
	}

	var streaks []models.Streak
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Habits, err = s.store.ListHabits(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.Stats, err = s.store.GetStats(ctx, nil, models.DefaultWindowDays)
		return err
	})
	g.Go(func() (err error) {
		d.Logs, err = s.store.GetAllLogs(ctx, dashboardLogDays)
		return err
	})
	g.Go(func() (err error) {
		d.WeeklyGoals, err = s.store.GetWeeklyGoals(ctx)
		return err
	})
	g.Go(func() (err error) {
		streaks, err = s.store.GetHabitStreaks(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, l := range d.Logs {
		if l.Date == d.Today {
			d.TodayLogs[l.HabitID] = l
		}
	}
	for _, st := range streaks {
		d.StreakByHabit[st.ID] = st.CurrentStreak
	}
	if d.Stats == nil {
		d.Stats = &models.Stats{}
	}
	return d, nil
}

func (s *Server) handleIndex(c *gin.Context) {
	d, err := s.buildDashboard(c.Request.Context())
	if err != nil {
		s.logger.Error("build dashboard", "err", err, "request_id", c.GetString(requestIDKey))
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}
	c.HTML(http.StatusOK, "index.html.tmpl", d)
}
