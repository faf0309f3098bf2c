package store

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"crm_backend/internal/model"
)

// DashboardStats is the full metrics payload, recomputed on every request
// from a single clock read so the time windows never skew against each
// other within one response.
type DashboardStats struct {
	TotalLeads      int64 `json:"total_leads"`
	TotalActivities int64 `json:"total_activities"`

	// Calendar-boundary counts (ISO week starting Monday, first of month).
	LeadsThisWeek  int64 `json:"leads_this_week"`
	LeadsThisMonth int64 `json:"leads_this_month"`

	LeadsByStatus map[string]int64 `json:"leads_by_status"`
	LeadsBySource map[string]int64 `json:"leads_by_source"`

	// Rolling windows, independent of the calendar fields above.
	NewLeadsToday int64 `json:"new_leads_today"`
	NewLeads7d    int64 `json:"new_leads_7d"`
	NewLeads30d   int64 `json:"new_leads_30d"`

	Won30d     int64   `json:"won_30d"`
	Lost30d    int64   `json:"lost_30d"`
	WinRate30d float64 `json:"win_rate_30d"`

	ActivitiesByType30d     map[string]int64 `json:"activities_by_type_30d"`
	AvgActivitiesPerLead30d float64          `json:"avg_activities_per_lead_30d"`

	LeadsTrend8w     []WeekPoint      `json:"leads_trend_8w"`
	RecentLeads      []RecentLead     `json:"recent_leads"`
	RecentActivities []RecentActivity `json:"recent_activities"`
}

type WeekPoint struct {
	WeekStart string `json:"week_start"`
	Count     int64  `json:"count"`
}

type RecentLead struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

type RecentActivity struct {
	ID     uint      `json:"id"`
	LeadID uint      `json:"lead_id"`
	Type   string    `json:"type"`
	Title  string    `json:"title"`
	At     time.Time `json:"at"`
}

const (
	recentLeadLimit     = 5
	recentActivityLimit = 10
)

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns Monday 00:00 of t's week.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

type groupCount struct {
	Label string
	Count int64
}

// Dashboard computes the metrics object for the viewer's visible lead set.
// All windows are derived from the caller-supplied now.
func Dashboard(db *gorm.DB, v Viewer, now time.Time) (*DashboardStats, error) {
	stats := &DashboardStats{
		LeadsByStatus:       map[string]int64{},
		LeadsBySource:       map[string]int64{},
		ActivitiesByType30d: map[string]int64{},
		LeadsTrend8w:        []WeekPoint{},
		RecentLeads:         []RecentLead{},
		RecentActivities:    []RecentActivity{},
	}

	leads := func() *gorm.DB { return scopedLeads(db, v) }
	activities := func() *gorm.DB {
		q := db.Model(&model.Activity{}).
			Joins("JOIN leads ON activities.lead_id = leads.id").
			Where("leads.is_active = ?", true)
		if !v.IsAdmin {
			q = q.Where("leads.user_id = ?", v.UserID)
		}
		return q
	}

	if err := leads().Count(&stats.TotalLeads).Error; err != nil {
		return nil, fmt.Errorf("counting leads: %w", err)
	}
	if err := activities().Count(&stats.TotalActivities).Error; err != nil {
		return nil, fmt.Errorf("counting activities: %w", err)
	}

	// Calendar boundaries.
	if err := leads().Where("created_at >= ?", startOfWeek(now)).Count(&stats.LeadsThisWeek).Error; err != nil {
		return nil, fmt.Errorf("counting leads this week: %w", err)
	}
	if err := leads().Where("created_at >= ?", startOfMonth(now)).Count(&stats.LeadsThisMonth).Error; err != nil {
		return nil, fmt.Errorf("counting leads this month: %w", err)
	}

	// Group by status / source.
	var statusRows []groupCount
	if err := leads().Select("status AS label, COUNT(id) AS count").Group("status").Scan(&statusRows).Error; err != nil {
		return nil, fmt.Errorf("grouping leads by status: %w", err)
	}
	for _, row := range statusRows {
		stats.LeadsByStatus[row.Label] = row.Count
	}

	var sourceRows []groupCount
	if err := leads().Select("source AS label, COUNT(id) AS count").Group("source").Scan(&sourceRows).Error; err != nil {
		return nil, fmt.Errorf("grouping leads by source: %w", err)
	}
	for _, row := range sourceRows {
		label := row.Label
		if strings.TrimSpace(label) == "" {
			label = "unknown"
		}
		stats.LeadsBySource[label] += row.Count
	}

	// Rolling windows.
	d7 := now.AddDate(0, 0, -7)
	d30 := now.AddDate(0, 0, -30)
	if err := leads().Where("created_at >= ?", startOfDay(now)).Count(&stats.NewLeadsToday).Error; err != nil {
		return nil, fmt.Errorf("counting leads today: %w", err)
	}
	if err := leads().Where("created_at >= ?", d7).Count(&stats.NewLeads7d).Error; err != nil {
		return nil, fmt.Errorf("counting leads 7d: %w", err)
	}
	if err := leads().Where("created_at >= ?", d30).Count(&stats.NewLeads30d).Error; err != nil {
		return nil, fmt.Errorf("counting leads 30d: %w", err)
	}

	// Win/loss over the trailing 30 days, observed via updated_at.
	if err := leads().Where("status = ? AND updated_at >= ?", model.LeadStatusWon, d30).Count(&stats.Won30d).Error; err != nil {
		return nil, fmt.Errorf("counting won leads: %w", err)
	}
	if err := leads().Where("status = ? AND updated_at >= ?", model.LeadStatusLost, d30).Count(&stats.Lost30d).Error; err != nil {
		return nil, fmt.Errorf("counting lost leads: %w", err)
	}
	if denom := stats.Won30d + stats.Lost30d; denom > 0 {
		stats.WinRate30d = float64(stats.Won30d) / float64(denom)
	}

	// Activity breakdown within the trailing 30 days.
	var typeRows []groupCount
	err := activities().Where("activity_date >= ?", d30).
		Select("activity_type AS label, COUNT(activities.id) AS count").
		Group("activity_type").
		Scan(&typeRows).Error
	if err != nil {
		return nil, fmt.Errorf("grouping activities by type: %w", err)
	}
	for _, row := range typeRows {
		stats.ActivitiesByType30d[row.Label] = row.Count
	}

	var actCount30 int64
	if err := activities().Where("activity_date >= ?", d30).Count(&actCount30).Error; err != nil {
		return nil, fmt.Errorf("counting activities 30d: %w", err)
	}
	var activeLeadCount int64
	err = activities().Where("activity_date >= ?", d30).
		Distinct("activities.lead_id").
		Count(&activeLeadCount).Error
	if err != nil {
		return nil, fmt.Errorf("counting leads with activities: %w", err)
	}
	if activeLeadCount > 0 {
		stats.AvgActivitiesPerLead30d = float64(actCount30) / float64(activeLeadCount)
	}

	// Weekly creation trend, one point per calendar week, oldest first.
	thisWeek := startOfWeek(now)
	for i := 7; i >= 0; i-- {
		weekStart := thisWeek.AddDate(0, 0, -7*i)
		var count int64
		err := leads().Where("created_at >= ? AND created_at < ?", weekStart, weekStart.AddDate(0, 0, 7)).
			Count(&count).Error
		if err != nil {
			return nil, fmt.Errorf("counting weekly trend: %w", err)
		}
		stats.LeadsTrend8w = append(stats.LeadsTrend8w, WeekPoint{
			WeekStart: weekStart.Format("2006-01-02"),
			Count:     count,
		})
	}

	// Recent widgets.
	var recentLeads []model.Lead
	err = leads().Order("created_at DESC, id DESC").Limit(recentLeadLimit).Find(&recentLeads).Error
	if err != nil {
		return nil, fmt.Errorf("fetching recent leads: %w", err)
	}
	for _, l := range recentLeads {
		source := l.Source
		if source == "" {
			source = "unknown"
		}
		stats.RecentLeads = append(stats.RecentLeads, RecentLead{
			ID:        l.ID,
			Name:      strings.TrimSpace(l.FirstName + " " + l.LastName),
			Status:    string(l.Status),
			Source:    source,
			CreatedAt: l.CreatedAt,
		})
	}

	var recentActs []model.Activity
	err = activities().Select("activities.*").
		Order("activity_date DESC, activities.id DESC").
		Limit(recentActivityLimit).
		Find(&recentActs).Error
	if err != nil {
		return nil, fmt.Errorf("fetching recent activities: %w", err)
	}
	for _, a := range recentActs {
		stats.RecentActivities = append(stats.RecentActivities, RecentActivity{
			ID:     a.ID,
			LeadID: a.LeadID,
			Type:   string(a.ActivityType),
			Title:  a.Title,
			At:     a.ActivityDate,
		})
	}

	return stats, nil
}
