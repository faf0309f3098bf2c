package store

import (
	"math"
	"testing"
	"time"

	"crm_backend/internal/model"
)

// Fixed clock: Wednesday 2024-03-20 12:00 UTC. The containing week starts
// Monday 2024-03-18, the month on 2024-03-01.
var dashNow = time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

func TestDashboardMetrics(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "owner@example.com", false)
	other := createUser(t, db, "other@example.com", false)

	l1 := createLead(t, db, owner, leadSpec{
		status: model.LeadStatusNew, source: "website", active: true,
		createdAt: dashNow.Add(-3 * time.Hour),
	})
	createLead(t, db, owner, leadSpec{
		status: model.LeadStatusContacted, source: "referral", active: true,
		createdAt: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
	})
	l3 := createLead(t, db, owner, leadSpec{
		status: model.LeadStatusWon, source: "", active: true,
		createdAt: time.Date(2024, 2, 25, 10, 0, 0, 0, time.UTC),
		updatedAt: time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC),
	})
	createLead(t, db, owner, leadSpec{
		status: model.LeadStatusLost, source: "", active: true,
		createdAt: time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC),
		updatedAt: time.Date(2024, 1, 6, 10, 0, 0, 0, time.UTC),
	})
	l5 := createLead(t, db, owner, leadSpec{
		status: model.LeadStatusNew, source: "website", active: false,
		createdAt: dashNow.Add(-2 * time.Hour),
	})
	createLead(t, db, other, leadSpec{
		status: model.LeadStatusNew, source: "website", active: true,
		createdAt: dashNow.Add(-1 * time.Hour),
	})

	createActivity(t, db, l1, model.ActivityTypeCall, "Intro call", time.Date(2024, 3, 19, 9, 0, 0, 0, time.UTC), intPtr(15))
	createActivity(t, db, l1, model.ActivityTypeNote, "Research", time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), nil)
	createActivity(t, db, l3, model.ActivityTypeMeeting, "Viewing", time.Date(2024, 2, 25, 9, 0, 0, 0, time.UTC), nil)
	createActivity(t, db, l5, model.ActivityTypeEmail, "Follow up", time.Date(2024, 3, 19, 9, 0, 0, 0, time.UTC), nil)

	stats, err := Dashboard(db, Viewer{UserID: owner.ID}, dashNow)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	if stats.TotalLeads != 4 {
		t.Errorf("total_leads = %d, want 4", stats.TotalLeads)
	}
	if stats.TotalActivities != 3 {
		t.Errorf("total_activities = %d, want 3 (soft-deleted lead excluded)", stats.TotalActivities)
	}
	if stats.LeadsThisWeek != 1 {
		t.Errorf("leads_this_week = %d, want 1", stats.LeadsThisWeek)
	}
	if stats.LeadsThisMonth != 2 {
		t.Errorf("leads_this_month = %d, want 2", stats.LeadsThisMonth)
	}
	if stats.NewLeadsToday != 1 {
		t.Errorf("new_leads_today = %d, want 1", stats.NewLeadsToday)
	}
	if stats.NewLeads7d != 2 {
		t.Errorf("new_leads_7d = %d, want 2", stats.NewLeads7d)
	}
	if stats.NewLeads30d != 3 {
		t.Errorf("new_leads_30d = %d, want 3", stats.NewLeads30d)
	}

	if got := stats.LeadsByStatus["new"]; got != 1 {
		t.Errorf("leads_by_status[new] = %d, want 1", got)
	}
	if got := stats.LeadsBySource["website"]; got != 1 {
		t.Errorf("leads_by_source[website] = %d, want 1", got)
	}
	if got := stats.LeadsBySource["unknown"]; got != 2 {
		t.Errorf("leads_by_source[unknown] = %d, want 2 (blank sources bucketed)", got)
	}

	if stats.Won30d != 1 || stats.Lost30d != 0 {
		t.Errorf("won/lost 30d = %d/%d, want 1/0", stats.Won30d, stats.Lost30d)
	}
	if stats.WinRate30d != 1.0 {
		t.Errorf("win_rate_30d = %v, want 1.0", stats.WinRate30d)
	}

	if got := stats.ActivitiesByType30d["call"]; got != 1 {
		t.Errorf("activities_by_type_30d[call] = %d, want 1", got)
	}
	if got := stats.ActivitiesByType30d["meeting"]; got != 1 {
		t.Errorf("activities_by_type_30d[meeting] = %d, want 1", got)
	}
	// 3 windowed activities over 2 distinct leads.
	if math.Abs(stats.AvgActivitiesPerLead30d-1.5) > 1e-9 {
		t.Errorf("avg_activities_per_lead_30d = %v, want 1.5", stats.AvgActivitiesPerLead30d)
	}

	if len(stats.LeadsTrend8w) != 8 {
		t.Fatalf("leads_trend_8w has %d points, want 8", len(stats.LeadsTrend8w))
	}
	if stats.LeadsTrend8w[0].WeekStart != "2024-01-29" {
		t.Errorf("first trend point = %s, want 2024-01-29", stats.LeadsTrend8w[0].WeekStart)
	}
	if stats.LeadsTrend8w[7].WeekStart != "2024-03-18" {
		t.Errorf("last trend point = %s, want 2024-03-18", stats.LeadsTrend8w[7].WeekStart)
	}
	wantCounts := map[string]int64{
		"2024-02-19": 1, // lead created Sunday 2024-02-25
		"2024-03-11": 1, // lead created Friday 2024-03-15
		"2024-03-18": 1, // lead created today
	}
	for _, point := range stats.LeadsTrend8w {
		if point.Count != wantCounts[point.WeekStart] {
			t.Errorf("trend[%s] = %d, want %d", point.WeekStart, point.Count, wantCounts[point.WeekStart])
		}
	}

	if len(stats.RecentLeads) != 4 {
		t.Fatalf("recent_leads = %d, want 4", len(stats.RecentLeads))
	}
	if stats.RecentLeads[0].ID != l1.ID {
		t.Errorf("most recent lead = %d, want %d", stats.RecentLeads[0].ID, l1.ID)
	}
	if stats.RecentLeads[0].Name != "Jo Doe" {
		t.Errorf("recent lead name = %q, want %q", stats.RecentLeads[0].Name, "Jo Doe")
	}

	if len(stats.RecentActivities) != 3 {
		t.Fatalf("recent_activities = %d, want 3", len(stats.RecentActivities))
	}
	if stats.RecentActivities[0].Title != "Intro call" {
		t.Errorf("most recent activity = %q, want %q", stats.RecentActivities[0].Title, "Intro call")
	}
}

func TestDashboardAdminSeesAllLeads(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "owner@example.com", false)
	other := createUser(t, db, "other@example.com", false)
	admin := createUser(t, db, "admin@example.com", true)

	createLead(t, db, owner, leadSpec{active: true, createdAt: dashNow.Add(-time.Hour)})
	createLead(t, db, other, leadSpec{active: true, createdAt: dashNow.Add(-time.Hour)})

	stats, err := Dashboard(db, Viewer{UserID: admin.ID, IsAdmin: true}, dashNow)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if stats.TotalLeads != 2 {
		t.Errorf("admin total_leads = %d, want 2", stats.TotalLeads)
	}
}

func TestDashboardWinRateZeroDenominator(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "owner@example.com", false)
	createLead(t, db, owner, leadSpec{status: model.LeadStatusNew, active: true, createdAt: dashNow.Add(-time.Hour)})

	stats, err := Dashboard(db, Viewer{UserID: owner.ID}, dashNow)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if stats.WinRate30d != 0 {
		t.Errorf("win_rate_30d = %v, want 0 with no won/lost leads", stats.WinRate30d)
	}
	if stats.AvgActivitiesPerLead30d != 0 {
		t.Errorf("avg_activities_per_lead_30d = %v, want 0 with no activities", stats.AvgActivitiesPerLead30d)
	}
}

func TestDashboardEmpty(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "owner@example.com", false)

	stats, err := Dashboard(db, Viewer{UserID: owner.ID}, dashNow)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if stats.TotalLeads != 0 || stats.TotalActivities != 0 {
		t.Errorf("totals = %d/%d, want 0/0", stats.TotalLeads, stats.TotalActivities)
	}
	if len(stats.LeadsTrend8w) != 8 {
		t.Errorf("trend points = %d, want 8 zero-filled points", len(stats.LeadsTrend8w))
	}
	if len(stats.RecentLeads) != 0 || len(stats.RecentActivities) != 0 {
		t.Error("recent widgets should be empty")
	}
}
