package domain

// SystemStats mirrors the admin dashboard counters.
type SystemStats struct {
	TotalAlerts      int64            `json:"total_alerts"`
	ActiveAlerts     int64            `json:"active_alerts"`
	ResolvedAlerts   int64            `json:"resolved_alerts"`
	TotalCommunities int64            `json:"total_communities"`
	TotalUsers       int64            `json:"total_users"`
	AlertsBySeverity map[string]int64 `json:"alerts_by_severity"`
	RecentAlerts     int64            `json:"recent_alerts"` // last 7 days
}
