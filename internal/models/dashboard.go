package models

// Dashboard is the combined analytics payload for the admin dashboard.
type Dashboard struct {
	Summary            DashboardSummary     `json:"summary"`
	DailyTrend         []DailyTrend         `json:"dailyTrend"`
	StatusDistribution []StatusDistribution `json:"statusDistribution"`
	PeakHours          []PeakHour           `json:"peakHours"`
}

type DashboardSummary struct {
	Total      int64 `json:"total"`
	Active     int64 `json:"active"`
	Exited     int64 `json:"exited"`
	Overstayed int64 `json:"overstayed"`
}

type DailyTrend struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type StatusDistribution struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type PeakHour struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}
