package domain

import "time"

type Timeframe string

const (
	TimeframeDay   Timeframe = "day"
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
	TimeframeYear  Timeframe = "year"
)

func (t Timeframe) Valid() bool {
	switch t {
	case TimeframeDay, TimeframeWeek, TimeframeMonth, TimeframeYear:
		return true
	}
	return false
}

// Since returns the start of the window ending at now.
func (t Timeframe) Since(now time.Time) time.Time {
	switch t {
	case TimeframeWeek:
		return now.AddDate(0, 0, -7)
	case TimeframeMonth:
		return now.AddDate(0, -1, 0)
	case TimeframeYear:
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, 0, -1)
	}
}

type SOSStats struct {
	Timeframe          Timeframe          `json:"timeframe"`
	Since              time.Time          `json:"since"`
	Total              int64              `json:"total"`
	Pending            int64              `json:"pending"`
	Approved           int64              `json:"approved"`
	Rejected           int64              `json:"rejected"`
	ByCategory         map[Category]int64 `json:"byCategory"`
	ByPriority         map[Priority]int64 `json:"byPriority"`
	AlertsSent         int64              `json:"alertsSent"`
	RecipientsNotified int64              `json:"recipientsNotified"`
}
