package domain

import "time"

// ClockEventType distinguishes clock-in from clock-out events.
type ClockEventType string

const (
	ClockEventIn  ClockEventType = "clock-in"
	ClockEventOut ClockEventType = "clock-out"
)

// Opposite returns the event type that must follow this one.
func (t ClockEventType) Opposite() ClockEventType {
	if t == ClockEventIn {
		return ClockEventOut
	}
	return ClockEventIn
}

// ClockEvent is a geotagged clock-in or clock-out record.
type ClockEvent struct {
	ID        string
	ValetID   string
	ValetName string
	Type      ClockEventType
	Timestamp time.Time
	Latitude  float64
	Longitude float64
	Address   string
}

// ShiftSegment pairs a clock-in with its matching clock-out. An open shift
// has no clock-out yet and its duration runs to the evaluation time.
type ShiftSegment struct {
	ClockIn  time.Time
	ClockOut *time.Time
	Duration time.Duration
}

// DaySummary aggregates a valet's shift segments within a single day.
type DaySummary struct {
	ValetID    string
	Segments   []ShiftSegment
	TotalTime  time.Duration
	ClockedIn  bool
	EventCount int
}

// ValetReportRow aggregates a valet's activity over a report range.
type ValetReportRow struct {
	ValetID    string
	ValetName  string
	TotalTime  time.Duration
	EventCount int
	ShiftCount int
}

// WorkforceStats is the admin dashboard overview: valet headcounts plus
// today's clock-in activity across the whole workforce.
type WorkforceStats struct {
	TotalValets   int
	ActiveValets  int
	TodayClockIns int
	HoursToday    time.Duration
}
