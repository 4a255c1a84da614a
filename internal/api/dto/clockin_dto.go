package dto

import (
	"time"

	"github.com/davisgreg1/valet-time-keeping/internal/domain"
)

// ClockRequest payload for a clock-in/out action.
type ClockRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// ClockEventResponse is the wire form of a clock event.
type ClockEventResponse struct {
	ID        string    `json:"id"`
	ValetID   string    `json:"valet_id"`
	ValetName string    `json:"valet_name,omitempty"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Address   string    `json:"address,omitempty"`
}

// NewClockEventResponse maps the domain record.
func NewClockEventResponse(event *domain.ClockEvent) ClockEventResponse {
	return ClockEventResponse{
		ID:        event.ID,
		ValetID:   event.ValetID,
		ValetName: event.ValetName,
		Type:      string(event.Type),
		Timestamp: event.Timestamp,
		Latitude:  event.Latitude,
		Longitude: event.Longitude,
		Address:   event.Address,
	}
}

// SummaryResponse reports today's shift segments.
type SummaryResponse struct {
	ValetID      string            `json:"valet_id"`
	TotalMinutes float64           `json:"total_minutes"`
	ClockedIn    bool              `json:"clocked_in"`
	EventCount   int               `json:"event_count"`
	Segments     []SegmentResponse `json:"segments"`
}

// SegmentResponse is a single paired (or open) shift.
type SegmentResponse struct {
	ClockIn  time.Time  `json:"clock_in"`
	ClockOut *time.Time `json:"clock_out,omitempty"`
	Minutes  float64    `json:"minutes"`
}

// NewSummaryResponse maps the domain summary.
func NewSummaryResponse(summary *domain.DaySummary) SummaryResponse {
	segments := make([]SegmentResponse, 0, len(summary.Segments))
	for _, seg := range summary.Segments {
		segments = append(segments, SegmentResponse{
			ClockIn:  seg.ClockIn,
			ClockOut: seg.ClockOut,
			Minutes:  seg.Duration.Minutes(),
		})
	}
	return SummaryResponse{
		ValetID:      summary.ValetID,
		TotalMinutes: summary.TotalTime.Minutes(),
		ClockedIn:    summary.ClockedIn,
		EventCount:   summary.EventCount,
		Segments:     segments,
	}
}

// ReportRowResponse is a per-valet aggregate over a report range.
type ReportRowResponse struct {
	ValetID    string  `json:"valet_id"`
	ValetName  string  `json:"valet_name"`
	TotalHours float64 `json:"total_hours"`
	EventCount int     `json:"event_count"`
	ShiftCount int     `json:"shift_count"`
}
