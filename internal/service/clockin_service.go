package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davisgreg1/valet-time-keeping/internal/authz"
	"github.com/davisgreg1/valet-time-keeping/internal/docstore"
	"github.com/davisgreg1/valet-time-keeping/internal/domain"
	"github.com/davisgreg1/valet-time-keeping/internal/events"
	"github.com/davisgreg1/valet-time-keeping/internal/repository"
	apperrors "github.com/davisgreg1/valet-time-keeping/pkg/util"
)

const defaultHistoryLimit = 10

// ClockInService records geotagged clock events and derives summaries and
// reports from them.
type ClockInService struct {
	clockIns   repository.ClockInRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewClockInService builds the service.
func NewClockInService(clockIns repository.ClockInRepository, dispatcher events.Dispatcher, logger *zap.Logger) *ClockInService {
	return &ClockInService{clockIns: clockIns, dispatcher: dispatcher, logger: logger}
}

// Clock records the valet's next event. Events alternate: the type is
// derived from the most recent record, starting with a clock-in.
func (s *ClockInService) Clock(ctx context.Context, valet *domain.ValetAccount, lat, lng float64, address string) (*domain.ClockEvent, error) {
	next := domain.ClockEventIn
	last, err := s.clockIns.Latest(ctx, valet.ID)
	if err == nil {
		next = last.Type.Opposite()
	} else if !errors.Is(err, docstore.ErrNotFound) {
		return nil, apperrors.MapError(err)
	}

	event := &domain.ClockEvent{
		ID:        uuid.NewString(),
		ValetID:   valet.ID,
		ValetName: valet.FullName,
		Type:      next,
		Timestamp: time.Now(),
		Latitude:  lat,
		Longitude: lng,
		Address:   address,
	}
	if err := s.clockIns.Create(ctx, event); err != nil {
		return nil, apperrors.MapError(err)
	}

	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventClockRecorded,
		UserID:    valet.ID,
		Timestamp: event.Timestamp,
		Payload:   events.ClockRecordedPayload{EventID: event.ID, Type: event.Type},
	})
	return event, nil
}

// History returns the valet's most recent events, newest first.
func (s *ClockInService) History(ctx context.Context, valetID string, limit int) ([]domain.ClockEvent, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	history, err := s.clockIns.History(ctx, valetID, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return history, nil
}

// TodaySummary pairs today's events into shift segments for the valet.
func (s *ClockInService) TodaySummary(ctx context.Context, valetID string) (*domain.DaySummary, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	records, err := s.clockIns.Range(ctx, valetID, start, end)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	summary := Summarize(records, now)
	summary.ValetID = valetID
	return summary, nil
}

// LiveActivity returns the most recent events across all valets.
func (s *ClockInService) LiveActivity(ctx context.Context, actor *authz.Resolution, limit int) ([]domain.ClockEvent, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	recent, err := s.clockIns.Recent(ctx, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return recent, nil
}

// Report aggregates per-valet hours and event counts over [from, to).
func (s *ClockInService) Report(ctx context.Context, actor *authz.Resolution, from, to time.Time) ([]domain.ValetReportRow, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !to.After(from) {
		return nil, apperrors.NewValidationError("report range is empty", nil)
	}

	records, err := s.clockIns.Range(ctx, "", from, to)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	byValet := make(map[string][]domain.ClockEvent)
	names := make(map[string]string)
	for _, rec := range records {
		byValet[rec.ValetID] = append(byValet[rec.ValetID], rec)
		if rec.ValetName != "" {
			names[rec.ValetID] = rec.ValetName
		}
	}

	rows := make([]domain.ValetReportRow, 0, len(byValet))
	for valetID, events := range byValet {
		summary := Summarize(events, to)
		rows = append(rows, domain.ValetReportRow{
			ValetID:    valetID,
			ValetName:  names[valetID],
			TotalTime:  summary.TotalTime,
			EventCount: summary.EventCount,
			ShiftCount: len(summary.Segments),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ValetName < rows[j].ValetName })
	return rows, nil
}

// Summarize pairs an ordered run of events into shift segments. An unmatched
// trailing clock-in produces an open segment whose duration runs to now.
func Summarize(records []domain.ClockEvent, now time.Time) *domain.DaySummary {
	sorted := make([]domain.ClockEvent, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	summary := &domain.DaySummary{EventCount: len(sorted)}
	var open *time.Time
	for _, rec := range sorted {
		switch rec.Type {
		case domain.ClockEventIn:
			ts := rec.Timestamp
			open = &ts
		case domain.ClockEventOut:
			if open == nil {
				continue
			}
			out := rec.Timestamp
			segment := domain.ShiftSegment{
				ClockIn:  *open,
				ClockOut: &out,
				Duration: out.Sub(*open),
			}
			summary.Segments = append(summary.Segments, segment)
			summary.TotalTime += segment.Duration
			open = nil
		}
	}
	if open != nil {
		segment := domain.ShiftSegment{ClockIn: *open, Duration: now.Sub(*open)}
		summary.Segments = append(summary.Segments, segment)
		summary.TotalTime += segment.Duration
		summary.ClockedIn = true
	}
	return summary
}
