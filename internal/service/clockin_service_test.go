package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/davisgreg1/valet-time-keeping/internal/domain"
	"github.com/davisgreg1/valet-time-keeping/internal/events"
)

func newClockInFixture() (*ClockInService, *stubClockInRepo) {
	repo := &stubClockInRepo{}
	svc := NewClockInService(repo, events.NewInMemoryDispatcher(), zap.NewNop())
	return svc, repo
}

func TestClockAlternatesStartingWithClockIn(t *testing.T) {
	svc, _ := newClockInFixture()
	valet := &domain.ValetAccount{ID: "v1", FullName: "Vic", IsActive: true}

	want := []domain.ClockEventType{domain.ClockEventIn, domain.ClockEventOut, domain.ClockEventIn}
	for i, expected := range want {
		event, err := svc.Clock(context.Background(), valet, 40.7, -74.0, "Garage A")
		if err != nil {
			t.Fatalf("Clock %d: %v", i, err)
		}
		if event.Type != expected {
			t.Fatalf("event %d: expected %s, got %s", i, expected, event.Type)
		}
		if event.ValetName != "Vic" {
			t.Fatalf("event %d: expected valet name on record, got %q", i, event.ValetName)
		}
	}
}

func TestClockAlternationIsPerValet(t *testing.T) {
	svc, _ := newClockInFixture()
	first := &domain.ValetAccount{ID: "v1", FullName: "Vic", IsActive: true}
	second := &domain.ValetAccount{ID: "v2", FullName: "Ada", IsActive: true}

	if _, err := svc.Clock(context.Background(), first, 0, 0, ""); err != nil {
		t.Fatalf("Clock: %v", err)
	}
	event, err := svc.Clock(context.Background(), second, 0, 0, "")
	if err != nil {
		t.Fatalf("Clock: %v", err)
	}
	if event.Type != domain.ClockEventIn {
		t.Fatalf("a valet's first event must be a clock-in, got %s", event.Type)
	}
}

func TestSummarizePairsSegments(t *testing.T) {
	base := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	records := []domain.ClockEvent{
		{ValetID: "v1", Type: domain.ClockEventIn, Timestamp: base},
		{ValetID: "v1", Type: domain.ClockEventOut, Timestamp: base.Add(4 * time.Hour)},
		{ValetID: "v1", Type: domain.ClockEventIn, Timestamp: base.Add(5 * time.Hour)},
		{ValetID: "v1", Type: domain.ClockEventOut, Timestamp: base.Add(8 * time.Hour)},
	}

	summary := Summarize(records, base.Add(9*time.Hour))
	if len(summary.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(summary.Segments))
	}
	if summary.TotalTime != 7*time.Hour {
		t.Fatalf("expected 7h total, got %v", summary.TotalTime)
	}
	if summary.ClockedIn {
		t.Fatal("all segments closed; not clocked in")
	}
	if summary.EventCount != 4 {
		t.Fatalf("expected 4 events, got %d", summary.EventCount)
	}
}

func TestSummarizeOpenSegmentRunsToNow(t *testing.T) {
	base := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	records := []domain.ClockEvent{
		{ValetID: "v1", Type: domain.ClockEventIn, Timestamp: base},
	}

	now := base.Add(90 * time.Minute)
	summary := Summarize(records, now)
	if !summary.ClockedIn {
		t.Fatal("open trailing clock-in should mark the valet clocked in")
	}
	if len(summary.Segments) != 1 || summary.Segments[0].ClockOut != nil {
		t.Fatal("expected a single open segment")
	}
	if summary.TotalTime != 90*time.Minute {
		t.Fatalf("expected 90m, got %v", summary.TotalTime)
	}
}

func TestSummarizeIgnoresUnmatchedClockOut(t *testing.T) {
	base := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	records := []domain.ClockEvent{
		{ValetID: "v1", Type: domain.ClockEventOut, Timestamp: base},
		{ValetID: "v1", Type: domain.ClockEventIn, Timestamp: base.Add(time.Hour)},
		{ValetID: "v1", Type: domain.ClockEventOut, Timestamp: base.Add(2 * time.Hour)},
	}

	summary := Summarize(records, base.Add(3*time.Hour))
	if len(summary.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(summary.Segments))
	}
	if summary.TotalTime != time.Hour {
		t.Fatalf("expected 1h, got %v", summary.TotalTime)
	}
}

func TestSummarizeSortsOutOfOrderRecords(t *testing.T) {
	base := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	records := []domain.ClockEvent{
		{ValetID: "v1", Type: domain.ClockEventOut, Timestamp: base.Add(2 * time.Hour)},
		{ValetID: "v1", Type: domain.ClockEventIn, Timestamp: base},
	}

	summary := Summarize(records, base.Add(3*time.Hour))
	if len(summary.Segments) != 1 || summary.TotalTime != 2*time.Hour {
		t.Fatalf("expected one 2h segment, got %d segments / %v", len(summary.Segments), summary.TotalTime)
	}
}

func TestReportRequiresAdmin(t *testing.T) {
	svc, _ := newClockInFixture()
	from := time.Now().Add(-24 * time.Hour)

	if _, err := svc.Report(context.Background(), valetActor(true), from, time.Now()); err == nil {
		t.Fatal("plain valet must not pull reports")
	}
}

func TestReportRejectsEmptyRange(t *testing.T) {
	svc, _ := newClockInFixture()
	at := time.Now()

	if _, err := svc.Report(context.Background(), adminActor(), at, at); err == nil {
		t.Fatal("empty range must be rejected")
	}
}

func TestReportAggregatesPerValet(t *testing.T) {
	svc, repo := newClockInFixture()
	base := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	seed := []domain.ClockEvent{
		{ValetID: "v1", ValetName: "Vic", Type: domain.ClockEventIn, Timestamp: base},
		{ValetID: "v1", ValetName: "Vic", Type: domain.ClockEventOut, Timestamp: base.Add(2 * time.Hour)},
		{ValetID: "v2", ValetName: "Ada", Type: domain.ClockEventIn, Timestamp: base.Add(time.Hour)},
		{ValetID: "v2", ValetName: "Ada", Type: domain.ClockEventOut, Timestamp: base.Add(4 * time.Hour)},
	}
	for i := range seed {
		if err := repo.Create(context.Background(), &seed[i]); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	rows, err := svc.Report(context.Background(), adminActor(), base, base.Add(8*time.Hour))
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	// sorted by name: Ada first
	if rows[0].ValetID != "v2" || rows[0].TotalTime != 3*time.Hour {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].ValetID != "v1" || rows[1].TotalTime != 2*time.Hour {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
}

func TestLiveActivityRequiresAdmin(t *testing.T) {
	svc, _ := newClockInFixture()
	if _, err := svc.LiveActivity(context.Background(), valetActor(true), 5); err == nil {
		t.Fatal("plain valet must not read the live feed")
	}
}
