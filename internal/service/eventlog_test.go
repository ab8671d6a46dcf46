package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNormalizeEventType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "login", want: "LOGIN"},
		{in: "  item_created ", want: "ITEM_CREATED"},
		{in: "", want: ""},
		{in: "REGISTER", want: "REGISTER"},
	}

	for _, tt := range tests {
		if got := normalizeEventType(tt.in); got != tt.want {
			t.Fatalf("normalizeEventType(%q)=%q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEventLogService_ListNormalizesFilter(t *testing.T) {
	events := &fakeEvents{}
	svc := NewEventLogService(events)

	loc := time.FixedZone("UTC+3", 3*60*60)
	from := time.Date(2026, time.August, 1, 12, 0, 0, 0, loc)
	to := time.Date(2026, time.August, 2, 12, 0, 0, 0, loc)

	_, err := svc.List(context.Background(), LogFilter{From: from, To: to, Type: "login"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if events.lastFrom.Location() != time.UTC || !events.lastFrom.Equal(from) {
		t.Fatalf("from not normalized to UTC: %v", events.lastFrom)
	}
	if events.lastTo.Location() != time.UTC || !events.lastTo.Equal(to) {
		t.Fatalf("to not normalized to UTC: %v", events.lastTo)
	}
	if events.lastType != "LOGIN" {
		t.Fatalf("type=%q, want LOGIN", events.lastType)
	}
}

func TestEventLogService_ListKeepsZeroBounds(t *testing.T) {
	events := &fakeEvents{}
	svc := NewEventLogService(events)

	if _, err := svc.List(context.Background(), LogFilter{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !events.lastFrom.IsZero() || !events.lastTo.IsZero() {
		t.Fatalf("zero bounds must stay zero: from=%v to=%v", events.lastFrom, events.lastTo)
	}
}

func TestEventLogService_ListRejectsInvertedRange(t *testing.T) {
	svc := NewEventLogService(&fakeEvents{})

	from := time.Date(2026, time.August, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.List(context.Background(), LogFilter{From: from, To: to})
	if !errors.Is(err, errInvalidTimeRange) {
		t.Fatalf("err=%v, want errInvalidTimeRange", err)
	}
}
