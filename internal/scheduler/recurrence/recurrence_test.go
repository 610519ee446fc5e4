package recurrence

import (
	"testing"
	"time"

	"github.com/zonetune/zonetune/internal/domain/models"
)

func timePtr(t time.Time) *time.Time { return &t }
func intPtr(v int) *int              { return &v }
func unitPtr(u models.RepeatUnit) *models.RepeatUnit {
	return &u
}

func TestNextRun(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		anchor  *time.Time
		repeat  *int
		unit    *models.RepeatUnit
		want    *time.Time
		wantErr bool
	}{
		{
			name:   "nil anchor",
			anchor: nil,
			repeat: intPtr(1),
			unit:   unitPtr(models.RepeatDay),
			want:   nil,
		},
		{
			name:   "future anchor is the next occurrence",
			anchor: timePtr(now.Add(48 * time.Hour)),
			repeat: intPtr(1),
			unit:   unitPtr(models.RepeatDay),
			want:   timePtr(now.Add(48 * time.Hour)),
		},
		{
			name:   "past anchor without repeat has no next occurrence",
			anchor: timePtr(now.Add(-time.Hour)),
			repeat: nil,
			unit:   nil,
			want:   nil,
		},
		{
			name:   "daily repeat lands on next day at anchor time",
			anchor: timePtr(time.Date(2024, 3, 9, 9, 30, 0, 0, time.UTC)),
			repeat: intPtr(1),
			unit:   unitPtr(models.RepeatDay),
			want:   timePtr(time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC)),
		},
		{
			name:   "hourly repeat steps from the anchor grid",
			anchor: timePtr(time.Date(2024, 3, 10, 9, 15, 0, 0, time.UTC)),
			repeat: intPtr(2),
			unit:   unitPtr(models.RepeatHour),
			want:   timePtr(time.Date(2024, 3, 10, 13, 15, 0, 0, time.UTC)),
		},
		{
			name:   "minute repeat far in the past",
			anchor: timePtr(time.Date(2024, 3, 10, 11, 0, 0, 0, time.UTC)),
			repeat: intPtr(45),
			unit:   unitPtr(models.RepeatMinute),
			want:   timePtr(time.Date(2024, 3, 10, 12, 30, 0, 0, time.UTC)),
		},
		{
			name:   "anchor equal to now is due now",
			anchor: timePtr(now),
			repeat: intPtr(1),
			unit:   unitPtr(models.RepeatDay),
			want:   timePtr(now),
		},
		{
			name:    "zero repeat is rejected",
			anchor:  timePtr(now.Add(-time.Hour)),
			repeat:  intPtr(0),
			unit:    unitPtr(models.RepeatDay),
			wantErr: true,
		},
		{
			name:    "negative repeat is rejected",
			anchor:  timePtr(now.Add(-time.Hour)),
			repeat:  intPtr(-3),
			unit:    unitPtr(models.RepeatDay),
			wantErr: true,
		},
		{
			name:    "unknown unit is rejected",
			anchor:  timePtr(now.Add(-time.Hour)),
			repeat:  intPtr(1),
			unit:    unitPtr(models.RepeatUnit("fortnight")),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextRun(tt.anchor, tt.repeat, tt.unit, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			switch {
			case tt.want == nil && got != nil:
				t.Fatalf("expected nil, got %v", *got)
			case tt.want != nil && got == nil:
				t.Fatalf("expected %v, got nil", *tt.want)
			case tt.want != nil && !got.Equal(*tt.want):
				t.Fatalf("expected %v, got %v", *tt.want, *got)
			}
		})
	}
}

func TestNextRunStaysOnAnchorGrid(t *testing.T) {
	// A daily schedule anchored at 09:30 must stay at 09:30 regardless of
	// how late each poll fires.
	anchor := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	now := time.Date(2024, 1, 5, 9, 47, 12, 0, time.UTC)

	got, err := NextRun(&anchor, intPtr(1), unitPtr(models.RepeatDay), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 1, 6, 9, 30, 0, 0, time.UTC)
	if got == nil || !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
