package calendar

import (
	"testing"
	"time"

	"github.com/hitoshi/habitd/internal/model"
)

// fixedClock は固定時刻を返すテスト用のClock実装。
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func TestService_Today_TruncatesTimeOfDay(t *testing.T) {
	clock := fixedClock{now: time.Date(2024, 3, 15, 23, 45, 12, 999, time.UTC)}
	svc := NewService(clock)

	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if got := svc.Today(); !got.Equal(want) {
		t.Errorf("Today() = %v, want %v", got, want)
	}
}

func TestService_OffsetBefore(t *testing.T) {
	// 日D時点でOffsetBefore(WEEK)はD-7、OffsetBefore(NOW)はDそのもの
	day := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	svc := NewService(fixedClock{now: day})

	tests := []struct {
		period model.Period
		want   time.Time
	}{
		{model.PeriodNow, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{model.PeriodDay, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)},
		{model.PeriodWeek, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)},
		{model.PeriodMonth, time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			if got := svc.OffsetBefore(tt.period); !got.Equal(tt.want) {
				t.Errorf("OffsetBefore(%v) = %v, want %v", tt.period, got, tt.want)
			}
		})
	}
}

func TestService_OffsetBefore_CrossesMonthBoundary(t *testing.T) {
	svc := NewService(fixedClock{now: time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)})

	want := time.Date(2024, 2, 25, 0, 0, 0, 0, time.UTC)
	if got := svc.OffsetBefore(model.PeriodWeek); !got.Equal(want) {
		t.Errorf("OffsetBefore(week) = %v, want %v", got, want)
	}
}

func TestService_GenerationWindow(t *testing.T) {
	// 当日を含む7日間: [today-6, today]
	svc := NewService(fixedClock{now: time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)})

	from, to := svc.GenerationWindow()

	wantFrom := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if !from.Equal(wantFrom) {
		t.Errorf("from = %v, want %v", from, wantFrom)
	}
	if !to.Equal(wantTo) {
		t.Errorf("to = %v, want %v", to, wantTo)
	}
}

func TestService_Deterministic(t *testing.T) {
	clock := fixedClock{now: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)}
	svc := NewService(clock)

	first := svc.OffsetBefore(model.PeriodMonth)
	for i := 0; i < 10; i++ {
		if got := svc.OffsetBefore(model.PeriodMonth); !got.Equal(first) {
			t.Fatalf("同じ時計の読み取りに対して結果が変化した: %v != %v", got, first)
		}
	}
}

func TestNewService_NilClockUsesSystemClock(t *testing.T) {
	svc := NewService(nil)

	today := svc.Today()
	if today.IsZero() {
		t.Error("Today() はゼロ値を返してはならない")
	}
	if today.Hour() != 0 || today.Minute() != 0 {
		t.Errorf("Today() は日単位に丸められなければならない: %v", today)
	}
}
