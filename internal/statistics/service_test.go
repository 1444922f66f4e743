package statistics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/habitd/internal/calendar"
	"github.com/hitoshi/habitd/internal/model"
)

// --- モック定義 ---

// fixedClock は固定時刻を返すClock実装。
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

// mockUserRepo はUserRepositoryのテスト用モック。
type mockUserRepo struct {
	findByIDFunc func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.User{ID: id}, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	return nil
}

func (m *mockUserRepo) DeleteByID(ctx context.Context, id string) error {
	return nil
}

// mockHabitRepo はHabitRepositoryのテスト用モック。
type mockHabitRepo struct {
	listByUserIDFunc func(ctx context.Context, userID string) ([]*model.Habit, error)
}

func (m *mockHabitRepo) FindByID(ctx context.Context, id string) (*model.Habit, error) {
	return nil, nil
}

func (m *mockHabitRepo) Create(ctx context.Context, habit *model.Habit) error {
	return nil
}

func (m *mockHabitRepo) Update(ctx context.Context, habit *model.Habit) error {
	return nil
}

func (m *mockHabitRepo) DeleteByID(ctx context.Context, id string) error {
	return nil
}

func (m *mockHabitRepo) ListByFrequency(ctx context.Context, freq model.Frequency) ([]*model.Habit, error) {
	return nil, nil
}

func (m *mockHabitRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Habit, error) {
	if m.listByUserIDFunc != nil {
		return m.listByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockHabitRepo) CountByUserID(ctx context.Context, userID string) (int, error) {
	return 0, nil
}

// mockStatusRepo はStatusRepositoryのテスト用モック。
type mockStatusRepo struct {
	listByHabitInRangeFunc func(ctx context.Context, habitID string, from, to time.Time) ([]*model.HabitStatus, error)
}

func (m *mockStatusRepo) FindByID(ctx context.Context, id string) (*model.HabitStatus, error) {
	return nil, nil
}

func (m *mockStatusRepo) Create(ctx context.Context, status *model.HabitStatus) error {
	return nil
}

func (m *mockStatusRepo) UpdateState(ctx context.Context, id string, state model.CompletionState) error {
	return nil
}

func (m *mockStatusRepo) DeleteByID(ctx context.Context, id string) error {
	return nil
}

func (m *mockStatusRepo) DeleteByHabitID(ctx context.Context, habitID string) error {
	return nil
}

func (m *mockStatusRepo) ExistsByHabitAndDate(ctx context.Context, habitID string, date time.Time) (bool, error) {
	return false, nil
}

func (m *mockStatusRepo) ExistsByHabitInRange(ctx context.Context, habitID string, from, to time.Time) (bool, error) {
	return false, nil
}

func (m *mockStatusRepo) ListByHabitInRange(ctx context.Context, habitID string, from, to time.Time) ([]*model.HabitStatus, error) {
	if m.listByHabitInRangeFunc != nil {
		return m.listByHabitInRangeFunc(ctx, habitID, from, to)
	}
	return nil, nil
}

func (m *mockStatusRepo) ListByHabit(ctx context.Context, habitID string, cursor time.Time, limit int) ([]*model.HabitStatus, error) {
	return nil, nil
}

var testNow = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func newTestService(habitRepo *mockHabitRepo, statusRepo *mockStatusRepo) *Service {
	cal := calendar.NewService(fixedClock{now: testNow})
	return NewService(&mockUserRepo{}, habitRepo, statusRepo, cal, nil)
}

// --- 実行率レポート ---

func TestService_CompletionForPeriod_TwoHabits(t *testing.T) {
	habitRepo := &mockHabitRepo{
		listByUserIDFunc: func(ctx context.Context, userID string) ([]*model.Habit, error) {
			return []*model.Habit{
				{ID: "h1", UserID: userID, Frequency: model.FrequencyDaily},
				{ID: "h2", UserID: userID, Frequency: model.FrequencyDaily},
			}, nil
		},
	}
	statusRepo := &mockStatusRepo{
		listByHabitInRangeFunc: func(ctx context.Context, habitID string, from, to time.Time) ([]*model.HabitStatus, error) {
			switch habitID {
			case "h1":
				return []*model.HabitStatus{
					{ID: "s1", HabitID: "h1", State: model.StateCompleted},
				}, nil
			case "h2":
				return []*model.HabitStatus{
					{ID: "s2", HabitID: "h2", State: model.StateWaiting},
				}, nil
			}
			return nil, nil
		},
	}
	svc := newTestService(habitRepo, statusRepo)

	report, err := svc.CompletionForPeriod(context.Background(), "user-1", model.PeriodNow)
	if err != nil {
		t.Fatalf("CompletionForPeriod() error = %v", err)
	}

	if report.Total != 2 {
		t.Errorf("Total = %d, want 2", report.Total)
	}
	if report.Completed != 1 {
		t.Errorf("Completed = %d, want 1", report.Completed)
	}
	if report.Percent != 50 {
		t.Errorf("Percent = %d, want 50", report.Percent)
	}
}

func TestService_CompletionForPeriod_EmptyWindowIsZero(t *testing.T) {
	habitRepo := &mockHabitRepo{
		listByUserIDFunc: func(ctx context.Context, userID string) ([]*model.Habit, error) {
			return []*model.Habit{
				{ID: "h1", UserID: userID, Frequency: model.FrequencyDaily},
			}, nil
		},
	}
	svc := newTestService(habitRepo, &mockStatusRepo{})

	report, err := svc.CompletionForPeriod(context.Background(), "user-1", model.PeriodMonth)
	if err != nil {
		t.Fatalf("CompletionForPeriod() error = %v", err)
	}

	if report.Total != 0 || report.Completed != 0 || report.Percent != 0 {
		t.Errorf("空の窓は全フィールド0でなければならない: total=%d completed=%d percent=%d",
			report.Total, report.Completed, report.Percent)
	}
}

func TestService_CompletionForPeriod_WindowBounds(t *testing.T) {
	var gotFrom, gotTo time.Time
	habitRepo := &mockHabitRepo{
		listByUserIDFunc: func(ctx context.Context, userID string) ([]*model.Habit, error) {
			return []*model.Habit{{ID: "h1", UserID: userID}}, nil
		},
	}
	statusRepo := &mockStatusRepo{
		listByHabitInRangeFunc: func(ctx context.Context, habitID string, from, to time.Time) ([]*model.HabitStatus, error) {
			gotFrom, gotTo = from, to
			return nil, nil
		},
	}
	svc := newTestService(habitRepo, statusRepo)

	if _, err := svc.CompletionForPeriod(context.Background(), "user-1", model.PeriodWeek); err != nil {
		t.Fatalf("CompletionForPeriod() error = %v", err)
	}

	wantTo := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	wantFrom := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	if !gotTo.Equal(wantTo) {
		t.Errorf("to = %v, want %v", gotTo, wantTo)
	}
	if !gotFrom.Equal(wantFrom) {
		t.Errorf("from = %v, want %v", gotFrom, wantFrom)
	}
}

func TestService_CompletionForPeriod_UserNotFound(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.User, error) {
			return nil, nil
		},
	}
	cal := calendar.NewService(fixedClock{now: testNow})
	svc := NewService(userRepo, &mockHabitRepo{}, &mockStatusRepo{}, cal, nil)

	_, err := svc.CompletionForPeriod(context.Background(), "missing", model.PeriodDay)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("error = %v, want USER_NOT_FOUND", err)
	}
}

func TestService_CompletionForPeriod_StoreFailureIsUnavailable(t *testing.T) {
	habitRepo := &mockHabitRepo{
		listByUserIDFunc: func(ctx context.Context, userID string) ([]*model.Habit, error) {
			return []*model.Habit{
				{ID: "h1", UserID: userID},
				{ID: "h2", UserID: userID},
			}, nil
		},
	}
	statusRepo := &mockStatusRepo{
		listByHabitInRangeFunc: func(ctx context.Context, habitID string, from, to time.Time) ([]*model.HabitStatus, error) {
			if habitID == "h2" {
				return nil, errors.New("connection reset")
			}
			return []*model.HabitStatus{
				{ID: "s1", HabitID: "h1", State: model.StateCompleted},
			}, nil
		},
	}
	svc := newTestService(habitRepo, statusRepo)

	report, err := svc.CompletionForPeriod(context.Background(), "user-1", model.PeriodWeek)
	if report != nil {
		t.Error("ストア障害時に部分的なレポートを返してはならない")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeReportUnavailable {
		t.Errorf("error = %v, want REPORT_UNAVAILABLE", err)
	}
}

// --- 周期区分別進捗レポート ---

func TestService_DailyOrWeeklyProgress_FiltersByFrequency(t *testing.T) {
	habitRepo := &mockHabitRepo{
		listByUserIDFunc: func(ctx context.Context, userID string) ([]*model.Habit, error) {
			return []*model.Habit{
				{ID: "daily-habit", UserID: userID, Frequency: model.FrequencyDaily},
				{ID: "weekly-habit", UserID: userID, Frequency: model.FrequencyWeekly},
			}, nil
		},
	}
	var queried []string
	statusRepo := &mockStatusRepo{
		listByHabitInRangeFunc: func(ctx context.Context, habitID string, from, to time.Time) ([]*model.HabitStatus, error) {
			queried = append(queried, habitID)
			return []*model.HabitStatus{
				{ID: habitID + "-s", HabitID: habitID, State: model.StateCompleted},
			}, nil
		},
	}
	svc := newTestService(habitRepo, statusRepo)

	report, err := svc.DailyOrWeeklyProgress(context.Background(), "user-1", model.FrequencyWeekly)
	if err != nil {
		t.Fatalf("DailyOrWeeklyProgress() error = %v", err)
	}

	if len(queried) != 1 || queried[0] != "weekly-habit" {
		t.Errorf("週次レポートで日次習慣のステータスを数えてはならない: queried = %v", queried)
	}
	if report.Total != 1 || report.Completed != 1 || report.Percent != 100 {
		t.Errorf("report = %+v, want total=1 completed=1 percent=100", report)
	}
}

func TestService_DailyOrWeeklyProgress_WindowByFrequency(t *testing.T) {
	tests := []struct {
		freq     model.Frequency
		wantFrom time.Time
	}{
		{model.FrequencyDaily, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)},
		{model.FrequencyWeekly, time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(string(tt.freq), func(t *testing.T) {
			var gotFrom time.Time
			habitRepo := &mockHabitRepo{
				listByUserIDFunc: func(ctx context.Context, userID string) ([]*model.Habit, error) {
					return []*model.Habit{{ID: "h1", UserID: userID, Frequency: tt.freq}}, nil
				},
			}
			statusRepo := &mockStatusRepo{
				listByHabitInRangeFunc: func(ctx context.Context, habitID string, from, to time.Time) ([]*model.HabitStatus, error) {
					gotFrom = from
					return nil, nil
				},
			}
			svc := newTestService(habitRepo, statusRepo)

			if _, err := svc.DailyOrWeeklyProgress(context.Background(), "user-1", tt.freq); err != nil {
				t.Fatalf("DailyOrWeeklyProgress() error = %v", err)
			}
			if !gotFrom.Equal(tt.wantFrom) {
				t.Errorf("from = %v, want %v", gotFrom, tt.wantFrom)
			}
		})
	}
}

// --- 未実行レポート ---

func TestService_UncompletedStreaks(t *testing.T) {
	habitRepo := &mockHabitRepo{
		listByUserIDFunc: func(ctx context.Context, userID string) ([]*model.Habit, error) {
			return []*model.Habit{
				{ID: "d1", UserID: userID, Frequency: model.FrequencyDaily},
				{ID: "w1", UserID: userID, Frequency: model.FrequencyWeekly},
			}, nil
		},
	}
	statusRepo := &mockStatusRepo{
		listByHabitInRangeFunc: func(ctx context.Context, habitID string, from, to time.Time) ([]*model.HabitStatus, error) {
			switch habitID {
			case "d1":
				return []*model.HabitStatus{
					{ID: "ds1", HabitID: "d1", State: model.StateWaiting},
				}, nil
			case "w1":
				return []*model.HabitStatus{
					{ID: "ws1", HabitID: "w1", State: model.StateCompleted},
				}, nil
			}
			return nil, nil
		},
	}
	svc := newTestService(habitRepo, statusRepo)

	report, err := svc.UncompletedStreaks(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("UncompletedStreaks() error = %v", err)
	}

	if report.TotalDaily != 1 || report.UncompletedDaily != 1 {
		t.Errorf("daily: total=%d uncompleted=%d, want 1, 1", report.TotalDaily, report.UncompletedDaily)
	}
	if report.TotalWeekly != 1 || report.UncompletedWeekly != 0 {
		t.Errorf("weekly: total=%d uncompleted=%d, want 1, 0", report.TotalWeekly, report.UncompletedWeekly)
	}
}

func TestService_UncompletedStreaks_StoreFailure(t *testing.T) {
	habitRepo := &mockHabitRepo{
		listByUserIDFunc: func(ctx context.Context, userID string) ([]*model.Habit, error) {
			return nil, errors.New("db down")
		},
	}
	svc := newTestService(habitRepo, &mockStatusRepo{})

	_, err := svc.UncompletedStreaks(context.Background(), "user-1")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeReportUnavailable {
		t.Errorf("error = %v, want REPORT_UNAVAILABLE", err)
	}
}
