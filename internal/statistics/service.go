// Package statistics は習慣実行の集計レポートを提供する。
// すべての操作は読み取り専用で、生成ワーカーと安全に並行実行できる。
// レポートは集計時点のストアの状態を反映するベストエフォートの値であり、
// スナップショットの一貫性は保証しない。
package statistics

import (
	"context"
	"log/slog"

	"github.com/hitoshi/habitd/internal/calendar"
	"github.com/hitoshi/habitd/internal/model"
	"github.com/hitoshi/habitd/internal/repository"
)

// Metrics はレポート要求の記録インターフェース。
type Metrics interface {
	RecordReportRequest(kind string)
}

// noopMetrics はメトリクス未設定時の何もしない実装。
type noopMetrics struct{}

func (noopMetrics) RecordReportRequest(kind string) {}

// Service は統計レポートのサービス層。
// 集計窓の解決 → ユーザー習慣の列挙 → 習慣ごとのステータス取得 → 集約、
// の流れですべてのレポートを計算する。ストアの契約が習慣単位のため、
// 結合クエリではなくファンアウト/ファンインで収集する。
type Service struct {
	userRepo   repository.UserRepository
	habitRepo  repository.HabitRepository
	statusRepo repository.StatusRepository
	cal        *calendar.Service
	metrics    Metrics
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsがnilの場合は記録を行わない。
func NewService(
	userRepo repository.UserRepository,
	habitRepo repository.HabitRepository,
	statusRepo repository.StatusRepository,
	cal *calendar.Service,
	metrics Metrics,
) *Service {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Service{
		userRepo:   userRepo,
		habitRepo:  habitRepo,
		statusRepo: statusRepo,
		cal:        cal,
		metrics:    metrics,
	}
}

// CompletionForPeriod は指定期間における全習慣の実行率レポートを返す。
// 集計窓は [today - period.Days(), today] の両端を含む範囲。
// 窓内にステータスが1件もない場合はpercent=0を返す（ゼロ除算しない）。
func (s *Service) CompletionForPeriod(ctx context.Context, userID string, period model.Period) (*model.CompletionReport, error) {
	s.metrics.RecordReportRequest("completion_for_period")

	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}

	statuses, err := s.gather(ctx, userID, period, nil)
	if err != nil {
		return nil, err
	}

	total, completed := reduce(statuses, model.StateCompleted)
	return &model.CompletionReport{
		UserID:    userID,
		Period:    period,
		Total:     total,
		Completed: completed,
		Percent:   model.PercentOf(completed, total),
	}, nil
}

// DailyOrWeeklyProgress は周期区分ごとの実行進捗レポートを返す。
// dailyは当日のみ（PeriodNow）、weeklyは過去7日間（PeriodWeek）を集計する。
// 期間だけではフィルタとして不十分なため（週次窓には日次習慣のステータスも
// 蓄積されている）、対象周期区分の習慣に属するステータスのみを数える。
func (s *Service) DailyOrWeeklyProgress(ctx context.Context, userID string, freq model.Frequency) (*model.ProgressReport, error) {
	s.metrics.RecordReportRequest("daily_or_weekly_progress")

	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}

	period := model.PeriodNow
	if freq == model.FrequencyWeekly {
		period = model.PeriodWeek
	}

	statuses, err := s.gather(ctx, userID, period, &freq)
	if err != nil {
		return nil, err
	}

	total, completed := reduce(statuses, model.StateCompleted)
	return &model.ProgressReport{
		UserID:    userID,
		Frequency: freq,
		Total:     total,
		Completed: completed,
		Percent:   model.PercentOf(completed, total),
	}, nil
}

// UncompletedStreaks は未実行ステータス数のレポートを返す。
// 日次レポート（当日・日次習慣のみ）と週次レポート（過去7日・週次習慣のみ）を
// 1回の呼び出しで集計し、実行待ち（waiting）の件数を数える。
func (s *Service) UncompletedStreaks(ctx context.Context, userID string) (*model.UncompletedReport, error) {
	s.metrics.RecordReportRequest("uncompleted_streaks")

	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}

	daily := model.FrequencyDaily
	dailyStatuses, err := s.gather(ctx, userID, model.PeriodNow, &daily)
	if err != nil {
		return nil, err
	}

	weekly := model.FrequencyWeekly
	weeklyStatuses, err := s.gather(ctx, userID, model.PeriodWeek, &weekly)
	if err != nil {
		return nil, err
	}

	totalDaily, uncompletedDaily := reduce(dailyStatuses, model.StateWaiting)
	totalWeekly, uncompletedWeekly := reduce(weeklyStatuses, model.StateWaiting)

	return &model.UncompletedReport{
		UserID:            userID,
		TotalDaily:        totalDaily,
		TotalWeekly:       totalWeekly,
		UncompletedDaily:  uncompletedDaily,
		UncompletedWeekly: uncompletedWeekly,
	}, nil
}

// checkUser はユーザーの存在を確認する。
func (s *Service) checkUser(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return s.reportUnavailable("user lookup failed", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}
	return nil
}

// gather はユーザーの習慣を列挙し、各習慣のステータスを集計窓から収集して
// 1つのリストに結合する。freqが指定された場合はその周期区分の習慣のみを対象にする。
// いずれかのストア操作が失敗した場合は部分的な結果を返さず、全体を失敗させる。
func (s *Service) gather(ctx context.Context, userID string, period model.Period, freq *model.Frequency) ([]*model.HabitStatus, error) {
	habits, err := s.habitRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, s.reportUnavailable("habit listing failed", err)
	}

	from := s.cal.OffsetBefore(period)
	to := s.cal.Today()

	var statuses []*model.HabitStatus
	for _, habit := range habits {
		if freq != nil && habit.Frequency != *freq {
			continue
		}

		habitStatuses, err := s.statusRepo.ListByHabitInRange(ctx, habit.ID, from, to)
		if err != nil {
			return nil, s.reportUnavailable("status range fetch failed", err)
		}
		statuses = append(statuses, habitStatuses...)
	}

	return statuses, nil
}

// reportUnavailable はストア障害をログに記録し、レポート取得不能エラーを返す。
// 呼び出し元には部分的な集計結果を一切返さない。
func (s *Service) reportUnavailable(msg string, err error) error {
	slog.Error("report aggregation failed",
		slog.String("reason", msg),
		slog.String("error", err.Error()),
	)
	return model.NewReportUnavailableError()
}

// reduce はステータスのリストから総数と指定状態の件数を数える。
func reduce(statuses []*model.HabitStatus, state model.CompletionState) (total, matched int) {
	total = len(statuses)
	for _, status := range statuses {
		if status.State == state {
			matched++
		}
	}
	return total, matched
}
