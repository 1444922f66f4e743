// Package statusgen は習慣ステータスの定期生成ワーカーを提供する。
// 日次ジョブと週次ジョブの2つの独立したジョブを持ち、それぞれが
// 1日1回のトリガーで全習慣に対して当サイクルのステータスを冪等に生成する。
package statusgen

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/habitd/internal/calendar"
	"github.com/hitoshi/habitd/internal/model"
	"github.com/hitoshi/habitd/internal/repository"
)

// Metrics はステータス生成の記録インターフェース。
type Metrics interface {
	RecordGenerationRun(job string, duration time.Duration)
	RecordGenerationSkipped(job string)
	RecordStatusCreated(frequency string)
	RecordHabitFailure(job string)
}

// noopMetrics はメトリクス未設定時の何もしない実装。
type noopMetrics struct{}

func (noopMetrics) RecordGenerationRun(job string, duration time.Duration) {}
func (noopMetrics) RecordGenerationSkipped(job string)                     {}
func (noopMetrics) RecordStatusCreated(frequency string)                   {}
func (noopMetrics) RecordHabitFailure(job string)                          {}

// ジョブ名。ログとメトリクスのラベルに使用する。
const (
	jobDaily  = "daily"
	jobWeekly = "weekly"
)

// Generator は習慣ステータスの生成ワーカー。
//
// 同一ジョブの実行はミューテックスで直列化する。存在チェック→挿入は
// トランザクションで保護されないため、同一ジョブが重なって実行されると
// 両方が「ステータスなし」を観測して二重挿入しうる。重なったトリガーは
// キューイングせずスキップする。日次ジョブと週次ジョブは互いに素な習慣
// 集合を処理するため、相互には並行実行してよい。
//
// 1回のジョブ実行内では、習慣ごとの処理をsemaphoreパターンで
// 最大並列数を制御しながら並行実行する。習慣は独立した作業単位であり、
// 1件の失敗は残りの習慣の処理を中断しない（フェイルソフト）。
type Generator struct {
	habitRepo      repository.HabitRepository
	statusRepo     repository.StatusRepository
	cal            *calendar.Service
	logger         *slog.Logger
	metrics        Metrics
	maxConcurrency int

	dailyMu  sync.Mutex
	weeklyMu sync.Mutex
}

// NewGenerator はGeneratorの新しいインスタンスを生成する。
// maxConcurrencyが0以下の場合はデフォルト値10を使用する。
// metricsがnilの場合は記録を行わない。
func NewGenerator(
	habitRepo repository.HabitRepository,
	statusRepo repository.StatusRepository,
	cal *calendar.Service,
	logger *slog.Logger,
	metrics Metrics,
	maxConcurrency int,
) *Generator {
	if maxConcurrency <= 0 {
		maxConcurrency = 10
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Generator{
		habitRepo:      habitRepo,
		statusRepo:     statusRepo,
		cal:            cal,
		logger:         logger,
		metrics:        metrics,
		maxConcurrency: maxConcurrency,
	}
}

// Start は日次・週次の両ジョブをそれぞれ専用のティッカーで起動する。
// 起動直後に両ジョブを1回実行し、以降はintervalごとにトリガーする。
// コンテキストがキャンセルされるまで実行を継続する（ブロッキング）。
func (g *Generator) Start(ctx context.Context, interval time.Duration) {
	g.logger.Info("status generator starting",
		slog.Duration("interval", interval),
		slog.Int("max_concurrency", g.maxConcurrency),
	)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		g.runOnTicker(ctx, interval, jobDaily, g.RunDaily)
	}()
	go func() {
		defer wg.Done()
		g.runOnTicker(ctx, interval, jobWeekly, g.RunWeekly)
	}()

	wg.Wait()
	g.logger.Info("status generator stopped")
}

// runOnTicker は指定ジョブを起動直後に1回、以降はintervalごとに実行する。
func (g *Generator) runOnTicker(ctx context.Context, interval time.Duration, job string, run func(context.Context) error) {
	if err := run(ctx); err != nil {
		g.logger.Error("generation job failed",
			slog.String("job", job),
			slog.String("error", err.Error()),
		)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := run(ctx); err != nil {
				g.logger.Error("generation job failed",
					slog.String("job", job),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// RunDaily は日次生成ジョブを1回実行する。
// frequency=dailyの全習慣について、当日のステータスが存在しなければ
// waiting状態のステータスを当日付で作成する。
// 同一ジョブが実行中の場合はスキップする。
func (g *Generator) RunDaily(ctx context.Context) error {
	if !g.dailyMu.TryLock() {
		g.logger.Warn("daily generation already running, skipping trigger")
		g.metrics.RecordGenerationSkipped(jobDaily)
		return nil
	}
	defer g.dailyMu.Unlock()

	today := g.cal.Today()
	return g.generate(ctx, jobDaily, model.FrequencyDaily, func(habitID string) (bool, error) {
		return g.statusRepo.ExistsByHabitAndDate(ctx, habitID, today)
	})
}

// RunWeekly は週次生成ジョブを1回実行する。
// frequency=weeklyの全習慣について、当日を含む7日間の窓にステータスが
// 存在しなければwaiting状態のステータスを当日付で作成する。
// 週次の重複判定が固定のカレンダーキーではなくスライディングな範囲である
// ため、日付一致ではなく範囲クエリでチェックする（日付一致だと週7件の
// ステータスが生成されてしまう）。
// 同一ジョブが実行中の場合はスキップする。
func (g *Generator) RunWeekly(ctx context.Context) error {
	if !g.weeklyMu.TryLock() {
		g.logger.Warn("weekly generation already running, skipping trigger")
		g.metrics.RecordGenerationSkipped(jobWeekly)
		return nil
	}
	defer g.weeklyMu.Unlock()

	from, to := g.cal.GenerationWindow()
	return g.generate(ctx, jobWeekly, model.FrequencyWeekly, func(habitID string) (bool, error) {
		return g.statusRepo.ExistsByHabitInRange(ctx, habitID, from, to)
	})
}

// generate は指定周期区分の全習慣を列挙し、existsがfalseを返した習慣に
// 当日付のwaitingステータスを作成する。習慣ごとの失敗はログとメトリクスに
// 記録して処理を継続する。習慣一覧の取得に失敗した場合のみエラーを返し、
// 次のトリガーでのリトライに委ねる。
func (g *Generator) generate(ctx context.Context, job string, freq model.Frequency, exists func(habitID string) (bool, error)) error {
	start := time.Now()

	habits, err := g.habitRepo.ListByFrequency(ctx, freq)
	if err != nil {
		return err
	}

	if len(habits) == 0 {
		g.logger.Info("no habits to generate statuses for",
			slog.String("job", job),
		)
		g.metrics.RecordGenerationRun(job, time.Since(start))
		return nil
	}

	g.logger.Info("generation cycle starting",
		slog.String("job", job),
		slog.Int("habit_count", len(habits)),
	)

	today := g.cal.Today()

	// semaphoreパターンで並列数を制御
	sem := make(chan struct{}, g.maxConcurrency)
	var wg sync.WaitGroup
	var created int64
	var mu sync.Mutex

	for _, habit := range habits {
		wg.Add(1)
		sem <- struct{}{} // semaphore取得（ブロック）

		go func(h *model.Habit) {
			defer wg.Done()
			defer func() { <-sem }() // semaphore解放

			ok, err := g.ensureStatus(ctx, h, today, exists)
			if err != nil {
				g.logger.Error("habit status generation failed",
					slog.String("job", job),
					slog.String("habit_id", h.ID),
					slog.String("error", err.Error()),
				)
				g.metrics.RecordHabitFailure(job)
				return
			}
			if ok {
				g.metrics.RecordStatusCreated(string(freq))
				mu.Lock()
				created++
				mu.Unlock()
			}
		}(habit)
	}

	wg.Wait()

	duration := time.Since(start)
	g.logger.Info("generation cycle completed",
		slog.String("job", job),
		slog.Int("habit_count", len(habits)),
		slog.Int64("created_count", created),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)
	g.metrics.RecordGenerationRun(job, duration)

	return nil
}

// ensureStatus は1習慣分の存在チェックと挿入を行う。
// 既存ステータスがあれば何もせずfalseを返す。作成した場合はtrueを返す。
func (g *Generator) ensureStatus(ctx context.Context, habit *model.Habit, today time.Time, exists func(habitID string) (bool, error)) (bool, error) {
	found, err := exists(habit.ID)
	if err != nil {
		return false, err
	}
	if found {
		return false, nil
	}

	now := time.Now()
	status := &model.HabitStatus{
		ID:        uuid.New().String(),
		HabitID:   habit.ID,
		Date:      today,
		State:     model.StateWaiting,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := g.statusRepo.Create(ctx, status); err != nil {
		return false, err
	}

	return true, nil
}
