package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/habitd/internal/model"
)

// StatsServiceInterface は統計ハンドラーが必要とするサービスインターフェース。
type StatsServiceInterface interface {
	// CompletionForPeriod は指定期間における全習慣の実行率レポートを返す。
	CompletionForPeriod(ctx context.Context, userID string, period model.Period) (*model.CompletionReport, error)
	// DailyOrWeeklyProgress は周期区分ごとの実行進捗レポートを返す。
	DailyOrWeeklyProgress(ctx context.Context, userID string, freq model.Frequency) (*model.ProgressReport, error)
	// UncompletedStreaks は未実行ステータス数のレポートを返す。
	UncompletedStreaks(ctx context.Context, userID string) (*model.UncompletedReport, error)
}

// StatsHandler は統計レポートのHTTPハンドラー。
type StatsHandler struct {
	service StatsServiceInterface
}

// NewStatsHandler はStatsHandlerを生成する。
func NewStatsHandler(service StatsServiceInterface) *StatsHandler {
	return &StatsHandler{
		service: service,
	}
}

// completionResponse は実行率レポートのAPIレスポンス。
type completionResponse struct {
	Period    string `json:"period"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Percent   int    `json:"percent"`
}

// progressResponse は周期区分別進捗レポートのAPIレスポンス。
type progressResponse struct {
	Frequency string `json:"frequency"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Percent   int    `json:"percent"`
}

// uncompletedResponse は未実行レポートのAPIレスポンス。
type uncompletedResponse struct {
	TotalDaily        int `json:"total_daily"`
	TotalWeekly       int `json:"total_weekly"`
	UncompletedDaily  int `json:"uncompleted_daily"`
	UncompletedWeekly int `json:"uncompleted_weekly"`
}

// GetCompletion は指定期間の実行率レポートを取得する。
// GET /api/stats/completion?period=week
func (h *StatsHandler) GetCompletion(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	period, err := model.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	report, err := h.service.CompletionForPeriod(r.Context(), userID, period)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(completionResponse{
		Period:    string(report.Period),
		Total:     report.Total,
		Completed: report.Completed,
		Percent:   report.Percent,
	})
}

// GetProgress は周期区分別の進捗レポートを取得する。
// GET /api/stats/progress?frequency=daily
func (h *StatsHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	freq, err := model.ParseFrequency(r.URL.Query().Get("frequency"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	report, err := h.service.DailyOrWeeklyProgress(r.Context(), userID, freq)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(progressResponse{
		Frequency: string(report.Frequency),
		Total:     report.Total,
		Completed: report.Completed,
		Percent:   report.Percent,
	})
}

// GetUncompleted は未実行ステータス数のレポートを取得する。
// GET /api/stats/uncompleted
func (h *StatsHandler) GetUncompleted(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	report, err := h.service.UncompletedStreaks(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(uncompletedResponse{
		TotalDaily:        report.TotalDaily,
		TotalWeekly:       report.TotalWeekly,
		UncompletedDaily:  report.UncompletedDaily,
		UncompletedWeekly: report.UncompletedWeekly,
	})
}
