package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/habitd/internal/model"
)

// StatusServiceInterface はステータスハンドラーが必要とするサービスインターフェース。
type StatusServiceInterface interface {
	// Get は指定IDのステータスを取得する。
	Get(ctx context.Context, userID, statusID string) (*model.HabitStatus, error)
	// ListByHabit は指定習慣のステータスを日付降順でカーソルベース取得する。
	ListByHabit(ctx context.Context, userID, habitID string, cursor time.Time, limit int) ([]*model.HabitStatus, error)
	// Complete はステータスを実行済みにマークする。
	Complete(ctx context.Context, userID, statusID string) (*model.HabitStatus, error)
	// Delete は指定IDのステータスを削除する。
	Delete(ctx context.Context, userID, statusID string) error
}

// StatusHandler は習慣ステータスのHTTPハンドラー。
type StatusHandler struct {
	service StatusServiceInterface
}

// NewStatusHandler はStatusHandlerを生成する。
func NewStatusHandler(service StatusServiceInterface) *StatusHandler {
	return &StatusHandler{
		service: service,
	}
}

// statusResponse はステータス情報のAPIレスポンス。
type statusResponse struct {
	ID      string `json:"id"`
	HabitID string `json:"habit_id"`
	Date    string `json:"date"`
	State   string `json:"state"`
}

// statusListResponse はステータス一覧のAPIレスポンス。
type statusListResponse struct {
	Statuses   []statusResponse `json:"statuses"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// dateLayout はAPIで日付を表現するフォーマット。
const dateLayout = "2006-01-02"

// GetStatus はステータス詳細を取得する。
// GET /api/statuses/:id
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	statusID := chi.URLParam(r, "id")

	status, err := h.service.Get(r.Context(), userID, statusID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toStatusResponse(status))
}

// ListStatuses は指定習慣のステータス一覧を取得する。
// GET /api/habits/:id/statuses?cursor=2025-06-01&limit=50
func (h *StatusHandler) ListStatuses(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	habitID := chi.URLParam(r, "id")

	var cursor time.Time
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
				Code:     "INVALID_CURSOR",
				Message:  "カーソルの形式が不正です。",
				Category: "validation",
				Action:   "YYYY-MM-DD形式で指定してください。",
			})
			return
		}
		cursor = parsed
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
				Code:     "INVALID_LIMIT",
				Message:  "limitの形式が不正です。",
				Category: "validation",
				Action:   "0以上の整数で指定してください。",
			})
			return
		}
		limit = parsed
	}

	statuses, err := h.service.ListByHabit(r.Context(), userID, habitID, cursor, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := statusListResponse{
		Statuses: make([]statusResponse, len(statuses)),
	}
	for i, status := range statuses {
		resp.Statuses[i] = toStatusResponse(status)
	}
	if len(statuses) > 0 {
		resp.NextCursor = statuses[len(statuses)-1].Date.Format(dateLayout)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// CompleteStatus はステータスを実行済みにマークする。冪等。
// PUT /api/statuses/:id/complete
func (h *StatusHandler) CompleteStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	statusID := chi.URLParam(r, "id")

	status, err := h.service.Complete(r.Context(), userID, statusID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toStatusResponse(status))
}

// DeleteStatus はステータスを削除する。
// DELETE /api/statuses/:id
func (h *StatusHandler) DeleteStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	statusID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), userID, statusID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toStatusResponse はmodel.HabitStatusからAPIレスポンスに変換する。
func toStatusResponse(s *model.HabitStatus) statusResponse {
	return statusResponse{
		ID:      s.ID,
		HabitID: s.HabitID,
		Date:    s.Date.Format(dateLayout),
		State:   string(s.State),
	}
}
