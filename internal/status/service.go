// Package status は習慣ステータスのドメインロジックを提供する。
// ステータスの新規作成はステータス生成ワーカーのみが行い、
// このサービスは参照・完了マーク・削除を担当する。
package status

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/habitd/internal/model"
	"github.com/hitoshi/habitd/internal/repository"
)

// Service は習慣ステータスのサービス層。
// すべての操作で、対象ステータスの所属習慣がリクエストユーザーの
// 所有物であることを確認する。
type Service struct {
	statusRepo repository.StatusRepository
	habitRepo  repository.HabitRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(statusRepo repository.StatusRepository, habitRepo repository.HabitRepository) *Service {
	return &Service{
		statusRepo: statusRepo,
		habitRepo:  habitRepo,
	}
}

// Get は指定IDのステータスを取得する。
// 他ユーザーの習慣に属するステータスは存在しないものとして扱う。
func (s *Service) Get(ctx context.Context, userID, statusID string) (*model.HabitStatus, error) {
	status, err := s.statusRepo.FindByID(ctx, statusID)
	if err != nil {
		return nil, fmt.Errorf("ステータスの取得に失敗しました: %w", err)
	}
	if status == nil {
		return nil, model.NewStatusNotFoundError(statusID)
	}

	if err := s.checkOwnership(ctx, userID, status); err != nil {
		return nil, err
	}

	return status, nil
}

// ListByHabit は指定習慣のステータスを日付降順でカーソルベース取得する。
// cursorがゼロ値の場合は先頭から取得する。limitが0以下の場合は50を使用する。
func (s *Service) ListByHabit(ctx context.Context, userID, habitID string, cursor time.Time, limit int) ([]*model.HabitStatus, error) {
	habit, err := s.habitRepo.FindByID(ctx, habitID)
	if err != nil {
		return nil, fmt.Errorf("習慣の取得に失敗しました: %w", err)
	}
	if habit == nil || habit.UserID != userID {
		return nil, model.NewHabitNotFoundError(habitID)
	}

	if limit <= 0 {
		limit = 50
	}

	statuses, err := s.statusRepo.ListByHabit(ctx, habitID, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("ステータス一覧の取得に失敗しました: %w", err)
	}
	return statuses, nil
}

// Complete はステータスを実行済みにマークする。
// 既に実行済みの場合もエラーにはしない（冪等）。
func (s *Service) Complete(ctx context.Context, userID, statusID string) (*model.HabitStatus, error) {
	status, err := s.Get(ctx, userID, statusID)
	if err != nil {
		return nil, err
	}

	if status.State == model.StateCompleted {
		return status, nil
	}

	if err := s.statusRepo.UpdateState(ctx, status.ID, model.StateCompleted); err != nil {
		return nil, fmt.Errorf("ステータスの完了マークに失敗しました: %w", err)
	}
	status.State = model.StateCompleted

	slog.Info("status completed",
		slog.String("status_id", status.ID),
		slog.String("habit_id", status.HabitID),
	)

	return status, nil
}

// Delete は指定IDのステータスを削除する。
func (s *Service) Delete(ctx context.Context, userID, statusID string) error {
	status, err := s.Get(ctx, userID, statusID)
	if err != nil {
		return err
	}

	if err := s.statusRepo.DeleteByID(ctx, status.ID); err != nil {
		return fmt.Errorf("ステータスの削除に失敗しました: %w", err)
	}
	return nil
}

// checkOwnership はステータスの所属習慣がユーザーの所有物であることを確認する。
func (s *Service) checkOwnership(ctx context.Context, userID string, status *model.HabitStatus) error {
	habit, err := s.habitRepo.FindByID(ctx, status.HabitID)
	if err != nil {
		return fmt.Errorf("習慣の取得に失敗しました: %w", err)
	}
	if habit == nil || habit.UserID != userID {
		return model.NewStatusNotFoundError(status.ID)
	}
	return nil
}
