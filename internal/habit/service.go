// Package habit は習慣管理のドメインロジックを提供する。
package habit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/habitd/internal/model"
	"github.com/hitoshi/habitd/internal/repository"
	"github.com/hitoshi/habitd/internal/security"
)

// StatusDeleter は習慣削除時に関連ステータスを一括削除するインターフェース。
type StatusDeleter interface {
	DeleteByHabitID(ctx context.Context, habitID string) error
}

// Service は習慣管理のサービス層。
// 作成・更新時はユーザー入力のタイトルと説明文をサニタイズする。
type Service struct {
	habitRepo     repository.HabitRepository
	statusDeleter StatusDeleter
	sanitizer     security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	habitRepo repository.HabitRepository,
	statusDeleter StatusDeleter,
	sanitizer security.TextSanitizerService,
) *Service {
	return &Service{
		habitRepo:     habitRepo,
		statusDeleter: statusDeleter,
		sanitizer:     sanitizer,
	}
}

// CreateInput は習慣作成の入力。
type CreateInput struct {
	Title       string
	Description string
	Frequency   string
}

// Create は習慣を作成する。
// タイトル・説明文はサニタイズされ、サニタイズ後にタイトルが空の場合はエラーを返す。
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*model.Habit, error) {
	freq, err := model.ParseFrequency(in.Frequency)
	if err != nil {
		return nil, err
	}

	title := s.sanitizer.Sanitize(in.Title)
	if title == "" {
		return nil, model.NewEmptyTitleError()
	}

	now := time.Now()
	habit := &model.Habit{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		Description: s.sanitizer.Sanitize(in.Description),
		Frequency:   freq,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.habitRepo.Create(ctx, habit); err != nil {
		return nil, fmt.Errorf("習慣の作成に失敗しました: %w", err)
	}

	slog.Info("habit created",
		slog.String("habit_id", habit.ID),
		slog.String("user_id", userID),
		slog.String("frequency", string(freq)),
	)

	return habit, nil
}

// Get は指定IDの習慣を取得する。
// 他ユーザーの習慣は存在しないものとして扱う。
func (s *Service) Get(ctx context.Context, userID, habitID string) (*model.Habit, error) {
	habit, err := s.habitRepo.FindByID(ctx, habitID)
	if err != nil {
		return nil, fmt.Errorf("習慣の取得に失敗しました: %w", err)
	}
	if habit == nil || habit.UserID != userID {
		return nil, model.NewHabitNotFoundError(habitID)
	}
	return habit, nil
}

// UpdateInput は習慣更新の入力。nilフィールドは変更しない。
type UpdateInput struct {
	Title       *string
	Description *string
	Frequency   *string
}

// Update は習慣のタイトル・説明・周期区分を部分更新する。
func (s *Service) Update(ctx context.Context, userID, habitID string, in UpdateInput) (*model.Habit, error) {
	habit, err := s.Get(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := s.sanitizer.Sanitize(*in.Title)
		if title == "" {
			return nil, model.NewEmptyTitleError()
		}
		habit.Title = title
	}
	if in.Description != nil {
		habit.Description = s.sanitizer.Sanitize(*in.Description)
	}
	if in.Frequency != nil {
		freq, err := model.ParseFrequency(*in.Frequency)
		if err != nil {
			return nil, err
		}
		habit.Frequency = freq
	}
	habit.UpdatedAt = time.Now()

	if err := s.habitRepo.Update(ctx, habit); err != nil {
		return nil, fmt.Errorf("習慣の更新に失敗しました: %w", err)
	}

	return habit, nil
}

// Delete は習慣を削除する。
// 削除順序: habit_statuses → habit。外部キーCASCADEにも守られているが、
// ステータスを先に消すことで削除途中でも孤児ステータスが観測されない。
func (s *Service) Delete(ctx context.Context, userID, habitID string) error {
	habit, err := s.Get(ctx, userID, habitID)
	if err != nil {
		return err
	}

	if err := s.statusDeleter.DeleteByHabitID(ctx, habit.ID); err != nil {
		return fmt.Errorf("習慣ステータスの削除に失敗しました: %w", err)
	}

	if err := s.habitRepo.DeleteByID(ctx, habit.ID); err != nil {
		return fmt.Errorf("習慣の削除に失敗しました: %w", err)
	}

	slog.Info("habit deleted",
		slog.String("habit_id", habit.ID),
		slog.String("user_id", userID),
	)

	return nil
}

// ListByUser はユーザーの全習慣と総数を返す。
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*model.Habit, int, error) {
	habits, err := s.habitRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("習慣一覧の取得に失敗しました: %w", err)
	}

	count, err := s.habitRepo.CountByUserID(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("習慣数の取得に失敗しました: %w", err)
	}

	return habits, count, nil
}
