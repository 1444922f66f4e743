// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/habitd/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するsessions、habits、habit_statusesはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// HabitRepository は習慣データの永続化インターフェース。
type HabitRepository interface {
	// FindByID は指定IDの習慣を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Habit, error)

	// Create は習慣を作成する。
	Create(ctx context.Context, habit *model.Habit) error

	// Update は習慣のタイトル・説明・周期区分を更新する。
	Update(ctx context.Context, habit *model.Habit) error

	// DeleteByID は指定IDの習慣を削除する。
	// 関連するhabit_statusesはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error

	// ListByFrequency は指定周期区分の全習慣を返す。
	// ステータス生成ワーカーが全ユーザー横断で生成対象を列挙するために使う。
	ListByFrequency(ctx context.Context, freq model.Frequency) ([]*model.Habit, error)

	// ListByUserID はユーザーの全習慣を作成日時昇順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Habit, error)

	// CountByUserID はユーザーの習慣数を返す。
	CountByUserID(ctx context.Context, userID string) (int, error)
}

// StatusRepository は習慣ステータスの永続化インターフェース。
// 生成ワーカーの存在チェックと統計エンジンの範囲取得はいずれも習慣単位で行う。
type StatusRepository interface {
	// FindByID は指定IDのステータスを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.HabitStatus, error)

	// Create はステータスを作成する。
	Create(ctx context.Context, status *model.HabitStatus) error

	// UpdateState はステータスの実行状態を更新する。
	UpdateState(ctx context.Context, id string, state model.CompletionState) error

	// DeleteByID は指定IDのステータスを削除する。
	DeleteByID(ctx context.Context, id string) error

	// DeleteByHabitID は指定習慣の全ステータスを削除する。
	DeleteByHabitID(ctx context.Context, habitID string) error

	// ExistsByHabitAndDate は指定習慣・指定日のステータスの有無を返す。
	// 日次生成ジョブの冪等性チェックに使う。
	ExistsByHabitAndDate(ctx context.Context, habitID string, date time.Time) (bool, error)

	// ExistsByHabitInRange は指定習慣のステータスが[from, to]（両端を含む）に
	// 存在するかを返す。週次生成ジョブのスライディング窓チェックに使う。
	ExistsByHabitInRange(ctx context.Context, habitID string, from, to time.Time) (bool, error)

	// ListByHabitInRange は指定習慣のステータスを[from, to]（両端を含む）から
	// 日付昇順で返す。
	ListByHabitInRange(ctx context.Context, habitID string, from, to time.Time) ([]*model.HabitStatus, error)

	// ListByHabit は指定習慣のステータスを日付降順でカーソルベース取得する。
	// cursorがゼロ値の場合は先頭から取得する。
	ListByHabit(ctx context.Context, habitID string, cursor time.Time, limit int) ([]*model.HabitStatus, error)
}
