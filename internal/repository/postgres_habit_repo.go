package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/habitd/internal/model"
)

// PostgresHabitRepo はPostgreSQLを使用した習慣リポジトリ。
type PostgresHabitRepo struct {
	db *sql.DB
}

// NewPostgresHabitRepo はPostgresHabitRepoを生成する。
func NewPostgresHabitRepo(db *sql.DB) *PostgresHabitRepo {
	return &PostgresHabitRepo{db: db}
}

// FindByID は指定IDの習慣を取得する。見つからない場合はnilを返す。
func (r *PostgresHabitRepo) FindByID(ctx context.Context, id string) (*model.Habit, error) {
	habit := &model.Habit{}

	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, description, frequency, created_at, updated_at
		 FROM habits WHERE id = $1`,
		id,
	).Scan(
		&habit.ID, &habit.UserID, &habit.Title, &habit.Description,
		&habit.Frequency, &habit.CreatedAt, &habit.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("習慣の取得に失敗しました: %w", err)
	}

	return habit, nil
}

// Create は習慣を作成する。
func (r *PostgresHabitRepo) Create(ctx context.Context, habit *model.Habit) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO habits (id, user_id, title, description, frequency, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		habit.ID, habit.UserID, habit.Title, habit.Description,
		habit.Frequency, habit.CreatedAt, habit.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("習慣の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は習慣のタイトル・説明・周期区分を更新する。
func (r *PostgresHabitRepo) Update(ctx context.Context, habit *model.Habit) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE habits SET
		    title = $2, description = $3, frequency = $4, updated_at = $5
		 WHERE id = $1`,
		habit.ID, habit.Title, habit.Description, habit.Frequency, habit.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("習慣の更新に失敗しました: %w", err)
	}
	return nil
}

// DeleteByID は指定IDの習慣を削除する。
// 関連するhabit_statusesはCASCADE削除される。
func (r *PostgresHabitRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM habits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("習慣の削除に失敗しました: %w", err)
	}
	return nil
}

// ListByFrequency は指定周期区分の全習慣を返す。
// ステータス生成ワーカーが全ユーザー横断で生成対象を列挙するために使う。
func (r *PostgresHabitRepo) ListByFrequency(ctx context.Context, freq model.Frequency) ([]*model.Habit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, description, frequency, created_at, updated_at
		 FROM habits WHERE frequency = $1
		 ORDER BY created_at ASC`,
		freq,
	)
	if err != nil {
		return nil, fmt.Errorf("周期区分による習慣一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return scanHabits(rows)
}

// ListByUserID はユーザーの全習慣を作成日時昇順で返す。
func (r *PostgresHabitRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Habit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, description, frequency, created_at, updated_at
		 FROM habits WHERE user_id = $1
		 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ユーザー習慣一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return scanHabits(rows)
}

// CountByUserID はユーザーの習慣数を返す。
func (r *PostgresHabitRepo) CountByUserID(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM habits WHERE user_id = $1`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ユーザー習慣数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// scanHabits は結果セットから習慣のスライスを組み立てる。
func scanHabits(rows *sql.Rows) ([]*model.Habit, error) {
	var habits []*model.Habit
	for rows.Next() {
		habit := &model.Habit{}
		if err := rows.Scan(
			&habit.ID, &habit.UserID, &habit.Title, &habit.Description,
			&habit.Frequency, &habit.CreatedAt, &habit.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("習慣行の読み取りに失敗しました: %w", err)
		}
		habits = append(habits, habit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("習慣一覧の走査に失敗しました: %w", err)
	}
	return habits, nil
}
