package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/habitd/internal/model"
)

// PostgresStatusRepo はPostgreSQLを使用した習慣ステータスリポジトリ。
// dateカラムはDATE型で、範囲条件はすべて両端を含む。
type PostgresStatusRepo struct {
	db *sql.DB
}

// NewPostgresStatusRepo はPostgresStatusRepoを生成する。
func NewPostgresStatusRepo(db *sql.DB) *PostgresStatusRepo {
	return &PostgresStatusRepo{db: db}
}

// FindByID は指定IDのステータスを取得する。見つからない場合はnilを返す。
func (r *PostgresStatusRepo) FindByID(ctx context.Context, id string) (*model.HabitStatus, error) {
	status := &model.HabitStatus{}

	err := r.db.QueryRowContext(ctx,
		`SELECT id, habit_id, date, state, created_at, updated_at
		 FROM habit_statuses WHERE id = $1`,
		id,
	).Scan(
		&status.ID, &status.HabitID, &status.Date, &status.State,
		&status.CreatedAt, &status.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ステータスの取得に失敗しました: %w", err)
	}

	return status, nil
}

// Create はステータスを作成する。
func (r *PostgresStatusRepo) Create(ctx context.Context, status *model.HabitStatus) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO habit_statuses (id, habit_id, date, state, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		status.ID, status.HabitID, status.Date, status.State,
		status.CreatedAt, status.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ステータスの作成に失敗しました: %w", err)
	}
	return nil
}

// UpdateState はステータスの実行状態を更新する。
func (r *PostgresStatusRepo) UpdateState(ctx context.Context, id string, state model.CompletionState) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE habit_statuses SET state = $2, updated_at = now() WHERE id = $1`,
		id, state,
	)
	if err != nil {
		return fmt.Errorf("ステータスの更新に失敗しました: %w", err)
	}
	return nil
}

// DeleteByID は指定IDのステータスを削除する。
func (r *PostgresStatusRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM habit_statuses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ステータスの削除に失敗しました: %w", err)
	}
	return nil
}

// DeleteByHabitID は指定習慣の全ステータスを削除する。
func (r *PostgresStatusRepo) DeleteByHabitID(ctx context.Context, habitID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM habit_statuses WHERE habit_id = $1`, habitID)
	if err != nil {
		return fmt.Errorf("習慣ステータスの一括削除に失敗しました: %w", err)
	}
	return nil
}

// ExistsByHabitAndDate は指定習慣・指定日のステータスの有無を返す。
// 日次生成ジョブの冪等性チェックに使う。
func (r *PostgresStatusRepo) ExistsByHabitAndDate(ctx context.Context, habitID string, date time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(
		    SELECT 1 FROM habit_statuses WHERE habit_id = $1 AND date = $2
		 )`,
		habitID, date,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ステータス存在チェックに失敗しました: %w", err)
	}
	return exists, nil
}

// ExistsByHabitInRange は指定習慣のステータスが[from, to]（両端を含む）に
// 存在するかを返す。週次生成ジョブのスライディング窓チェックに使う。
func (r *PostgresStatusRepo) ExistsByHabitInRange(ctx context.Context, habitID string, from, to time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(
		    SELECT 1 FROM habit_statuses
		    WHERE habit_id = $1 AND date BETWEEN $2 AND $3
		 )`,
		habitID, from, to,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ステータス範囲存在チェックに失敗しました: %w", err)
	}
	return exists, nil
}

// ListByHabitInRange は指定習慣のステータスを[from, to]（両端を含む）から
// 日付昇順で返す。
func (r *PostgresStatusRepo) ListByHabitInRange(ctx context.Context, habitID string, from, to time.Time) ([]*model.HabitStatus, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, habit_id, date, state, created_at, updated_at
		 FROM habit_statuses
		 WHERE habit_id = $1 AND date BETWEEN $2 AND $3
		 ORDER BY date ASC`,
		habitID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("ステータス範囲取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return scanStatuses(rows)
}

// ListByHabit は指定習慣のステータスを日付降順でカーソルベース取得する。
// cursorがゼロ値の場合は先頭から取得する。
func (r *PostgresStatusRepo) ListByHabit(ctx context.Context, habitID string, cursor time.Time, limit int) ([]*model.HabitStatus, error) {
	var rows *sql.Rows
	var err error

	if cursor.IsZero() {
		rows, err = r.db.QueryContext(ctx,
			`SELECT id, habit_id, date, state, created_at, updated_at
			 FROM habit_statuses
			 WHERE habit_id = $1
			 ORDER BY date DESC
			 LIMIT $2`,
			habitID, limit,
		)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT id, habit_id, date, state, created_at, updated_at
			 FROM habit_statuses
			 WHERE habit_id = $1 AND date < $2
			 ORDER BY date DESC
			 LIMIT $3`,
			habitID, cursor, limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("ステータス一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return scanStatuses(rows)
}

// scanStatuses は結果セットからステータスのスライスを組み立てる。
func scanStatuses(rows *sql.Rows) ([]*model.HabitStatus, error) {
	var statuses []*model.HabitStatus
	for rows.Next() {
		status := &model.HabitStatus{}
		if err := rows.Scan(
			&status.ID, &status.HabitID, &status.Date, &status.State,
			&status.CreatedAt, &status.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ステータス行の読み取りに失敗しました: %w", err)
		}
		statuses = append(statuses, status)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ステータス一覧の走査に失敗しました: %w", err)
	}
	return statuses, nil
}
