// Package model はドメインモデルを定義する。
package model

import "time"

// HabitStatus は特定日における習慣の実行記録を表す。
// Dateは日単位の粒度で保持し、時刻成分は持たない。
// ステータス生成ワーカーのみが新規作成し、新規作成時は必ずStateWaitingで始まる。
type HabitStatus struct {
	ID        string
	HabitID   string
	Date      time.Time
	State     CompletionState
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CompletionState は習慣の実行状態を表す。
type CompletionState string

const (
	// StateWaiting は実行待ちの状態。
	StateWaiting CompletionState = "waiting"
	// StateCompleted は実行済みの状態。
	StateCompleted CompletionState = "completed"
)

// Label は実行状態の表示名を返す。
func (s CompletionState) Label() string {
	switch s {
	case StateWaiting:
		return "実行待ち"
	case StateCompleted:
		return "実行済み"
	default:
		return string(s)
	}
}
