// Package model はドメインモデルを定義する。
package model

import "time"

// Habit はユーザーが追跡する習慣を表す。
// Frequencyはステータス生成の周期を決定し、生成サイクルの途中では変更されない前提。
type Habit struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Frequency   Frequency
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Frequency は習慣の周期区分を表す。
type Frequency string

const (
	// FrequencyDaily は毎日実行する習慣。
	FrequencyDaily Frequency = "daily"
	// FrequencyWeekly は週1回実行する習慣。
	FrequencyWeekly Frequency = "weekly"
)

// ParseFrequency は文字列からFrequencyを解析する。
// サポート外の値の場合はエラーを返す。
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case FrequencyDaily:
		return FrequencyDaily, nil
	case FrequencyWeekly:
		return FrequencyWeekly, nil
	default:
		return "", NewInvalidFrequencyError(s)
	}
}

// Label は周期区分の表示名を返す。
func (f Frequency) Label() string {
	switch f {
	case FrequencyDaily:
		return "毎日"
	case FrequencyWeekly:
		return "毎週"
	default:
		return string(f)
	}
}
