// Package model はドメインモデルを定義する。
package model

// CompletionReport は指定期間における習慣実行率のレポート。
type CompletionReport struct {
	UserID    string
	Period    Period
	Total     int
	Completed int
	Percent   int
}

// ProgressReport は周期区分ごとの実行進捗レポート。
// dailyは当日のみ、weeklyは過去7日間を集計対象とする。
type ProgressReport struct {
	UserID    string
	Frequency Frequency
	Total     int
	Completed int
	Percent   int
}

// UncompletedReport は未実行ステータス数のレポート。
// daily・weeklyの両周期を1回の呼び出しで集計する。
type UncompletedReport struct {
	UserID            string
	TotalDaily        int
	TotalWeekly       int
	UncompletedDaily  int
	UncompletedWeekly int
}

// PercentOf は整数演算による実行率を返す。
// totalが0の場合は除算せず0を返す。
func PercentOf(completed, total int) int {
	if total == 0 {
		return 0
	}
	return completed * 100 / total
}
