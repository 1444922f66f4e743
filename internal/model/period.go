// Package model はドメインモデルを定義する。
package model

// Period はレポート集計に使う日数付きの期間区分を表す。
// 集計窓は [today - Days(), today] の両端を含む範囲になる。
type Period string

const (
	// PeriodNow は当日のみの期間（0日）。
	PeriodNow Period = "now"
	// PeriodDay は前日からの期間（1日）。
	PeriodDay Period = "day"
	// PeriodWeek は過去7日間の期間。
	PeriodWeek Period = "week"
	// PeriodMonth は過去30日間の期間。
	PeriodMonth Period = "month"
)

// periodDays は期間区分ごとの日数。
var periodDays = map[Period]int{
	PeriodNow:   0,
	PeriodDay:   1,
	PeriodWeek:  7,
	PeriodMonth: 30,
}

// ParsePeriod は文字列からPeriodを解析する。
// サポート外の値の場合はエラーを返す。
func ParsePeriod(s string) (Period, error) {
	p := Period(s)
	if _, ok := periodDays[p]; !ok {
		return "", NewInvalidPeriodError(s)
	}
	return p, nil
}

// Days は期間区分の日数を返す。
func (p Period) Days() int {
	return periodDays[p]
}
