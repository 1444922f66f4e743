// Package calendar は日付計算サービスを提供する。
// ステータス生成と統計レポートの両方が、ここで計算した集計窓を使用する。
package calendar

import (
	"time"

	"github.com/hitoshi/habitd/internal/model"
)

// Clock は現在時刻の取得を抽象化するインターフェース。
// テストでは固定時刻を返す実装に差し替える。
type Clock interface {
	// Now は現在時刻を返す。
	Now() time.Time
}

// SystemClock はシステム時計を使用するClock実装。
type SystemClock struct{}

// Now は現在時刻を返す。
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Service は日単位の日付計算を提供する。
// 副作用を持たず、同じ時計の読み取りに対して常に同じ結果を返す。
type Service struct {
	clock Clock
}

// NewService はServiceの新しいインスタンスを生成する。
// clockがnilの場合はシステム時計を使用する。
func NewService(clock Clock) *Service {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Service{clock: clock}
}

// Today は当日の日付を日単位の粒度（UTC 00:00:00）で返す。
func (s *Service) Today() time.Time {
	return Truncate(s.clock.Now())
}

// OffsetBefore は当日から期間区分の日数分だけ遡った日付を返す。
// PeriodWeekなら7日前、PeriodNowなら当日そのものになる。
// レポートの集計窓 [OffsetBefore(p), Today()] はこの値を下限とする。
func (s *Service) OffsetBefore(p model.Period) time.Time {
	return s.Today().AddDate(0, 0, -p.Days())
}

// GenerationWindow は週次ステータス生成用の当日を含む7日間の窓を返す。
// fromは6日前、toは当日で、両端を含む。週次習慣のステータスはこの窓に
// 1件しか存在してはならない。
func (s *Service) GenerationWindow() (from, to time.Time) {
	to = s.Today()
	from = to.AddDate(0, 0, -6)
	return from, to
}

// Truncate は時刻成分を破棄し、日単位の粒度（UTC 00:00:00）に丸める。
func Truncate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
