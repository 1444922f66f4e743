// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, habit, report, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeHabitNotFound     = "HABIT_NOT_FOUND"
	ErrCodeStatusNotFound    = "STATUS_NOT_FOUND"
	ErrCodeDuplicateEmail    = "DUPLICATE_EMAIL"
	ErrCodeInvalidFrequency  = "INVALID_FREQUENCY"
	ErrCodeInvalidPeriod     = "INVALID_PERIOD"
	ErrCodeEmptyTitle        = "EMPTY_TITLE"
	ErrCodeReportUnavailable = "REPORT_UNAVAILABLE"
)

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "指定されたユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewHabitNotFoundError は習慣未検出エラーを生成する。
func NewHabitNotFoundError(habitID string) *APIError {
	return &APIError{
		Code:     ErrCodeHabitNotFound,
		Message:  fmt.Sprintf("指定された習慣が見つかりません: %s", habitID),
		Category: "habit",
		Action:   "習慣一覧を再読み込みしてください。",
	}
}

// NewStatusNotFoundError はステータス未検出エラーを生成する。
func NewStatusNotFoundError(statusID string) *APIError {
	return &APIError{
		Code:     ErrCodeStatusNotFound,
		Message:  fmt.Sprintf("指定されたステータスが見つかりません: %s", statusID),
		Category: "habit",
		Action:   "ステータス一覧を再読み込みしてください。",
	}
}

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
func NewDuplicateEmailError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  fmt.Sprintf("このメールアドレスは既に登録されています: %s", email),
		Category: "validation",
		Action:   "別のメールアドレスを指定してください。",
	}
}

// NewInvalidFrequencyError は周期区分不正エラーを生成する。
func NewInvalidFrequencyError(value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidFrequency,
		Message:  fmt.Sprintf("サポートされていない周期区分です: %s", value),
		Category: "validation",
		Action:   "daily または weekly を指定してください。",
	}
}

// NewInvalidPeriodError は期間区分不正エラーを生成する。
func NewInvalidPeriodError(value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPeriod,
		Message:  fmt.Sprintf("サポートされていない期間区分です: %s", value),
		Category: "validation",
		Action:   "now、day、week、month のいずれかを指定してください。",
	}
}

// NewEmptyTitleError はタイトル未指定エラーを生成する。
func NewEmptyTitleError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyTitle,
		Message:  "習慣のタイトルが指定されていません。",
		Category: "validation",
		Action:   "タイトルを入力してください。",
	}
}

// NewReportUnavailableError はレポート取得不能エラーを生成する。
// ストア障害などで集計を完了できなかった場合に返す。部分的な集計結果は返さない。
func NewReportUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeReportUnavailable,
		Message:  "レポートを取得できませんでした。",
		Category: "report",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
