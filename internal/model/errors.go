// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, todo, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidToken    = "INVALID_TOKEN"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeTodoNotFound    = "TODO_NOT_FOUND"
	ErrCodeValidationError = "VALIDATION_ERROR"
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
)

// NewInvalidTokenError はIDトークンの検証失敗エラーを生成する。
// 署名不正・audience不一致・期限切れ・形式不正のいずれも同一のエラーに集約する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Message:  "IDトークンの検証に失敗しました。",
		Category: "auth",
		Action:   "再度ログインしてください。",
	}
}

// NewUnauthorizedError はセッション認証失敗エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewTodoNotFoundError はタスク未検出エラーを生成する。
// 他ユーザーのタスクへのアクセスも存在しない場合と同じエラーを返し、
// タスクの存在有無を漏らさない。
func NewTodoNotFoundError(todoID string) *APIError {
	return &APIError{
		Code:     ErrCodeTodoNotFound,
		Message:  fmt.Sprintf("指定されたタスクが見つかりません: %s", todoID),
		Category: "todo",
		Action:   "タスクIDを確認してください。",
	}
}

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationError,
		Message:  message,
		Category: "validation",
		Action:   "リクエスト内容を確認してください。",
	}
}
