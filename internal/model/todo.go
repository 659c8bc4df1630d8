// Package model はドメインモデルを定義する。
package model

import "time"

// TodoStatus はタスクの進行状態を表す。
type TodoStatus string

const (
	// TodoStatusPending は未着手のタスクを表す。
	TodoStatusPending TodoStatus = "pending"
	// TodoStatusInProgress は進行中のタスクを表す。
	TodoStatusInProgress TodoStatus = "in-progress"
	// TodoStatusCompleted は完了したタスクを表す。
	TodoStatusCompleted TodoStatus = "completed"
)

// IsValid は定義済みのステータス値かどうかを返す。
func (s TodoStatus) IsValid() bool {
	switch s {
	case TodoStatusPending, TodoStatusInProgress, TodoStatusCompleted:
		return true
	}
	return false
}

// Todo はユーザーが所有するタスクを表す。
// ID・CreatedAt・OwnerIDはサーバーが割り当て、作成後は変更されない。
// CompletedとStatusは独立したフィールドであり、相互に導出しない。
// 呼び出し側が矛盾した組み合わせを設定してもそのまま保存する。
type Todo struct {
	ID        string
	OwnerID   string
	Title     string
	Completed bool
	Status    TodoStatus
	CreatedAt time.Time
	DueDate   *time.Time
	StartDate *time.Time
}
