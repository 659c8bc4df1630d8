// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"

	"github.com/hitoshi/taskman/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
// 更新・削除操作は公開しない。ユーザーは初回ログイン時に作成されたきりになる。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// GetOrCreate は指定IDのユーザーをアトミックに取得または作成する。
	// 既存レコードがある場合はそれをそのまま返し、引数のプロフィールは破棄する。
	GetOrCreate(ctx context.Context, user *model.User) (*model.User, error)
}

// TodoRepository はタスクデータの永続化インターフェース。
// すべての読み書きはowner_idで暗黙的にフィルタされる。
// 所有者が異なるtaskは存在しない場合と区別できない。
type TodoRepository interface {
	// ListByOwner は指定ユーザーが所有する全タスクを挿入順で返す。
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Todo, error)

	// FindByOwnerAndID は指定ユーザーが所有するタスクを取得する。
	// タスクが存在しない、または他ユーザーの所有の場合はnilを返す。
	FindByOwnerAndID(ctx context.Context, ownerID, id string) (*model.Todo, error)

	// Create はタスクを作成する。
	Create(ctx context.Context, todo *model.Todo) error

	// Update は可変フィールド（title, completed, status, due_date, start_date）を
	// 単一ステートメントで全置換し、更新後のタスクを返す。
	// id・created_at・owner_idは変更されない。
	// 対象タスクが存在しない、または所有者が異なる場合はnilを返す。
	Update(ctx context.Context, todo *model.Todo) (*model.Todo, error)

	// Delete は指定ユーザーが所有するタスクを削除する。
	// 削除された場合はtrueを、存在しないまたは所有者が異なる場合はfalseを返す。
	Delete(ctx context.Context, ownerID, id string) (bool, error)

	// ReplaceAllForOwner は指定ユーザーの全タスクを削除し、
	// 与えられたタスク群を同一トランザクションで一括挿入する。
	ReplaceAllForOwner(ctx context.Context, ownerID string, todos []*model.Todo) error
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
