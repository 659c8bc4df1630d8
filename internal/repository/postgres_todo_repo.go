package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/taskman/internal/model"
)

// PostgresTodoRepo はPostgreSQLを使用したタスクリポジトリ。
// すべてのクエリはowner_idを条件に含み、他ユーザーのタスクには到達できない。
type PostgresTodoRepo struct {
	db *sql.DB
}

// NewPostgresTodoRepo はPostgresTodoRepoを生成する。
func NewPostgresTodoRepo(db *sql.DB) *PostgresTodoRepo {
	return &PostgresTodoRepo{db: db}
}

// todoColumns はtodosテーブルのSELECT対象カラム。
const todoColumns = `id, owner_id, title, completed, status, created_at, due_date, start_date`

// scanTodo は1行をmodel.Todoに読み込む。
func scanTodo(row interface{ Scan(dest ...any) error }) (*model.Todo, error) {
	todo := &model.Todo{}
	err := row.Scan(
		&todo.ID, &todo.OwnerID, &todo.Title, &todo.Completed,
		&todo.Status, &todo.CreatedAt, &todo.DueDate, &todo.StartDate,
	)
	if err != nil {
		return nil, err
	}
	return todo, nil
}

// ListByOwner は指定ユーザーが所有する全タスクを挿入順で返す。
func (r *PostgresTodoRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Todo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE owner_id = $1 ORDER BY created_at, id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := []*model.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}

	return todos, nil
}

// FindByOwnerAndID は指定ユーザーが所有するタスクを取得する。
// タスクが存在しない、または他ユーザーの所有の場合はnilを返す。
func (r *PostgresTodoRepo) FindByOwnerAndID(ctx context.Context, ownerID, id string) (*model.Todo, error) {
	todo, err := scanTodo(r.db.QueryRowContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE owner_id = $1 AND id = $2`,
		ownerID, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}

	return todo, nil
}

// Create はタスクを作成する。
func (r *PostgresTodoRepo) Create(ctx context.Context, todo *model.Todo) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO todos (id, owner_id, title, completed, status, created_at, due_date, start_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		todo.ID, todo.OwnerID, todo.Title, todo.Completed,
		todo.Status, todo.CreatedAt, todo.DueDate, todo.StartDate,
	)
	if err != nil {
		return fmt.Errorf("failed to insert todo: %w", err)
	}

	return nil
}

// Update は可変フィールドを単一ステートメントで全置換する。
// WHERE句にowner_idを含むため、他ユーザーのタスクは更新対象にならない。
// 対象が存在しない場合はnilを返す。
func (r *PostgresTodoRepo) Update(ctx context.Context, todo *model.Todo) (*model.Todo, error) {
	updated, err := scanTodo(r.db.QueryRowContext(ctx,
		`UPDATE todos
		 SET title = $1, completed = $2, status = $3, due_date = $4, start_date = $5
		 WHERE owner_id = $6 AND id = $7
		 RETURNING `+todoColumns,
		todo.Title, todo.Completed, todo.Status, todo.DueDate, todo.StartDate,
		todo.OwnerID, todo.ID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	return updated, nil
}

// Delete は指定ユーザーが所有するタスクを削除する。
// 削除された場合はtrueを返す。
func (r *PostgresTodoRepo) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM todos WHERE owner_id = $1 AND id = $2`,
		ownerID, id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete todo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// ReplaceAllForOwner は指定ユーザーの全タスクを削除し、
// 与えられたタスク群を同一トランザクションで一括挿入する。
// 他ユーザーのタスクには影響しない。
func (r *PostgresTodoRepo) ReplaceAllForOwner(ctx context.Context, ownerID string, todos []*model.Todo) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM todos WHERE owner_id = $1`,
		ownerID,
	); err != nil {
		return fmt.Errorf("failed to delete todos: %w", err)
	}

	for _, todo := range todos {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO todos (id, owner_id, title, completed, status, created_at, due_date, start_date)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			todo.ID, ownerID, todo.Title, todo.Completed,
			todo.Status, todo.CreatedAt, todo.DueDate, todo.StartDate,
		); err != nil {
			return fmt.Errorf("failed to insert todo: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// compile-time interface check
var _ TodoRepository = (*PostgresTodoRepo)(nil)
