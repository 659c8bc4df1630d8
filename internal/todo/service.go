// Package todo はタスク管理のビジネスロジックを提供する。
package todo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
)

// Input はタスクの作成・更新で呼び出し側が指定できるフィールド。
// idとcreated_atは含まない。これらはサーバーが割り当て、呼び出し側の値は常に無視される。
type Input struct {
	Title     string
	Completed bool
	Status    model.TodoStatus
	DueDate   *time.Time
	StartDate *time.Time
}

// validate は入力を検証する。statusが空の場合はpendingを補う。
func (in *Input) validate() error {
	if in.Title == "" {
		return model.NewValidationError("titleは必須です。")
	}
	if in.Status == "" {
		in.Status = model.TodoStatusPending
	}
	if !in.Status.IsValid() {
		return model.NewValidationError(fmt.Sprintf("無効なstatusです: %s", in.Status))
	}
	return nil
}

// Service はタスクに関するビジネスロジックを提供する。
// すべての操作は認証済みユーザーのIDを所有者条件として適用する。
type Service struct {
	todos repository.TodoRepository
}

// NewService はServiceを生成する。
func NewService(todos repository.TodoRepository) *Service {
	return &Service{todos: todos}
}

// List は呼び出しユーザーが所有する全タスクを挿入順で返す。
func (s *Service) List(ctx context.Context, ownerID string) ([]*model.Todo, error) {
	todos, err := s.todos.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// Create はタスクを作成する。
// IDとCreatedAtはサーバーが無条件に割り当てる。
// statusが空の場合はpendingになる。completedとstatusの整合性は検証しない。
func (s *Service) Create(ctx context.Context, ownerID string, in Input) (*model.Todo, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	todo := &model.Todo{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Title:     in.Title,
		Completed: in.Completed,
		Status:    in.Status,
		CreatedAt: time.Now(),
		DueDate:   in.DueDate,
		StartDate: in.StartDate,
	}

	if err := s.todos.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	slog.Info("todo created",
		slog.String("todo_id", todo.ID),
		slog.String("owner_id", ownerID),
	)

	return todo, nil
}

// Update は可変フィールドを全置換する。ID・CreatedAt・OwnerIDは保持される。
// タスクが存在しない、または呼び出しユーザーの所有でない場合は
// 同一のTODO_NOT_FOUNDエラーを返す。
func (s *Service) Update(ctx context.Context, ownerID, todoID string, in Input) (*model.Todo, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	updated, err := s.todos.Update(ctx, &model.Todo{
		ID:        todoID,
		OwnerID:   ownerID,
		Title:     in.Title,
		Completed: in.Completed,
		Status:    in.Status,
		DueDate:   in.DueDate,
		StartDate: in.StartDate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}
	if updated == nil {
		return nil, model.NewTodoNotFoundError(todoID)
	}

	return updated, nil
}

// Delete はタスクを削除する。復元はできない。
// 所有者スコープの扱いはUpdateと同じ。
func (s *Service) Delete(ctx context.Context, ownerID, todoID string) error {
	deleted, err := s.todos.Delete(ctx, ownerID, todoID)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if !deleted {
		return model.NewTodoNotFoundError(todoID)
	}

	slog.Info("todo deleted",
		slog.String("todo_id", todoID),
		slog.String("owner_id", ownerID),
	)

	return nil
}

// Seed は呼び出しユーザーの全タスクをデモデータで置き換え、作成件数を返す。
// 破壊的な一括操作であり、既存タスクはすべて削除される。
func (s *Service) Seed(ctx context.Context, ownerID string) (int, error) {
	todos := GenerateSeedTodos(ownerID, time.Now())

	if err := s.todos.ReplaceAllForOwner(ctx, ownerID, todos); err != nil {
		return 0, fmt.Errorf("failed to reseed todos: %w", err)
	}

	slog.Info("todos reseeded",
		slog.String("owner_id", ownerID),
		slog.Int("count", len(todos)),
	)

	return len(todos), nil
}
