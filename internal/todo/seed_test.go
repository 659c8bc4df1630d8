package todo

import (
	"testing"
	"time"

	"github.com/hitoshi/taskman/internal/model"
)

// 6ヶ月 x 5件 = 30件が生成されることを検証
func TestGenerateSeedTodos_Count(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	todos := GenerateSeedTodos("user-1", now)

	if len(todos) != 30 {
		t.Fatalf("len(todos) = %d, want 30", len(todos))
	}
}

// 全タスクに所有者・ID・ステータスが設定されることを検証
func TestGenerateSeedTodos_Fields(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	todos := GenerateSeedTodos("user-1", now)

	seen := map[string]bool{}
	for _, todo := range todos {
		if todo.OwnerID != "user-1" {
			t.Errorf("OwnerID = %q, want %q", todo.OwnerID, "user-1")
		}
		if todo.ID == "" {
			t.Error("ID is empty")
		}
		if seen[todo.ID] {
			t.Errorf("duplicate ID: %s", todo.ID)
		}
		seen[todo.ID] = true
		if !todo.Status.IsValid() {
			t.Errorf("invalid status: %q", todo.Status)
		}
		// completedはステータスがcompletedの場合のみtrue
		if todo.Completed != (todo.Status == model.TodoStatusCompleted) {
			t.Errorf("Completed = %v inconsistent with Status = %q", todo.Completed, todo.Status)
		}
	}
}

// 最初の月の先頭タスクが当月1日10:00に作成され、期限が3日17:00であることを検証
func TestGenerateSeedTodos_Dates(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	todos := GenerateSeedTodos("user-1", now)

	first := todos[0]
	wantCreated := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	if !first.CreatedAt.Equal(wantCreated) {
		t.Errorf("CreatedAt = %v, want %v", first.CreatedAt, wantCreated)
	}

	if first.DueDate == nil {
		t.Fatal("DueDate = nil, want set")
	}
	wantDue := time.Date(2025, time.June, 3, 17, 0, 0, 0, time.UTC)
	if !first.DueDate.Equal(wantDue) {
		t.Errorf("DueDate = %v, want %v", *first.DueDate, wantDue)
	}

	if first.Title != "Task 6-0" {
		t.Errorf("Title = %q, want %q", first.Title, "Task 6-0")
	}
}

// 年をまたぐ月の巻き戻しを検証
func TestGenerateSeedTodos_YearRollover(t *testing.T) {
	now := time.Date(2025, time.February, 10, 12, 0, 0, 0, time.UTC)
	todos := GenerateSeedTodos("user-1", now)

	// monthOffset=5 → 2月-5=-3 → 前年9月
	last := todos[len(todos)-1]
	if last.CreatedAt.Year() != 2024 {
		t.Errorf("CreatedAt.Year() = %d, want 2024", last.CreatedAt.Year())
	}
	if last.CreatedAt.Month() != time.September {
		t.Errorf("CreatedAt.Month() = %v, want September", last.CreatedAt.Month())
	}
}
