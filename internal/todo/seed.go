package todo

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/taskman/internal/model"
)

// seedStatuses はデモデータで循環させるステータス列。
var seedStatuses = []model.TodoStatus{
	model.TodoStatusPending,
	model.TodoStatusInProgress,
	model.TodoStatusCompleted,
}

// GenerateSeedTodos は直近6ヶ月分のデモタスクを生成する。
// 月ごとに5件、作成日は1日・6日・11日・16日・21日の10:00、
// ステータスは3種を循環し、completedはステータスがcompletedの場合のみtrue。
// 期限は作成日の2日後17:00。生成したIDと作成日時は一括挿入時にそのまま保存される。
func GenerateSeedTodos(ownerID string, now time.Time) []*model.Todo {
	todos := make([]*model.Todo, 0, 30)

	for monthOffset := 0; monthOffset < 6; monthOffset++ {
		month := int(now.Month()) - monthOffset
		year := now.Year()
		if month <= 0 {
			month += 12
			year--
		}

		for i := 0; i < 5; i++ {
			day := i*5 + 1
			status := seedStatuses[i%3]

			var dueDate *time.Time
			if day < 25 {
				d := time.Date(year, time.Month(month), day+2, 17, 0, 0, 0, time.UTC)
				dueDate = &d
			}

			todos = append(todos, &model.Todo{
				ID:        uuid.New().String(),
				OwnerID:   ownerID,
				Title:     fmt.Sprintf("Task %d-%d", month, i),
				Completed: status == model.TodoStatusCompleted,
				Status:    status,
				CreatedAt: time.Date(year, time.Month(month), day, 10, 0, 0, 0, time.UTC),
				DueDate:   dueDate,
			})
		}
	}

	return todos
}
