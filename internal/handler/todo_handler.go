package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/todo"
)

// TodoServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
type TodoServiceInterface interface {
	// List は所有者のタスク一覧を返す。
	List(ctx context.Context, ownerID string) ([]*model.Todo, error)
	// Create は新しいタスクを作成する。
	Create(ctx context.Context, ownerID string, in todo.Input) (*model.Todo, error)
	// Update は所有者のタスクを全フィールド置換で更新する。
	Update(ctx context.Context, ownerID, todoID string, in todo.Input) (*model.Todo, error)
	// Delete は所有者のタスクを削除する。
	Delete(ctx context.Context, ownerID, todoID string) error
	// Seed は所有者のタスクをサンプルデータで置き換える。
	Seed(ctx context.Context, ownerID string) (int, error)
}

// TodoMetricsRecorder はタスク操作のメトリクスを記録するインターフェース。
type TodoMetricsRecorder interface {
	RecordTodoCreated()
	RecordTodoDeleted()
	RecordTodosSeeded(count int)
}

// TodoHandler はタスク管理のHTTPハンドラー。
type TodoHandler struct {
	service TodoServiceInterface
	metrics TodoMetricsRecorder
}

// NewTodoHandler はTodoHandlerを生成する。
func NewTodoHandler(service TodoServiceInterface, metrics TodoMetricsRecorder) *TodoHandler {
	return &TodoHandler{
		service: service,
		metrics: metrics,
	}
}

// todoRequest はタスク作成・更新リクエストのボディ。
// クライアントが送ったidやcreated_atは束縛せず無視する。
type todoRequest struct {
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	Status    string     `json:"status"`
	DueDate   *time.Time `json:"due_date"`
	StartDate *time.Time `json:"start_date"`
}

// toInput はリクエストボディをサービス入力に変換する。
func (req *todoRequest) toInput() todo.Input {
	return todo.Input{
		Title:     req.Title,
		Completed: req.Completed,
		Status:    model.TodoStatus(req.Status),
		DueDate:   req.DueDate,
		StartDate: req.StartDate,
	}
}

// todoResponse はタスク情報のAPIレスポンス。
type todoResponse struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner_id"`
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	DueDate   *time.Time `json:"due_date"`
	StartDate *time.Time `json:"start_date"`
}

// seedResponse はシード投入結果のレスポンス。
type seedResponse struct {
	Seeded int `json:"seeded"`
}

// ListTodos は認証済みユーザーのタスク一覧を返す。
// GET /todos
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	todos, err := h.service.List(r.Context(), ownerID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// タスクがない場合もnullではなく空配列を返す
	responses := make([]todoResponse, 0, len(todos))
	for _, t := range todos {
		responses = append(responses, toTodoResponse(t))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}

// CreateTodo は新しいタスクを作成する。
// POST /todos
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req todoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     model.ErrCodeInvalidRequest,
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	created, err := h.service.Create(r.Context(), ownerID, req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordTodoCreated()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toTodoResponse(created))
}

// UpdateTodo は既存のタスクを全フィールド置換で更新する。
// PUT /todos/:id
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	todoID := chi.URLParam(r, "id")

	var req todoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     model.ErrCodeInvalidRequest,
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	updated, err := h.service.Update(r.Context(), ownerID, todoID, req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toTodoResponse(updated))
}

// DeleteTodo はタスクを削除する。
// DELETE /todos/:id
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	todoID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), ownerID, todoID); err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordTodoDeleted()

	w.WriteHeader(http.StatusNoContent)
}

// SeedTodos は認証済みユーザーのタスクをサンプルデータで置き換える。
// POST /seed
func (h *TodoHandler) SeedTodos(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	count, err := h.service.Seed(r.Context(), ownerID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordTodosSeeded(count)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(seedResponse{Seeded: count})
}

// --- ヘルパー関数 ---

// toTodoResponse はmodel.TodoからAPIレスポンスに変換する。
func toTodoResponse(t *model.Todo) todoResponse {
	return todoResponse{
		ID:        t.ID,
		OwnerID:   t.OwnerID,
		Title:     t.Title,
		Completed: t.Completed,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
		DueDate:   t.DueDate,
		StartDate: t.StartDate,
	}
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidToken, model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeTodoNotFound:
		return http.StatusNotFound
	case model.ErrCodeValidationError, model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
