// Package handler はHTTPハンドラーとルーティングを提供する。
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/taskman/internal/auth"
	"github.com/hitoshi/taskman/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Login はGoogle IDトークンを検証し、セッショントークンを発行する。
	Login(ctx context.Context, rawToken string) (*auth.LoginResult, error)
}

// LoginRecorder はログイン成功のメトリクスを記録するインターフェース。
type LoginRecorder interface {
	RecordLogin()
}

// AuthHandler は認証のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	metrics LoginRecorder
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, metrics LoginRecorder) *AuthHandler {
	return &AuthHandler{
		service: service,
		metrics: metrics,
	}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Token string `json:"token"`
}

// loginUserResponse はログインレスポンスに含めるユーザー情報。
type loginUserResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Picture  string `json:"picture"`
}

// loginResponse はログイン成功時のレスポンス。
type loginResponse struct {
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
	User        loginUserResponse `json:"user"`
}

// Login はGoogle IDトークンによるログインを処理する。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     model.ErrCodeInvalidRequest,
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	if req.Token == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("tokenは必須です。"))
		return
	}

	result, err := h.service.Login(r.Context(), req.Token)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordLogin()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(loginResponse{
		AccessToken: result.AccessToken,
		TokenType:   "bearer",
		User: loginUserResponse{
			ID:       result.User.ID,
			Email:    result.User.Email,
			FullName: result.User.Name,
			Picture:  result.User.Picture,
		},
	})
}
