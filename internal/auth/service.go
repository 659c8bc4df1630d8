// Package auth はIDトークンの検証、セッショントークンの発行・検証を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/taskman/internal/model"
)

// UserDirectory はログイン時のユーザー解決インターフェース。
// user.Serviceの部分集合として定義する。
type UserDirectory interface {
	// GetOrCreate はsubject識別子でユーザーを検索し、存在しない場合は作成する。
	GetOrCreate(ctx context.Context, id, email, name, picture string) (*model.User, error)
}

// LoginResult はログイン成功時の結果を表す。
type LoginResult struct {
	AccessToken string
	User        *model.User
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	verifier TokenVerifier
	users    UserDirectory
	sessions *SessionManager
}

// NewService はServiceを生成する。
func NewService(verifier TokenVerifier, users UserDirectory, sessions *SessionManager) *Service {
	return &Service{
		verifier: verifier,
		users:    users,
		sessions: sessions,
	}
}

// Login はIDトークンを検証し、セッショントークンを発行する。
// 未登録のsubjectの場合はusersレコードを自動作成する。
// 登録済みの場合は保存済みプロフィールをそのまま返し、
// IDトークン側のクレームが変わっていても上書きしない。
// 検証に失敗したIDトークンはすべてINVALID_TOKENエラーに集約する。
func (s *Service) Login(ctx context.Context, rawToken string) (*LoginResult, error) {
	// 1. IDトークンの検証
	claims, err := s.verifier.Verify(ctx, rawToken)
	if err != nil {
		slog.Warn("id token rejected", slog.String("error", err.Error()))
		return nil, model.NewInvalidTokenError()
	}

	// 2. ユーザーの解決（初回ログイン時は作成）
	user, err := s.users.GetOrCreate(ctx, claims.SubjectID, claims.Email, claims.Name, claims.Picture)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}

	// 3. セッショントークンの発行
	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	return &LoginResult{
		AccessToken: token,
		User:        user,
	}, nil
}
