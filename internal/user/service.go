// Package user はユーザーディレクトリのビジネスロジックを提供する。
package user

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
)

// Service はsubject識別子とユーザーレコードの対応を管理する。
type Service struct {
	users repository.UserRepository
}

// NewService はServiceを生成する。
func NewService(users repository.UserRepository) *Service {
	return &Service{users: users}
}

// GetOrCreate はsubject識別子でユーザーを検索し、存在しない場合は作成する。
// 既存ユーザーの場合は保存済みレコードをそのまま返し、
// 引数のプロフィール（email, name, picture）は破棄する。
func (s *Service) GetOrCreate(ctx context.Context, id, email, name, picture string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("subject id is required")
	}

	user, err := s.users.GetOrCreate(ctx, &model.User{
		ID:        id,
		Email:     email,
		Name:      name,
		Picture:   picture,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}

	return user, nil
}
