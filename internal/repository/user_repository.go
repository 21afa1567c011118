package repository

import (
	"context"
	"time"

	"github.com/hamiddiallo/ecommerce/internal/domain/model"
)

// 保存・取得を約束。見つからない時はErrNotFound
type UserRepository interface {
	//新規ユーザー作成（email重複はErrDuplicate）
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// ユーザー情報の更新=>アクティブかどうか・ロールの変更・最後のログイン更新など
	Update(ctx context.Context, user *model.User) error
	//トークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, userID int64) error
	//last_login_atだけ更新（token_versionなど他の列は触らない）
	TouchLastLogin(ctx context.Context, userID int64, at time.Time) error
}
