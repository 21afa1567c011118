package repository

import (
	"context"
	"time"

	"github.com/hamiddiallo/ecommerce/internal/domain/model"
)

const (
	AuditLogDefaultLimit = 50
	AuditLogMaxLimit     = 200
)

// AuditLogFilter は管理画面の監査ログ一覧の条件。nilの項目は絞り込まない
type AuditLogFilter struct {
	ActorUserID  *int64
	Action       *model.AuditAction
	ResourceType *model.AuditResourceType
	ResourceID   *int64
	Since        *time.Time
	Until        *time.Time

	// 0はAuditLogDefaultLimit、上限はAuditLogMaxLimit
	Limit  int
	Offset int
}

// PageSize は実際に使う件数を返す
func (f AuditLogFilter) PageSize() int {
	switch {
	case f.Limit <= 0:
		return AuditLogDefaultLimit
	case f.Limit > AuditLogMaxLimit:
		return AuditLogMaxLimit
	}
	return f.Limit
}

// 監査ログは追記のみ。一覧は新しい順
type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
