package repository

import (
	"context"

	"github.com/hamiddiallo/ecommerce/internal/domain/model"
	repo "github.com/hamiddiallo/ecommerce/internal/repository"

	"gorm.io/gorm"
)

type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

func (r *auditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	return translate(r.db.WithContext(ctx).Create(&log).Error)
}

func (r *auditLogGormRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	logs := []model.AuditLog{}
	err := r.db.WithContext(ctx).
		Scopes(auditConditions(f), auditPage(f)).
		Order("id DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// 指定された条件だけANDで足す
func auditConditions(f repo.AuditLogFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		eq := map[string]any{}
		if f.ActorUserID != nil {
			eq["actor_user_id"] = *f.ActorUserID
		}
		if f.Action != nil {
			eq["action"] = string(*f.Action)
		}
		if f.ResourceType != nil {
			eq["resource_type"] = string(*f.ResourceType)
		}
		if f.ResourceID != nil {
			eq["resource_id"] = *f.ResourceID
		}
		if len(eq) > 0 {
			q = q.Where(eq)
		}
		if f.Since != nil {
			q = q.Where("created_at >= ?", *f.Since)
		}
		if f.Until != nil {
			q = q.Where("created_at < ?", *f.Until)
		}
		return q
	}
}

func auditPage(f repo.AuditLogFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		q = q.Limit(f.PageSize())
		if f.Offset > 0 {
			q = q.Offset(f.Offset)
		}
		return q
	}
}
