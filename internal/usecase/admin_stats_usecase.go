package usecase

import (
	"context"
	"net/http"

	"github.com/hamiddiallo/ecommerce/internal/domain/model"
	repo "github.com/hamiddiallo/ecommerce/internal/repository"
)

const defaultBestSellerLimit = 20

// 管理画面の集計と監査ログ閲覧
type AdminStatsUsecase struct {
	stats repo.StatsRepository
	audit repo.AuditLogRepository
}

func NewAdminStatsUsecase(stats repo.StatsRepository, audit repo.AuditLogRepository) *AdminStatsUsecase {
	return &AdminStatsUsecase{stats: stats, audit: audit}
}

func (u *AdminStatsUsecase) Stats(ctx context.Context) (repo.Stats, error) {
	s, err := u.stats.Summary(ctx)
	if err != nil {
		return repo.Stats{}, dbError(err)
	}
	return s, nil
}

func (u *AdminStatsUsecase) BestSellers(ctx context.Context, limit int) ([]repo.BestSeller, error) {
	if limit == 0 {
		limit = defaultBestSellerLimit
	}
	if limit < 0 || limit > 100 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	out, err := u.stats.BestSellers(ctx, limit)
	if err != nil {
		return nil, dbError(err)
	}
	return out, nil
}

type AuditLogListInput struct {
	Limit        int
	Offset       int
	ResourceType string
	ResourceID   *int64
}

func (u *AdminStatsUsecase) AuditLogs(ctx context.Context, in AuditLogListInput) ([]model.AuditLog, error) {
	if in.Limit < 0 || in.Limit > repo.AuditLogMaxLimit {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if in.Offset < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid offset")
	}

	f := repo.AuditLogFilter{Limit: in.Limit, Offset: in.Offset, ResourceID: in.ResourceID}
	switch rt := model.AuditResourceType(in.ResourceType); rt {
	case "":
	case model.AuditResourceProduct, model.AuditResourceOrder:
		f.ResourceType = &rt
	default:
		return nil, NewHTTPError(http.StatusBadRequest, "invalid resource_type")
	}

	logs, err := u.audit.List(ctx, f)
	if err != nil {
		return nil, dbError(err)
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return logs, nil
}
