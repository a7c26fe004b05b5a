package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"timeface/internal/model"
)

// AppSettingRepository 应用配置数据访问接口
type AppSettingRepository interface {
	List(ctx context.Context) ([]model.AppSetting, error)
	Get(ctx context.Context, key string) (*model.AppSetting, error)
	// Upsert 单事务写入多项配置
	Upsert(ctx context.Context, settings []model.AppSetting) error
}

type appSettingRepo struct {
	db *gorm.DB
}

// NewAppSettingRepo 创建 AppSettingRepository 实例
func NewAppSettingRepo(db *gorm.DB) AppSettingRepository {
	return &appSettingRepo{db: db}
}

func (r *appSettingRepo) List(ctx context.Context) ([]model.AppSetting, error) {
	var list []model.AppSetting
	err := r.db.WithContext(ctx).Order(`"key" ASC`).Find(&list).Error
	return list, err
}

func (r *appSettingRepo) Get(ctx context.Context, key string) (*model.AppSetting, error) {
	var s model.AppSetting
	err := r.db.WithContext(ctx).Where(`"key" = ?`, key).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *appSettingRepo) Upsert(ctx context.Context, settings []model.AppSetting) error {
	if len(settings) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
		}).Create(&settings).Error
	})
}
