package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shelter-caller/internal/model"
)

// PreferenceRepository 偏好设置数据访问接口
type PreferenceRepository interface {
	Get(ctx context.Context, appID string) (*model.Preference, error)
	// CreateIfAbsent 已存在同 app_id 的行时不做任何修改
	CreateIfAbsent(ctx context.Context, p *model.Preference) error
	Update(ctx context.Context, p *model.Preference) error
}

type preferenceRepo struct {
	db *gorm.DB
}

// NewPreferenceRepo 创建 PreferenceRepository 实例
func NewPreferenceRepo(db *gorm.DB) PreferenceRepository {
	return &preferenceRepo{db: db}
}

func (r *preferenceRepo) Get(ctx context.Context, appID string) (*model.Preference, error) {
	var p model.Preference
	err := r.db.WithContext(ctx).Where("app_id = ?", appID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *preferenceRepo) CreateIfAbsent(ctx context.Context, p *model.Preference) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "app_id"}}, DoNothing: true}).
		Create(p).Error
}

func (r *preferenceRepo) Update(ctx context.Context, p *model.Preference) error {
	return r.db.WithContext(ctx).Save(p).Error
}
