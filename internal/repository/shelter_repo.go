package repository

import (
	"context"

	"gorm.io/gorm"

	"shelter-caller/internal/model"
	"shelter-caller/pkg/businessday"
)

// ShelterRepository 收容所数据访问接口
type ShelterRepository interface {
	Create(ctx context.Context, s *model.Shelter) error
	GetByID(ctx context.Context, id uint) (*model.Shelter, error)
	GetByLoginID(ctx context.Context, loginID string) (*model.Shelter, error)
	List(ctx context.Context) ([]model.Shelter, error)
	ListVisible(ctx context.Context, publicOnly bool) ([]model.Shelter, error)
	Update(ctx context.Context, s *model.Shelter) error
	Delete(ctx context.Context, id uint) (bool, error)
	// ListUncontacted 启用、号码非空且当日无记录的收容所，按 id 升序
	ListUncontacted(ctx context.Context, day businessday.Date) ([]model.Shelter, error)
}

type shelterRepo struct {
	db *gorm.DB
}

// NewShelterRepo 创建 ShelterRepository 实例
func NewShelterRepo(db *gorm.DB) ShelterRepository {
	return &shelterRepo{db: db}
}

func (r *shelterRepo) Create(ctx context.Context, s *model.Shelter) error {
	return classify(r.db.WithContext(ctx).Create(s).Error)
}

func (r *shelterRepo) GetByID(ctx context.Context, id uint) (*model.Shelter, error) {
	var s model.Shelter
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *shelterRepo) GetByLoginID(ctx context.Context, loginID string) (*model.Shelter, error) {
	var s model.Shelter
	err := r.db.WithContext(ctx).Where("login_id = ?", loginID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *shelterRepo) List(ctx context.Context) ([]model.Shelter, error) {
	var list []model.Shelter
	err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error
	return list, err
}

func (r *shelterRepo) ListVisible(ctx context.Context, publicOnly bool) ([]model.Shelter, error) {
	var list []model.Shelter
	db := r.db.WithContext(ctx).Where("visible = ?", true)
	if publicOnly {
		db = db.Where("public = ?", true)
	}
	err := db.Order("name ASC").Find(&list).Error
	return list, err
}

func (r *shelterRepo) Update(ctx context.Context, s *model.Shelter) error {
	return classify(r.db.WithContext(ctx).Save(s).Error)
}

// Delete 依赖外键 ON DELETE CASCADE 一并删除 counts / logs
func (r *shelterRepo) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Shelter{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *shelterRepo) ListUncontacted(ctx context.Context, day businessday.Date) ([]model.Shelter, error) {
	var list []model.Shelter
	err := r.db.WithContext(ctx).
		Joins("LEFT JOIN counts ON counts.shelter_id = shelters.id AND counts.day = ?", day).
		Where("counts.shelter_id IS NULL").
		Where("shelters.active = ?", true).
		Where("shelters.phone IS NOT NULL AND shelters.phone <> ''").
		Order("shelters.id ASC").
		Find(&list).Error
	return list, err
}
