package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shelter-caller/internal/model"
	"shelter-caller/pkg/businessday"
)

// CountRepository 每日人数数据访问接口
type CountRepository interface {
	// Upsert 按 (shelter_id, day) 插入或覆盖，数据库唯一约束是唯一的串行化点
	Upsert(ctx context.Context, c *model.Count) error
	Get(ctx context.Context, shelterID uint, day businessday.Date) (*model.Count, error)
	// Delete 行不存在时返回 false 而非错误
	Delete(ctx context.Context, shelterID uint, day businessday.Date) (bool, error)
	ListByDay(ctx context.Context, day businessday.Date) ([]model.Count, error)
	// ListRange 闭区间 [from, to]
	ListRange(ctx context.Context, from, to businessday.Date) ([]model.Count, error)
}

type countRepo struct {
	db *gorm.DB
}

// NewCountRepo 创建 CountRepository 实例
func NewCountRepo(db *gorm.DB) CountRepository {
	return &countRepo{db: db}
}

func (r *countRepo) Upsert(ctx context.Context, c *model.Count) error {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "shelter_id"}, {Name: "day"}},
			DoUpdates: clause.AssignmentColumns([]string{"person_count", "bed_count", "time"}),
		}).
		Create(c).Error
	return classify(err)
}

func (r *countRepo) Get(ctx context.Context, shelterID uint, day businessday.Date) (*model.Count, error) {
	var c model.Count
	err := r.db.WithContext(ctx).
		Where("shelter_id = ? AND day = ?", shelterID, day).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *countRepo) Delete(ctx context.Context, shelterID uint, day businessday.Date) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("shelter_id = ? AND day = ?", shelterID, day).
		Delete(&model.Count{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *countRepo) ListByDay(ctx context.Context, day businessday.Date) ([]model.Count, error) {
	var list []model.Count
	err := r.db.WithContext(ctx).
		Where("day = ?", day).
		Order("shelter_id ASC").
		Find(&list).Error
	return list, err
}

func (r *countRepo) ListRange(ctx context.Context, from, to businessday.Date) ([]model.Count, error) {
	var list []model.Count
	err := r.db.WithContext(ctx).
		Where("day >= ? AND day <= ?", from, to).
		Order("day DESC, shelter_id ASC").
		Find(&list).Error
	return list, err
}
