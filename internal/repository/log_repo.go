package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shelter-caller/internal/model"
)

// LogRepository 审计日志数据访问接口（只追加）
type LogRepository interface {
	Create(ctx context.Context, l *model.Log) error
	// List shelterID 为 0 时不过滤，按时间倒序分页
	List(ctx context.Context, shelterID uint, offset, limit int) ([]model.Log, int64, error)
}

type logRepo struct {
	db *gorm.DB
}

// NewLogRepo 创建 LogRepository 实例
func NewLogRepo(db *gorm.DB) LogRepository {
	return &logRepo{db: db}
}

func (r *logRepo) Create(ctx context.Context, l *model.Log) error {
	return classify(r.db.WithContext(ctx).Omit(clause.Associations).Create(l).Error)
}

func (r *logRepo) List(ctx context.Context, shelterID uint, offset, limit int) ([]model.Log, int64, error) {
	var logs []model.Log
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Log{})
	if shelterID != 0 {
		db = db.Where("shelter_id = ?", shelterID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("logs.time DESC, logs.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&logs).Error
	return logs, total, err
}
