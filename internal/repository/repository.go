package repository

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db     *gorm.DB
	logger *zap.Logger

	Shelter    ShelterRepository
	Count      CountRepository
	Log        LogRepository
	Preference PreferenceRepository
	User       UserRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB, logger *zap.Logger) *Repository {
	return &Repository{
		db:         db,
		logger:     logger,
		Shelter:    NewShelterRepo(db),
		Count:      NewCountRepo(db),
		Log:        NewLogRepo(db),
		Preference: NewPreferenceRepo(db),
		User:       NewUserRepo(db),
	}
}

// BeginTx 开启事务，调用方负责 Commit / Rollback
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到 tx 的 Repository 副本
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx, r.logger)
}

// Transaction 在单个事务内执行 fn，fn 返回错误即整体回滚
//
// 序列化失败、死锁、连接抖动等瞬时错误会以指数退避重跑整个事务；
// 唯一/外键冲突与 fn 自身返回的业务错误不重试。
// db 为 nil（单元测试中的 mock 聚合）时直接执行 fn。
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}

	policy := backoff.WithContext(newRetryPolicy(), ctx)
	notify := func(err error, d time.Duration) {
		if r.logger != nil {
			r.logger.Warn("事务遇到瞬时错误，准备重试", zap.Error(err), zap.Duration("after", d))
		}
	}

	return backoff.RetryNotify(func() error {
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(r.WithTx(tx))
		})
		if err == nil {
			return nil
		}
		if isTransientError(err) {
			return err
		}
		return backoff.Permanent(err)
	}, policy, notify)
}

func newRetryPolicy() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 3 * time.Second
	return b
}
