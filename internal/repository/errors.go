package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrDuplicate 违反唯一约束（名称、登录码、号码重复）
	ErrDuplicate = errors.New("唯一约束冲突")
	// ErrForeignKey 引用的收容所已不存在
	ErrForeignKey = errors.New("外键约束冲突")
)

// PostgreSQL 错误码
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// classify 将驱动层约束错误归一为 ErrDuplicate / ErrForeignKey，保留原始错误信息
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case isDuplicate(err):
		return errors.Join(ErrDuplicate, err)
	case isForeignKey(err):
		return errors.Join(ErrForeignKey, err)
	default:
		return err
	}
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKey(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// isTransientError 判断错误是否值得重跑事务
func isTransientError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, ErrForeignKey) ||
		errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, gorm.ErrInvalidTransaction) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure ||
			pgErr.Code == pgDeadlockDetected ||
			strings.HasPrefix(pgErr.Code, "08") ||
			strings.HasPrefix(pgErr.Code, "53")
	}

	msg := strings.ToLower(err.Error())
	for _, indicator := range []string{
		"database is locked",
		"connection refused",
		"connection reset",
		"broken pipe",
		"i/o timeout",
	} {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}
