package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shelter-caller/internal/dto"
	"shelter-caller/internal/model"
	"shelter-caller/internal/observer"
	"shelter-caller/internal/repository"
	"shelter-caller/pkg/businessday"
	pkgerrors "shelter-caller/pkg/errors"
)

// ── 人数台账业务错误 ──

var (
	ErrMissingShelter = fmt.Errorf("%w: 缺少收容所 ID", pkgerrors.ErrValidation)
	ErrBadCount       = fmt.Errorf("%w: 人数必须为非负整数", pkgerrors.ErrValidation)
	ErrUnknownShelter = fmt.Errorf("%w: 收容所不存在", pkgerrors.ErrValidation)
	ErrShelterGone    = fmt.Errorf("%w: 写入时收容所已被删除", pkgerrors.ErrConflict)
)

// 审计日志中的错误文本，与电话流程侧约定一致
const (
	auditBadInput       = "bad input"
	auditMissingShelter = "missing shelter id"
	auditUnknownShelter = "unknown shelter"
	auditShelterGone    = "shelter removed during write"
	auditDatabaseError  = "database error"
)

// Origin 一次写入的来源
type Origin struct {
	From        string
	ContactType model.ContactType
	Input       string
}

// CountWrite 一次人数上报；Day 为零值时按当前时间解析业务日
type CountWrite struct {
	ShelterID   uint
	Day         businessday.Date
	PersonCount string
	Origin      Origin
}

// CountLedger 人数台账
//
// 每次写入尝试恰好产生一条审计日志：成功时与人数行在同一事务内写入，
// 失败时事务回滚后补记一条带错误信息的日志。
type CountLedger interface {
	Upsert(ctx context.Context, w CountWrite) (*dto.CountResult, error)
	Delete(ctx context.Context, shelterID uint, day businessday.Date, origin Origin) error
	// Today 当前业务日
	Today(ctx context.Context) (businessday.Date, error)
}

type countLedger struct {
	repo   *repository.Repository
	prefs  PreferenceService
	audit  AuditService
	clock  businessday.Clock
	logger *zap.Logger
}

// NewCountLedger 创建 CountLedger 实例
func NewCountLedger(
	repo *repository.Repository,
	prefs PreferenceService,
	audit AuditService,
	clock businessday.Clock,
	logger *zap.Logger,
) CountLedger {
	return &countLedger{repo: repo, prefs: prefs, audit: audit, clock: clock, logger: logger}
}

func (l *countLedger) Today(ctx context.Context) (businessday.Date, error) {
	settings, err := l.prefs.Settings(ctx)
	if err != nil {
		return businessday.Date{}, err
	}
	return settings.Today(l.clock.Now()), nil
}

// ────── Upsert ──────

func (l *countLedger) Upsert(ctx context.Context, w CountWrite) (*dto.CountResult, error) {
	entry := AuditEntry{
		From:        w.Origin.From,
		ContactType: w.Origin.ContactType,
		Input:       w.Origin.Input,
		Parsed:      w.PersonCount,
		Action:      model.ActionSaveCount,
	}

	// 1. 入参校验
	if w.ShelterID == 0 {
		return nil, l.reject(ctx, entry, auditMissingShelter, ErrMissingShelter)
	}
	entry.ShelterID = uintPtr(w.ShelterID)

	person, ok := parseCount(w.PersonCount)
	if !ok {
		return nil, l.reject(ctx, entry, auditBadInput, ErrBadCount)
	}
	entry.Parsed = strconv.Itoa(person)

	// 2. 业务日
	day := w.Day
	if day.IsZero() {
		today, err := l.Today(ctx)
		if err != nil {
			l.logger.Error("解析业务日失败", zap.Error(err))
			return nil, l.reject(ctx, entry, err.Error(), err)
		}
		day = today
	}

	// 3. 事务内：读取容量 → 计算空床 → upsert → 审计
	var result *dto.CountResult
	err := l.repo.Transaction(ctx, func(tx *repository.Repository) error {
		shelter, err := tx.Shelter.GetByID(ctx, w.ShelterID)
		if err != nil {
			return err
		}

		bed := shelter.Capacity - person
		count := &model.Count{
			ShelterID:   w.ShelterID,
			Day:         day,
			PersonCount: &person,
			BedCount:    &bed,
			Time:        l.clock.Now().UTC(),
		}
		if err := tx.Count.Upsert(ctx, count); err != nil {
			return err
		}
		if err := tx.Log.Create(ctx, entry.toLog(l.clock)); err != nil {
			return err
		}

		result = &dto.CountResult{
			ShelterID:   w.ShelterID,
			Day:         day.String(),
			PersonCount: &person,
			BedCount:    &bed,
		}
		return nil
	})
	if err != nil {
		return nil, l.writeFailed(ctx, entry, err)
	}

	observer.CountWritesTotal.WithLabelValues(string(entry.ContactType), "saved").Inc()
	l.logger.Info("人数已记录",
		zap.Uint("shelter_id", w.ShelterID),
		zap.String("day", day.String()),
		zap.Int("person_count", person),
		zap.Int("bed_count", *result.BedCount),
		zap.String("contact_type", string(entry.ContactType)),
	)
	return result, nil
}

// ────── Delete ──────

func (l *countLedger) Delete(ctx context.Context, shelterID uint, day businessday.Date, origin Origin) error {
	entry := AuditEntry{
		From:        origin.From,
		ContactType: origin.ContactType,
		Input:       "-",
		Action:      model.ActionDeleteCount,
	}
	if shelterID == 0 {
		return l.reject(ctx, entry, auditMissingShelter, ErrMissingShelter)
	}
	entry.ShelterID = uintPtr(shelterID)
	if day.IsZero() {
		return l.reject(ctx, entry, auditBadInput, fmt.Errorf("%w: 缺少日期", pkgerrors.ErrValidation))
	}
	entry.Parsed = day.String()

	err := l.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.Shelter.GetByID(ctx, shelterID); err != nil {
			return err
		}
		// 不存在的记录视为已删除
		if _, err := tx.Count.Delete(ctx, shelterID, day); err != nil {
			return err
		}
		return tx.Log.Create(ctx, entry.toLog(l.clock))
	})
	if err != nil {
		return l.writeFailed(ctx, entry, err)
	}

	observer.CountWritesTotal.WithLabelValues(string(entry.ContactType), "deleted").Inc()
	l.logger.Info("人数记录已删除", zap.Uint("shelter_id", shelterID), zap.String("day", day.String()))
	return nil
}

// ────── 失败处理 ──────

// reject 校验失败：记审计后返回 err
func (l *countLedger) reject(ctx context.Context, entry AuditEntry, reason string, err error) error {
	entry.Err = reason
	l.audit.Record(ctx, entry)
	observer.CountWritesTotal.WithLabelValues(string(entry.ContactType), "rejected").Inc()
	return err
}

// writeFailed 事务已回滚：按错误类型补记审计并归一化错误
//
// 收容所不存在或被并发删除时，审计行不再引用该 ID，否则同样违反外键。
func (l *countLedger) writeFailed(ctx context.Context, entry AuditEntry, err error) error {
	shelterRef := ""
	if entry.ShelterID != nil {
		shelterRef = fmt.Sprintf("shelter %d: ", *entry.ShelterID)
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		entry.ShelterID = nil
		entry.Err = shelterRef + auditUnknownShelter
		l.audit.Record(ctx, entry)
		observer.CountWritesTotal.WithLabelValues(string(entry.ContactType), "rejected").Inc()
		return ErrUnknownShelter

	case errors.Is(err, repository.ErrForeignKey):
		entry.ShelterID = nil
		entry.Err = shelterRef + auditShelterGone
		l.audit.Record(ctx, entry)
		observer.CountWritesTotal.WithLabelValues(string(entry.ContactType), "conflict").Inc()
		l.logger.Warn("人数写入冲突", zap.Error(err))
		return ErrShelterGone

	default:
		entry.Err = auditDatabaseError
		l.audit.Record(ctx, entry)
		observer.CountWritesTotal.WithLabelValues(string(entry.ContactType), "error").Inc()
		l.logger.Error("人数写入失败", zap.Error(err))
		return err
	}
}

// parseCount 仅接受十进制非负整数（允许首尾空白）
func parseCount(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
