package service

import (
	"context"

	"go.uber.org/zap"

	"shelter-caller/internal/model"
	"shelter-caller/internal/observer"
	"shelter-caller/internal/repository"
	"shelter-caller/pkg/businessday"
)

// AuditEntry 一条审计日志的内容；时间由服务层时钟补齐
type AuditEntry struct {
	ShelterID   *uint
	From        string
	ContactType model.ContactType
	Input       string
	Parsed      string
	Action      model.Action
	Err         string
}

// toLog 组装日志行；Err 为空表示成功
func (e AuditEntry) toLog(clock businessday.Clock) *model.Log {
	ct := e.ContactType
	if !ct.Valid() {
		ct = model.ContactUnknown
	}
	l := &model.Log{
		Time:        clock.Now().UTC(),
		ShelterID:   e.ShelterID,
		FromNumber:  e.From,
		ContactType: ct,
		InputText:   e.Input,
		ParsedText:  e.Parsed,
		Action:      e.Action,
	}
	if e.Err != "" {
		msg := e.Err
		l.Error = &msg
	}
	return l
}

// AuditService 审计日志写入
//
// Record 为尽力而为：写入失败只记日志与指标，不影响调用方的主流程。
type AuditService interface {
	Record(ctx context.Context, e AuditEntry)
}

type auditService struct {
	repo   *repository.Repository
	clock  businessday.Clock
	logger *zap.Logger
}

// NewAuditService 创建 AuditService 实例
func NewAuditService(repo *repository.Repository, clock businessday.Clock, logger *zap.Logger) AuditService {
	return &auditService{repo: repo, clock: clock, logger: logger}
}

func (s *auditService) Record(ctx context.Context, e AuditEntry) {
	// 请求已取消时仍需落审计行
	ctx = context.WithoutCancel(ctx)

	if err := s.repo.Log.Create(ctx, e.toLog(s.clock)); err != nil {
		observer.AuditWriteFailuresTotal.Inc()
		s.logger.Error("写入审计日志失败",
			zap.String("action", string(e.Action)),
			zap.Uintp("shelter_id", e.ShelterID),
			zap.Error(err),
		)
	}
}

func uintPtr(v uint) *uint { return &v }
