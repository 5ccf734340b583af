package service

import (
	"go.uber.org/zap"

	"shelter-caller/config"
	"shelter-caller/internal/authz"
	"shelter-caller/internal/repository"
	"shelter-caller/internal/telephony"
	"shelter-caller/pkg/businessday"
	"shelter-caller/pkg/jwt"
	"shelter-caller/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Audit      AuditService
	Preference PreferenceService
	Ledger     CountLedger
	Dispatch   DispatchService
	Intake     IntakeService
	Counts     CountQueryService
	Shelter    ShelterService
	Log        LogService
	Auth       AuthService
	Export     ExportService
}

// Deps 构造 Service 聚合所需的外部依赖
//
// Redis 可为 nil（未配置时登出不加入黑名单）；Clock 为 nil 时使用系统时钟。
type Deps struct {
	Config     *config.Config
	Repo       *repository.Repository
	JWT        *jwt.Manager
	Redis      *redis.Client
	Authorizer *authz.Authorizer
	Caller     telephony.Caller
	Clock      businessday.Clock
	Logger     *zap.Logger
}

// NewService 创建 Service 聚合
func NewService(d Deps) *Service {
	clock := d.Clock
	if clock == nil {
		clock = businessday.SystemClock{}
	}

	var blacklist TokenBlacklist
	if d.Redis != nil {
		blacklist = d.Redis
	}

	audit := NewAuditService(d.Repo, clock, d.Logger)
	prefs := NewPreferenceService(&d.Config.Prefs, d.Repo, d.Logger)
	ledger := NewCountLedger(d.Repo, prefs, audit, clock, d.Logger)

	return &Service{
		Audit:      audit,
		Preference: prefs,
		Ledger:     ledger,
		Dispatch:   NewDispatchService(&d.Config.Telephony, d.Repo, prefs, audit, d.Caller, clock, d.Logger),
		Intake:     NewIntakeService(d.Repo, prefs, ledger, audit, clock, d.Logger),
		Counts:     NewCountQueryService(d.Repo, prefs, d.Authorizer, clock, d.Logger),
		Shelter:    NewShelterService(d.Repo, d.Logger),
		Log:        NewLogService(d.Repo, d.Logger),
		Auth:       NewAuthService(d.Repo, d.JWT, blacklist, d.Authorizer, d.Logger),
		Export:     NewExportService(d.Repo, d.Logger),
	}
}
