package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shelter-caller/internal/dto"
	"shelter-caller/internal/model"
	"shelter-caller/internal/repository"
	"shelter-caller/pkg/businessday"
	pkgerrors "shelter-caller/pkg/errors"
)

// ── 来电/短信上报业务错误 ──

var (
	ErrShelterNotIdentified = fmt.Errorf("%w: 无法识别收容所", pkgerrors.ErrValidation)
	ErrClosed               = errors.New("当前不在开放时段")
)

const (
	auditInvalidShelter = "invalid shelter id"
	auditClosed         = "outside open hours"
)

var (
	// 数字之间允许空白（语音识别常把 "1213" 识别为 "1 2 1 3"）
	spokenIDPattern    = regexp.MustCompile(`\d(?:[\d\s]*\d)?`)
	spokenCountPattern = regexp.MustCompile(`\d+`)
)

// IntakeService 电话流程 webhook 业务
type IntakeService interface {
	// ValidateShelter 根据按键或语音识别出的登录码查找收容所
	ValidateShelter(ctx context.Context, req *dto.ValidateShelterRequest) (*dto.ValidateShelterResponse, error)
	// SaveCount 记录来电/短信上报的人数，开放时段外拒绝
	SaveCount(ctx context.Context, req *dto.SaveCountRequest) (*dto.SaveCountResponse, error)
	// LogFailedCall 记录流程侧失败的通话
	LogFailedCall(ctx context.Context, req *dto.FailedCallRequest) error
	// OpenHours 当前是否处于开放时段
	OpenHours(ctx context.Context) (*dto.OpenHoursResponse, error)
}

type intakeService struct {
	repo   *repository.Repository
	prefs  PreferenceService
	ledger CountLedger
	audit  AuditService
	clock  businessday.Clock
	logger *zap.Logger
}

// NewIntakeService 创建 IntakeService 实例
func NewIntakeService(
	repo *repository.Repository,
	prefs PreferenceService,
	ledger CountLedger,
	audit AuditService,
	clock businessday.Clock,
	logger *zap.Logger,
) IntakeService {
	return &intakeService{
		repo:   repo,
		prefs:  prefs,
		ledger: ledger,
		audit:  audit,
		clock:  clock,
		logger: logger,
	}
}

// ────── ValidateShelter ──────

func (s *intakeService) ValidateShelter(ctx context.Context, req *dto.ValidateShelterRequest) (*dto.ValidateShelterResponse, error) {
	input := req.ShelterIDRetry
	if input == "" {
		input = req.ShelterID
	}
	if input == "" {
		input = req.SpokenText
	}

	entry := AuditEntry{
		From:        req.Phone,
		ContactType: model.ParseContactType(req.ContactType),
		Input:       input,
		Action:      model.ActionValidateShelter,
	}

	loginID, ok := extractLoginID(input)
	entry.Parsed = loginID
	if !ok {
		entry.Err = auditInvalidShelter
		s.audit.Record(ctx, entry)
		return nil, ErrShelterNotIdentified
	}

	shelter, err := s.repo.Shelter.GetByLoginID(ctx, loginID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("按登录码查询收容所失败", zap.Error(err))
		}
		entry.Err = auditInvalidShelter
		s.audit.Record(ctx, entry)
		return nil, ErrShelterNotIdentified
	}

	entry.ShelterID = uintPtr(shelter.ID)
	s.audit.Record(ctx, entry)

	return &dto.ValidateShelterResponse{
		Success: true,
		ID:      shelter.ID,
		LoginID: shelter.LoginID,
		Name:    shelter.Name,
	}, nil
}

// extractLoginID 输入中恰好有一段数字（中间可夹空白）时取该段并去掉空白
func extractLoginID(input string) (string, bool) {
	matches := spokenIDPattern.FindAllString(input, -1)
	if len(matches) != 1 {
		return "", false
	}
	return strings.Join(strings.Fields(matches[0]), ""), true
}

// ────── SaveCount ──────

func (s *intakeService) SaveCount(ctx context.Context, req *dto.SaveCountRequest) (*dto.SaveCountResponse, error) {
	contactType := model.ParseContactType(req.ContactType)

	raw := strings.TrimSpace(req.NumberOfPeople)
	input := raw
	if raw == "" {
		input = req.SpokenText
		if matches := spokenCountPattern.FindAllString(req.SpokenText, -1); len(matches) == 1 {
			raw = matches[0]
		}
	}

	var shelterID uint
	if id, err := strconv.ParseUint(strings.TrimSpace(req.ShelterID), 10, 64); err == nil {
		shelterID = uint(id)
	}

	entry := AuditEntry{
		From:        req.Phone,
		ContactType: contactType,
		Input:       input,
		Parsed:      raw,
		Action:      model.ActionSaveCount,
	}

	// 偏好与时钟只取一次，闸门与业务日基于同一份设置
	settings, err := s.prefs.Settings(ctx)
	if err != nil {
		s.logger.Error("读取偏好失败，拒绝上报", zap.Error(err))
		entry.ShelterID = s.knownShelter(ctx, shelterID)
		entry.Err = err.Error()
		s.audit.Record(ctx, entry)
		return nil, err
	}
	now := s.clock.Now()

	// 开放时段闸门
	if !settings.IsOpen(now) {
		entry.Action = model.ActionValidateTime
		entry.ShelterID = s.knownShelter(ctx, shelterID)
		entry.Err = auditClosed
		s.audit.Record(ctx, entry)
		return nil, ErrClosed
	}

	result, err := s.ledger.Upsert(ctx, CountWrite{
		ShelterID:   shelterID,
		Day:         settings.Today(now),
		PersonCount: raw,
		Origin: Origin{
			From:        req.Phone,
			ContactType: contactType,
			Input:       input,
		},
	})
	if err != nil {
		return nil, err
	}

	return &dto.SaveCountResponse{
		Success: true,
		Count:   *result.PersonCount,
		Day:     result.Day,
	}, nil
}

// knownShelter 收容所存在时返回其 ID，审计行不引用不存在的收容所
func (s *intakeService) knownShelter(ctx context.Context, id uint) *uint {
	if id == 0 {
		return nil
	}
	if _, err := s.repo.Shelter.GetByID(ctx, id); err != nil {
		return nil
	}
	return uintPtr(id)
}

// ────── LogFailedCall ──────

func (s *intakeService) LogFailedCall(ctx context.Context, req *dto.FailedCallRequest) error {
	l := AuditEntry{
		From:        req.Phone,
		ContactType: model.ParseContactType(req.ContactType),
		Input:       req.ShelterID,
		Action:      model.ActionFailedCall,
		Err:         req.Error,
	}
	if l.Err == "" {
		l.Err = "unknown error"
	}
	if id, err := strconv.ParseUint(strings.TrimSpace(req.ShelterID), 10, 64); err == nil {
		l.ShelterID = uintPtr(uint(id))
	}

	// 流程需要知道是否写入成功，这里不走尽力而为的审计
	if err := s.repo.Log.Create(ctx, l.toLog(s.clock)); err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return fmt.Errorf("%w: 收容所 %s 不存在", pkgerrors.ErrConflict, req.ShelterID)
		}
		s.logger.Error("记录失败通话出错", zap.Error(err))
		return err
	}
	return nil
}

// ────── OpenHours ──────

func (s *intakeService) OpenHours(ctx context.Context) (*dto.OpenHoursResponse, error) {
	settings, err := s.prefs.Settings(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.OpenHoursResponse{Open: settings.IsOpen(s.clock.Now())}
	if settings.EnforceHours {
		resp.Hours = fmt.Sprintf("between %s and %s", settings.OpenTime.Display(), settings.CloseTime.Display())
		resp.SpokenHours = fmt.Sprintf("between %s and %s", settings.OpenTime.Spoken(), settings.CloseTime.Spoken())
	}
	return resp, nil
}
