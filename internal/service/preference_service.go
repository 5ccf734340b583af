package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shelter-caller/config"
	"shelter-caller/internal/dto"
	"shelter-caller/internal/model"
	"shelter-caller/internal/repository"
	"shelter-caller/pkg/businessday"
	pkgerrors "shelter-caller/pkg/errors"
)

// 偏好键
const (
	PrefTimezone     = "timezone"
	PrefEnforceHours = "enforce_hours"
	PrefOpenTime     = "open_time"
	PrefCloseTime    = "close_time"
	PrefStartDay     = "start_day"
	prefAppID        = "app_id"
)

// PreferenceService 偏好设置业务接口
//
// 每次读取都直接查库，修改后下一次业务日计算立即生效。
type PreferenceService interface {
	// Get 读取偏好行，不存在时以配置默认值创建
	Get(ctx context.Context) (*dto.PreferenceResponse, error)
	// Update 强类型部分更新
	Update(ctx context.Context, req *dto.UpdatePreferenceRequest) (*dto.PreferenceResponse, error)
	// Set 按键设置单个偏好
	Set(ctx context.Context, key string, value interface{}) error
	// UpdateMap 按键批量设置，任一键未知则整体拒绝
	UpdateMap(ctx context.Context, values map[string]interface{}) (*dto.PreferenceResponse, error)
	// Settings 解析为业务日计算所用的强类型配置
	Settings(ctx context.Context) (businessday.Settings, error)
}

type preferenceService struct {
	defaults *config.PrefsConfig
	repo     *repository.Repository
	logger   *zap.Logger
}

// NewPreferenceService 创建 PreferenceService 实例
func NewPreferenceService(defaults *config.PrefsConfig, repo *repository.Repository, logger *zap.Logger) PreferenceService {
	return &preferenceService{defaults: defaults, repo: repo, logger: logger}
}

// ────── 读取 ──────

func (s *preferenceService) load(ctx context.Context) (*model.Preference, error) {
	pref, err := s.repo.Preference.Get(ctx, s.defaults.AppID)
	if err == nil {
		return pref, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询偏好设置失败", zap.Error(err))
		return nil, err
	}

	// 首次访问：并发创建由 ON CONFLICT DO NOTHING 兜底，之后重新读取
	if err := s.repo.Preference.CreateIfAbsent(ctx, &model.Preference{
		AppID:        s.defaults.AppID,
		Timezone:     s.defaults.Timezone,
		EnforceHours: s.defaults.EnforceHours,
		OpenTime:     s.defaults.OpenTime,
		CloseTime:    s.defaults.CloseTime,
		StartDay:     s.defaults.StartDay,
	}); err != nil {
		s.logger.Error("创建默认偏好失败", zap.Error(err))
		return nil, err
	}
	s.logger.Info("已创建默认偏好设置", zap.String("app_id", s.defaults.AppID))

	return s.repo.Preference.Get(ctx, s.defaults.AppID)
}

func (s *preferenceService) Get(ctx context.Context) (*dto.PreferenceResponse, error) {
	pref, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return toPreferenceResponse(pref), nil
}

func (s *preferenceService) Settings(ctx context.Context) (businessday.Settings, error) {
	pref, err := s.load(ctx)
	if err != nil {
		return businessday.Settings{}, err
	}
	return parseSettings(pref)
}

// parseSettings 偏好行中的文本在写入时已校验；此处失败说明数据被手工改坏
func parseSettings(p *model.Preference) (businessday.Settings, error) {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return businessday.Settings{}, fmt.Errorf("%w: timezone %q", pkgerrors.ErrConfiguration, p.Timezone)
	}
	open, err := businessday.ParseTimeOfDay(p.OpenTime)
	if err != nil {
		return businessday.Settings{}, fmt.Errorf("%w: open_time: %v", pkgerrors.ErrConfiguration, err)
	}
	closeAt, err := businessday.ParseTimeOfDay(p.CloseTime)
	if err != nil {
		return businessday.Settings{}, fmt.Errorf("%w: close_time: %v", pkgerrors.ErrConfiguration, err)
	}
	cutoff, err := businessday.ParseTimeOfDay(p.StartDay)
	if err != nil {
		return businessday.Settings{}, fmt.Errorf("%w: start_day: %v", pkgerrors.ErrConfiguration, err)
	}
	return businessday.Settings{
		Location:     loc,
		EnforceHours: p.EnforceHours,
		OpenTime:     open,
		CloseTime:    closeAt,
		DayCutoff:    cutoff,
	}, nil
}

// ────── 修改 ──────

func (s *preferenceService) Update(ctx context.Context, req *dto.UpdatePreferenceRequest) (*dto.PreferenceResponse, error) {
	values := make(map[string]interface{})
	if req.Timezone != nil {
		values[PrefTimezone] = *req.Timezone
	}
	if req.EnforceHours != nil {
		values[PrefEnforceHours] = *req.EnforceHours
	}
	if req.OpenTime != nil {
		values[PrefOpenTime] = *req.OpenTime
	}
	if req.CloseTime != nil {
		values[PrefCloseTime] = *req.CloseTime
	}
	if req.StartDay != nil {
		values[PrefStartDay] = *req.StartDay
	}
	return s.UpdateMap(ctx, values)
}

func (s *preferenceService) Set(ctx context.Context, key string, value interface{}) error {
	_, err := s.UpdateMap(ctx, map[string]interface{}{key: value})
	return err
}

func (s *preferenceService) UpdateMap(ctx context.Context, values map[string]interface{}) (*dto.PreferenceResponse, error) {
	pref, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	for key, value := range values {
		if err := applyPreference(pref, key, value); err != nil {
			return nil, err
		}
	}

	if len(values) > 0 {
		if err := s.repo.Preference.Update(ctx, pref); err != nil {
			s.logger.Error("更新偏好设置失败", zap.Error(err))
			return nil, err
		}
		s.logger.Info("偏好设置已更新", zap.Any("values", values))
	}
	return toPreferenceResponse(pref), nil
}

// applyPreference 校验并写入单个键；时刻统一规范化为 "HH:MM"
func applyPreference(p *model.Preference, key string, value interface{}) error {
	switch key {
	case PrefTimezone:
		tz, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: timezone 必须为字符串", pkgerrors.ErrValidation)
		}
		if _, err := time.LoadLocation(tz); err != nil || tz == "" {
			return fmt.Errorf("%w: 无法识别的时区 %q", pkgerrors.ErrValidation, tz)
		}
		p.Timezone = tz
	case PrefEnforceHours:
		b, err := toBool(value)
		if err != nil {
			return err
		}
		p.EnforceHours = b
	case PrefOpenTime, PrefCloseTime, PrefStartDay:
		raw, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s 必须为字符串", pkgerrors.ErrValidation, key)
		}
		tod, err := businessday.ParseTimeOfDay(raw)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", pkgerrors.ErrValidation, key, err)
		}
		switch key {
		case PrefOpenTime:
			p.OpenTime = tod.String()
		case PrefCloseTime:
			p.CloseTime = tod.String()
		default:
			p.StartDay = tod.String()
		}
	case prefAppID:
		// 看板回传整行偏好时会带上 app_id，只接受原值
		if id, ok := value.(string); !ok || id != p.AppID {
			return fmt.Errorf("%w: %s", pkgerrors.ErrUnknownPreference, key)
		}
	default:
		return fmt.Errorf("%w: %s", pkgerrors.ErrUnknownPreference, key)
	}
	return nil
}

func toBool(v interface{}) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, fmt.Errorf("%w: enforce_hours 必须为布尔值", pkgerrors.ErrValidation)
		}
		return parsed, nil
	default:
		return false, fmt.Errorf("%w: enforce_hours 必须为布尔值", pkgerrors.ErrValidation)
	}
}

func toPreferenceResponse(p *model.Preference) *dto.PreferenceResponse {
	return &dto.PreferenceResponse{
		AppID:        p.AppID,
		Timezone:     p.Timezone,
		EnforceHours: p.EnforceHours,
		OpenTime:     p.OpenTime,
		CloseTime:    p.CloseTime,
		StartDay:     p.StartDay,
		UpdatedAt:    p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
