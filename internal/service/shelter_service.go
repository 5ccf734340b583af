package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shelter-caller/internal/dto"
	"shelter-caller/internal/model"
	"shelter-caller/internal/repository"
	pkgerrors "shelter-caller/pkg/errors"
)

// ── 收容所模块业务错误 ──

var (
	ErrShelterNotFound  = errors.New("收容所不存在")
	ErrShelterDuplicate = fmt.Errorf("%w: Values must be unique", pkgerrors.ErrValidation)
)

// ShelterService 收容所管理
type ShelterService interface {
	List(ctx context.Context) ([]dto.ShelterResponse, error)
	// Save ID 为 0 时创建，否则整行更新
	Save(ctx context.Context, req *dto.ShelterRequest) (*dto.ShelterResponse, error)
	// Delete 级联删除该收容所的人数与审计日志
	Delete(ctx context.Context, id uint) error
}

type shelterService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewShelterService 创建 ShelterService 实例
func NewShelterService(repo *repository.Repository, logger *zap.Logger) ShelterService {
	return &shelterService{repo: repo, logger: logger}
}

func (s *shelterService) List(ctx context.Context) ([]dto.ShelterResponse, error) {
	shelters, err := s.repo.Shelter.List(ctx)
	if err != nil {
		s.logger.Error("查询收容所列表失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.ShelterResponse, 0, len(shelters))
	for i := range shelters {
		out = append(out, toShelterResponse(&shelters[i]))
	}
	return out, nil
}

func (s *shelterService) Save(ctx context.Context, req *dto.ShelterRequest) (*dto.ShelterResponse, error) {
	var shelter *model.Shelter
	if req.ID == 0 {
		shelter = &model.Shelter{}
	} else {
		existing, err := s.repo.Shelter.GetByID(ctx, req.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrShelterNotFound
			}
			s.logger.Error("查询收容所失败", zap.Uint("id", req.ID), zap.Error(err))
			return nil, err
		}
		shelter = existing
	}

	shelter.Name = strings.TrimSpace(req.Name)
	shelter.LoginID = strings.TrimSpace(req.LoginID)
	shelter.Phone = normalizePhone(req.Phone)
	shelter.Description = req.Description
	shelter.Capacity = req.Capacity
	shelter.Active = req.Active
	shelter.Visible = req.Visible
	shelter.Public = req.Public
	shelter.Latitude = req.Latitude
	shelter.Longitude = req.Longitude

	var err error
	if shelter.ID == 0 {
		err = s.repo.Shelter.Create(ctx, shelter)
	} else {
		err = s.repo.Shelter.Update(ctx, shelter)
	}
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrShelterDuplicate
		}
		s.logger.Error("保存收容所失败", zap.String("name", shelter.Name), zap.Error(err))
		return nil, err
	}

	s.logger.Info("收容所已保存", zap.Uint("id", shelter.ID), zap.String("name", shelter.Name))
	resp := toShelterResponse(shelter)
	return &resp, nil
}

func (s *shelterService) Delete(ctx context.Context, id uint) error {
	deleted, err := s.repo.Shelter.Delete(ctx, id)
	if err != nil {
		s.logger.Error("删除收容所失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	if !deleted {
		return ErrShelterNotFound
	}
	s.logger.Info("收容所已删除", zap.Uint("id", id))
	return nil
}

// normalizePhone 空号码存为 NULL，避免多个空串触发唯一约束
func normalizePhone(phone string) *string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil
	}
	return &phone
}

func toShelterResponse(s *model.Shelter) dto.ShelterResponse {
	resp := dto.ShelterResponse{
		ID:          s.ID,
		Name:        s.Name,
		LoginID:     s.LoginID,
		Description: s.Description,
		Capacity:    s.Capacity,
		Active:      s.Active,
		Visible:     s.Visible,
		Public:      s.Public,
		Latitude:    s.Latitude,
		Longitude:   s.Longitude,
	}
	if s.Phone != nil {
		resp.Phone = *s.Phone
	}
	return resp
}
