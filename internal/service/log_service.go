package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shelter-caller/internal/dto"
	"shelter-caller/internal/repository"
)

// LogPageSize 审计日志每页条数
const LogPageSize = 15

// LogService 审计日志查询
type LogService interface {
	// ByShelter 某收容所的审计日志，最新在前
	ByShelter(ctx context.Context, shelterID uint, page int) (*dto.ShelterLogsResponse, error)
}

type logService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewLogService 创建 LogService 实例
func NewLogService(repo *repository.Repository, logger *zap.Logger) LogService {
	return &logService{repo: repo, logger: logger}
}

func (s *logService) ByShelter(ctx context.Context, shelterID uint, page int) (*dto.ShelterLogsResponse, error) {
	if page < 0 {
		page = 0
	}

	shelter, err := s.repo.Shelter.GetByID(ctx, shelterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShelterNotFound
		}
		s.logger.Error("查询收容所失败", zap.Uint("id", shelterID), zap.Error(err))
		return nil, err
	}

	logs, total, err := s.repo.Log.List(ctx, shelterID, page*LogPageSize, LogPageSize)
	if err != nil {
		s.logger.Error("查询审计日志失败", zap.Uint("shelter_id", shelterID), zap.Error(err))
		return nil, err
	}

	entries := make([]dto.LogEntry, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, dto.LogEntry{
			ID:          l.ID,
			Time:        l.Time.UTC().Format(time.RFC3339),
			ShelterID:   l.ShelterID,
			FromNumber:  l.FromNumber,
			ContactType: string(l.ContactType),
			InputText:   l.InputText,
			ParsedText:  l.ParsedText,
			Action:      string(l.Action),
			Error:       l.Error,
		})
	}

	return &dto.ShelterLogsResponse{
		Shelter:    shelter.Name,
		Logs:       entries,
		TotalCalls: total,
		PageSize:   LogPageSize,
		Page:       page,
	}, nil
}
