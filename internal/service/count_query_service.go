package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"shelter-caller/internal/authz"
	"shelter-caller/internal/dto"
	"shelter-caller/internal/model"
	"shelter-caller/internal/repository"
	"shelter-caller/pkg/businessday"
)

// HistoryPageSize 空床历史每页天数
const HistoryPageSize = 14

// CountQueryService 看板查询
type CountQueryService interface {
	// ByDay 单日人数；date 无法解析时取今天。返回字段按角色裁剪
	ByDay(ctx context.Context, date string, roles []string, publicOnly bool) (*dto.DailyCountsResponse, error)
	// History 第 page 页（0 为最近）14 天空床历史
	History(ctx context.Context, page int, publicOnly bool) (*dto.CountHistoryResponse, error)
}

type countQueryService struct {
	repo       *repository.Repository
	prefs      PreferenceService
	authorizer *authz.Authorizer
	clock      businessday.Clock
	logger     *zap.Logger
}

// NewCountQueryService 创建 CountQueryService 实例
func NewCountQueryService(
	repo *repository.Repository,
	prefs PreferenceService,
	authorizer *authz.Authorizer,
	clock businessday.Clock,
	logger *zap.Logger,
) CountQueryService {
	return &countQueryService{
		repo:       repo,
		prefs:      prefs,
		authorizer: authorizer,
		clock:      clock,
		logger:     logger,
	}
}

// today 看板以本地日历日为"今天"
func (s *countQueryService) today(ctx context.Context) (businessday.Date, error) {
	settings, err := s.prefs.Settings(ctx)
	if err != nil {
		return businessday.Date{}, err
	}
	return settings.CalendarToday(s.clock.Now()), nil
}

// ────── ByDay ──────

func (s *countQueryService) ByDay(ctx context.Context, date string, roles []string, publicOnly bool) (*dto.DailyCountsResponse, error) {
	today, err := s.today(ctx)
	if err != nil {
		return nil, err
	}
	day, err := businessday.ParseDate(date)
	if err != nil {
		day = today
	}

	shelters, err := s.repo.Shelter.ListVisible(ctx, publicOnly)
	if err != nil {
		s.logger.Error("查询可见收容所失败", zap.Error(err))
		return nil, err
	}
	counts, err := s.repo.Count.ListByDay(ctx, day)
	if err != nil {
		s.logger.Error("查询当日人数失败", zap.String("day", day.String()), zap.Error(err))
		return nil, err
	}
	byShelter := make(map[uint]*model.Count, len(counts))
	for i := range counts {
		byShelter[counts[i].ShelterID] = &counts[i]
	}

	showCapacity := s.authorizer.Allowed(roles, authz.CountsViewCapacity)
	showPerson := s.authorizer.Allowed(roles, authz.CountsViewPerson)

	items := make([]dto.ShelterCount, 0, len(shelters))
	for _, sh := range shelters {
		item := dto.ShelterCount{
			ID:          sh.ID,
			Name:        sh.Name,
			Description: sh.Description,
		}
		if showCapacity {
			capacity := sh.Capacity
			item.Capacity = &capacity
		}
		if c, ok := byShelter[sh.ID]; ok {
			item.BedCount = c.BedCount
			if showPerson {
				item.PersonCount = c.PersonCount
			}
			ts := c.Time.UTC().Format(time.RFC3339)
			item.Time = &ts
		}
		items = append(items, item)
	}

	resp := &dto.DailyCountsResponse{
		Date:      day.String(),
		Yesterday: day.AddDays(-1).Compact(),
		Counts:    items,
	}
	if day.Before(today) {
		tomorrow := day.AddDays(1).Compact()
		resp.Tomorrow = &tomorrow
	}
	return resp, nil
}

// ────── History ──────

func (s *countQueryService) History(ctx context.Context, page int, publicOnly bool) (*dto.CountHistoryResponse, error) {
	if page < 0 {
		page = 0
	}
	today, err := s.today(ctx)
	if err != nil {
		return nil, err
	}
	end := today.AddDays(-page * HistoryPageSize)
	start := end.AddDays(-(HistoryPageSize - 1))

	shelters, err := s.repo.Shelter.ListVisible(ctx, publicOnly)
	if err != nil {
		s.logger.Error("查询可见收容所失败", zap.Error(err))
		return nil, err
	}
	counts, err := s.repo.Count.ListRange(ctx, start, end)
	if err != nil {
		s.logger.Error("查询人数历史失败", zap.Error(err))
		return nil, err
	}

	dates := make([]string, 0, HistoryPageSize)
	index := make(map[businessday.Date]int, HistoryPageSize)
	for i := 0; i < HistoryPageSize; i++ {
		d := start.AddDays(i)
		index[d] = i
		dates = append(dates, d.String())
	}

	series := make([]dto.ShelterSeries, 0, len(shelters))
	pos := make(map[uint]int, len(shelters))
	for i, sh := range shelters {
		pos[sh.ID] = i
		series = append(series, dto.ShelterSeries{
			Label: sh.Name,
			Data:  make([]*int, HistoryPageSize),
		})
	}
	for _, c := range counts {
		si, ok := pos[c.ShelterID]
		if !ok {
			continue
		}
		di, ok := index[c.Day]
		if !ok {
			continue
		}
		series[si].Data[di] = c.BedCount
	}

	return &dto.CountHistoryResponse{Dates: dates, Shelters: series}, nil
}
