package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"shelter-caller/config"
	"shelter-caller/internal/dto"
	"shelter-caller/internal/model"
	"shelter-caller/internal/observer"
	"shelter-caller/internal/repository"
	"shelter-caller/internal/telephony"
	"shelter-caller/pkg/businessday"
)

// DispatchService 外呼调度
type DispatchService interface {
	// Uncontacted 指定业务日尚无人数记录、且可外呼的收容所
	Uncontacted(ctx context.Context, day businessday.Date) ([]model.Shelter, error)
	// StartCalls 对当前业务日未联系的收容所各发起一次外呼
	StartCalls(ctx context.Context) (*dto.DispatchResult, error)
}

type dispatchService struct {
	cfg    *config.TelephonyConfig
	repo   *repository.Repository
	prefs  PreferenceService
	audit  AuditService
	caller telephony.Caller
	clock  businessday.Clock
	logger *zap.Logger
}

// NewDispatchService 创建 DispatchService 实例
func NewDispatchService(
	cfg *config.TelephonyConfig,
	repo *repository.Repository,
	prefs PreferenceService,
	audit AuditService,
	caller telephony.Caller,
	clock businessday.Clock,
	logger *zap.Logger,
) DispatchService {
	return &dispatchService{
		cfg:    cfg,
		repo:   repo,
		prefs:  prefs,
		audit:  audit,
		caller: caller,
		clock:  clock,
		logger: logger,
	}
}

func (s *dispatchService) Uncontacted(ctx context.Context, day businessday.Date) ([]model.Shelter, error) {
	shelters, err := s.repo.Shelter.ListUncontacted(ctx, day)
	if err != nil {
		s.logger.Error("查询未联系收容所失败", zap.String("day", day.String()), zap.Error(err))
		return nil, err
	}
	return shelters, nil
}

// StartCalls 一轮外呼
//
// 单个收容所失败不中断本轮，也不在本轮内重试。
// 函数在所有外呼结束（或超时）后才返回。
func (s *dispatchService) StartCalls(ctx context.Context) (*dto.DispatchResult, error) {
	start := time.Now()
	defer func() {
		observer.DispatchPassDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	settings, err := s.prefs.Settings(ctx)
	if err != nil {
		return nil, err
	}
	day := settings.Today(s.clock.Now())

	shelters, err := s.Uncontacted(ctx, day)
	if err != nil {
		return nil, err
	}
	observer.UncontactedShelters.Set(float64(len(shelters)))

	result := &dto.DispatchResult{
		BusinessDay: day.String(),
		Selected:    len(shelters),
	}
	if len(shelters) == 0 {
		result.CaughtUp = true
		s.logger.Info("所有收容所均已上报", zap.String("day", day.String()))
		return result, nil
	}

	pool, err := ants.NewPool(s.cfg.Concurrency)
	if err != nil {
		s.logger.Error("创建外呼协程池失败", zap.Error(err))
		return nil, err
	}
	defer pool.Release()

	var (
		wg             sync.WaitGroup
		dialed, failed atomic.Int32
	)
	for i := range shelters {
		shelter := shelters[i]
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if s.call(ctx, &shelter) {
				dialed.Add(1)
			} else {
				failed.Add(1)
			}
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			failed.Add(1)
			s.recordCall(ctx, &shelter, err)
		}
	}
	wg.Wait()

	result.Dialed = int(dialed.Load())
	result.Failed = int(failed.Load())
	s.logger.Info("本轮外呼完成",
		zap.String("day", day.String()),
		zap.Int("selected", result.Selected),
		zap.Int("dialed", result.Dialed),
		zap.Int("failed", result.Failed),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// call 发起单次外呼并记审计，返回是否成功
func (s *dispatchService) call(ctx context.Context, shelter *model.Shelter) bool {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	err := s.caller.StartFlow(callCtx, *shelter.Phone, shelter.ID)
	s.recordCall(ctx, shelter, err)
	return err == nil
}

func (s *dispatchService) recordCall(ctx context.Context, shelter *model.Shelter, err error) {
	entry := AuditEntry{
		ShelterID:   uintPtr(shelter.ID),
		From:        s.cfg.FromNumber,
		ContactType: model.ContactOutgoingCall,
		Input:       *shelter.Phone,
		Action:      model.ActionInitializeCall,
	}
	if err != nil {
		entry.Err = err.Error()
		observer.DispatchCallsTotal.WithLabelValues("failed").Inc()
		s.logger.Warn("外呼失败", zap.Uint("shelter_id", shelter.ID), zap.Error(err))
	} else {
		observer.DispatchCallsTotal.WithLabelValues("dialed").Inc()
	}
	s.audit.Record(ctx, entry)
}
