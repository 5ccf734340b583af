// Package telephony 外呼流程执行客户端（Studio Flow Executions API）
package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"shelter-caller/config"
	pkgerrors "shelter-caller/pkg/errors"
)

// Caller 发起一次外呼；服务层依赖该接口，测试替换为桩
type Caller interface {
	StartFlow(ctx context.Context, to string, shelterID uint) error
}

// Client 基于 resty 的外呼客户端
//
// 同一轮外呼内不重试：失败留待下一次调度重新选择。
type Client struct {
	httpClient *resty.Client
	flowID     string
	from       string
	logger     *zap.Logger
}

// NewClient 创建外呼客户端
func NewClient(cfg *config.TelephonyConfig, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.FlowBaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: httpClient,
		flowID:     cfg.FlowID,
		from:       cfg.FromNumber,
		logger:     logger,
	}
}

// flowParameters 透传给流程的关联参数，流程回调 webhook 时带回收容所 ID
type flowParameters struct {
	ID string `json:"id"`
}

// StartFlow POST {base}{flowID}/Executions，非 2xx 或网络错误返回 ErrTransport
func (c *Client) StartFlow(ctx context.Context, to string, shelterID uint) error {
	params, err := json.Marshal(flowParameters{ID: strconv.FormatUint(uint64(shelterID), 10)})
	if err != nil {
		return fmt.Errorf("序列化流程参数失败: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"To":         to,
			"From":       c.from,
			"Parameters": string(params),
		}).
		Post(c.flowID + "/Executions")
	if err != nil {
		return fmt.Errorf("%w: %v", pkgerrors.ErrTransport, err)
	}

	c.logger.Debug("外呼流程已请求",
		zap.Uint("shelter_id", shelterID),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("elapsed", time.Since(start)),
	)

	if !resp.IsSuccess() {
		return fmt.Errorf("%w: 状态码 %d: %s", pkgerrors.ErrTransport, resp.StatusCode(), truncate(resp.String(), 200))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// ── 未配置流程时使用 ──

// NoopCaller 只记日志不拨号（本地开发、未配置 flow_id）
type NoopCaller struct {
	Logger *zap.Logger
}

func (n NoopCaller) StartFlow(_ context.Context, to string, shelterID uint) error {
	n.Logger.Info("外呼未启用，跳过拨号", zap.Uint("shelter_id", shelterID), zap.String("to", to))
	return nil
}
