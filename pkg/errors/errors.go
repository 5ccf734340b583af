// Package errors 跨层共享的错误分类
//
// 各层以 fmt.Errorf("...: %w", ErrXxx) 包装，handler 用 errors.Is 映射到 HTTP 状态码。
package errors

import "errors"

var (
	// ErrValidation 输入缺失或格式错误（缺少收容所 ID、日期无法解析、人数非数字等）
	ErrValidation = errors.New("输入校验失败")
	// ErrConflict 写入时违反唯一/外键约束（如写入过程中收容所被删除），事务已回滚
	ErrConflict = errors.New("数据冲突")
	// ErrUnauthorized 调用方角色不具备所需能力；不暴露目标资源是否存在
	ErrUnauthorized = errors.New("无权执行该操作")
	// ErrTransport 外呼请求失败；单个收容所失败不中断本轮外呼
	ErrTransport = errors.New("外呼请求失败")
	// ErrUnknownPreference 偏好键不在固定集合内
	ErrUnknownPreference = errors.New("未知的偏好设置项")
	// ErrConfiguration 偏好或配置无法解析（时区、时刻格式）
	ErrConfiguration = errors.New("配置无效")
)

// Is 转发标准库 errors.Is，调用方无需同时导入两个 errors 包
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// IsClientError 属于调用方输入问题（4xx）
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrUnknownPreference)
}
