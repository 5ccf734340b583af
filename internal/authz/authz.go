// Package authz 角色到能力的授权策略
//
// 每个路由声明所需能力（如 counts:edit），中间件用调用方的角色集合查询策略；
// 任一角色具备该能力即放行。
package authz

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"

	"shelter-caller/internal/model"
)

//go:embed model.conf
var modelText string

// Capability 形如 "对象:动作"
type Capability string

const (
	CountsView         Capability = "counts:view"
	CountsViewCapacity Capability = "counts:view_capacity"
	CountsViewPerson   Capability = "counts:view_person"
	CountsEdit         Capability = "counts:edit"
	SheltersManage     Capability = "shelters:manage"
	LogsView           Capability = "logs:view"
	PrefsManage        Capability = "prefs:manage"
	ExportCounts       Capability = "export:counts"
)

// 角色能力表；visitor 只读容量，public 只读空床数
var defaultPolicy = map[string][]Capability{
	model.RoleAdmin: {
		CountsView, CountsViewCapacity, CountsViewPerson, CountsEdit,
		SheltersManage, LogsView, PrefsManage, ExportCounts,
	},
	model.RoleVisitor: {CountsView, CountsViewCapacity},
	model.RolePublic:  {CountsView},
}

// Authorizer 基于 casbin 的授权器，并发安全
type Authorizer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewAuthorizer 加载内置策略
func NewAuthorizer() (*Authorizer, error) {
	m, err := casbinmodel.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("加载授权模型失败: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("创建授权器失败: %w", err)
	}

	var rules [][]string
	for role, caps := range defaultPolicy {
		for _, c := range caps {
			obj, act := c.split()
			rules = append(rules, []string{role, obj, act})
		}
	}
	if _, err := enforcer.AddPolicies(rules); err != nil {
		return nil, fmt.Errorf("写入授权策略失败: %w", err)
	}

	return &Authorizer{enforcer: enforcer}, nil
}

// Allowed 任一角色具备 c 即返回 true；角色为空时一律拒绝
func (a *Authorizer) Allowed(roles []string, c Capability) bool {
	obj, act := c.split()
	for _, role := range roles {
		ok, err := a.enforcer.Enforce(role, obj, act)
		if err == nil && ok {
			return true
		}
	}
	return false
}

// Capabilities 角色集合具备的全部能力（排序后返回，供登录响应使用）
func (a *Authorizer) Capabilities(roles []string) []string {
	seen := make(map[string]struct{})
	for _, role := range roles {
		perms, err := a.enforcer.GetImplicitPermissionsForUser(role)
		if err != nil {
			continue
		}
		for _, p := range perms {
			if len(p) < 3 {
				continue
			}
			seen[p[1]+":"+p[2]] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (c Capability) split() (string, string) {
	obj, act, _ := strings.Cut(string(c), ":")
	return obj, act
}
