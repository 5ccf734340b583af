package authz

import (
	"testing"

	"shelter-caller/internal/model"
)

func newTestAuthorizer(t *testing.T) *Authorizer {
	t.Helper()
	a, err := NewAuthorizer()
	if err != nil {
		t.Fatalf("NewAuthorizer 失败: %v", err)
	}
	return a
}

func TestAllowed_RoleTiers(t *testing.T) {
	a := newTestAuthorizer(t)

	tests := []struct {
		name  string
		roles []string
		cap   Capability
		want  bool
	}{
		{"admin 可编辑人数", []string{model.RoleAdmin}, CountsEdit, true},
		{"admin 可看人数", []string{model.RoleAdmin}, CountsViewPerson, true},
		{"visitor 可看容量", []string{model.RoleVisitor}, CountsViewCapacity, true},
		{"visitor 不可看人数", []string{model.RoleVisitor}, CountsViewPerson, false},
		{"visitor 不可编辑", []string{model.RoleVisitor}, CountsEdit, false},
		{"public 可看空床", []string{model.RolePublic}, CountsView, true},
		{"public 不可看容量", []string{model.RolePublic}, CountsViewCapacity, false},
		{"guest 无任何能力", []string{model.RoleGuest}, CountsView, false},
		{"无角色", nil, CountsView, false},
		{"多角色取并集", []string{model.RoleGuest, model.RoleVisitor}, CountsViewCapacity, true},
		{"未知角色", []string{"root"}, PrefsManage, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Allowed(tt.roles, tt.cap); got != tt.want {
				t.Errorf("期望 %v，实际=%v", tt.want, got)
			}
		})
	}
}

func TestCapabilities(t *testing.T) {
	a := newTestAuthorizer(t)

	got := a.Capabilities([]string{model.RoleVisitor})
	want := []string{"counts:view", "counts:view_capacity"}
	if len(got) != len(want) {
		t.Fatalf("期望 %v，实际=%v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("期望 %v，实际=%v", want, got)
		}
	}

	if caps := a.Capabilities([]string{model.RoleAdmin}); len(caps) != 8 {
		t.Errorf("admin 期望 8 项能力，实际=%v", caps)
	}
}
