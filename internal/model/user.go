package model

// 角色名
const (
	RoleAdmin   = "admin"
	RoleVisitor = "visitor"
	RolePublic  = "public"
	RoleGuest   = "guest"
)

// User 后台用户 — 对应 users
type User struct {
	ID           uint   `gorm:"primaryKey"                             json:"id"`
	Username     string `gorm:"type:varchar(64);not null;uniqueIndex"  json:"username"`
	PasswordHash string `gorm:"type:varchar(255);not null"             json:"-"`
	BaseModel

	// 关联
	Roles []Role `gorm:"many2many:user_roles;constraint:OnDelete:CASCADE" json:"roles,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// RoleNames 展开角色名列表
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Role 角色 — 对应 roles
type Role struct {
	ID   uint   `gorm:"primaryKey"                            json:"id"`
	Name string `gorm:"type:varchar(32);not null;uniqueIndex" json:"name"`
}

// TableName 指定表名
func (Role) TableName() string { return "roles" }
