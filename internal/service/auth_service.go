package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"shelter-caller/internal/authz"
	"shelter-caller/internal/dto"
	"shelter-caller/internal/model"
	"shelter-caller/internal/repository"
	"shelter-caller/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrWeakPassword       = errors.New("密码长度不能少于 8 位")
)

// TokenBlacklist 登出后的 token 黑名单
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	// Logout 将 token 加入黑名单直至其自然过期
	Logout(ctx context.Context, claims *jwt.Claims) error
	// EnsureAdmin 用户表为空时创建初始管理员；已有用户时不做任何事
	EnsureAdmin(ctx context.Context, username, password string) error
}

type authService struct {
	repo       *repository.Repository
	jwtMgr     *jwt.Manager
	blacklist  TokenBlacklist
	authorizer *authz.Authorizer
	logger     *zap.Logger
}

// NewAuthService 创建 AuthService 实例；blacklist 可为 nil
func NewAuthService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	authorizer *authz.Authorizer,
	logger *zap.Logger,
) AuthService {
	return &authService{
		repo:       repo,
		jwtMgr:     jwtMgr,
		blacklist:  blacklist,
		authorizer: authorizer,
		logger:     logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 生成 Token
	roles := user.RoleNames()
	token, err := s.jwtMgr.GenerateAccessToken(user.ID, user.Username, roles)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户登录", zap.String("username", user.Username), zap.Strings("roles", roles))

	return &dto.LoginResponse{
		JWT:          token,
		ExpiresIn:    int(s.jwtMgr.TTL().Seconds()),
		Roles:        roles,
		Capabilities: s.authorizer.Capabilities(roles),
	}, nil
}

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.blacklist == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("token 加入黑名单失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) EnsureAdmin(ctx context.Context, username, password string) error {
	roles, err := s.repo.User.EnsureRoles(ctx, []string{
		model.RoleAdmin, model.RoleVisitor, model.RolePublic, model.RoleGuest,
	})
	if err != nil {
		s.logger.Error("初始化角色失败", zap.Error(err))
		return err
	}

	n, err := s.repo.User.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 || username == "" {
		return nil
	}
	if len(password) < 8 {
		return ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	var adminRoles []model.Role
	for _, r := range roles {
		if r.Name == model.RoleAdmin {
			adminRoles = append(adminRoles, r)
		}
	}

	if err := s.repo.User.Create(ctx, &model.User{
		Username:     username,
		PasswordHash: string(hash),
		Roles:        adminRoles,
	}); err != nil {
		s.logger.Error("创建初始管理员失败", zap.Error(err))
		return err
	}
	s.logger.Info("已创建初始管理员", zap.String("username", username))
	return nil
}
