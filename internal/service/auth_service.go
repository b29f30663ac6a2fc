package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/maikostudios/SustentaM-sub001/config"
	"github.com/maikostudios/SustentaM-sub001/internal/dto"
	"github.com/maikostudios/SustentaM-sub001/internal/model"
	"github.com/maikostudios/SustentaM-sub001/internal/repository"
	"github.com/maikostudios/SustentaM-sub001/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrInvalidToken       = errors.New("刷新令牌无效或已注销")
)

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
	Me(ctx context.Context, userID string) (*dto.UserResponse, error)
	// BootstrapAdmin 用户表为空时按配置创建首个管理员
	BootstrapAdmin(ctx context.Context) error
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
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

	// 3. 生成 Token 对
	return s.issueTokens(user)
}

// ────────────────────── Refresh ──────────────────────

func (s *authService) Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(req.RefreshToken)
	if err != nil || claims.TokenType != "refresh" {
		return nil, ErrInvalidToken
	}
	if s.isRevoked(ctx, claims.ID) {
		return nil, ErrInvalidToken
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		s.logger.Error("查询用户失败", zap.String("user_id", claims.UserID), zap.Error(err))
		return nil, err
	}

	// 旧的刷新令牌作废，防止重复使用
	s.revoke(ctx, claims)
	return s.issueTokens(user)
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if claims == nil {
		return nil
	}
	s.revoke(ctx, claims)
	s.logger.Info("用户已注销", zap.String("user_id", claims.UserID))
	return nil
}

// ────────────────────── Me ──────────────────────

func (s *authService) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── BootstrapAdmin ──────────────────────

func (s *authService) BootstrapAdmin(ctx context.Context) error {
	admin := s.cfg.Auth.BootstrapAdmin
	if admin.Email == "" || admin.Password == "" {
		return nil
	}

	count, err := s.repo.User.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := &model.User{
		Name:         admin.Name,
		Email:        admin.Email,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		return err
	}

	s.logger.Info("已创建初始管理员", zap.String("email", admin.Email))
	return nil
}

// ── 辅助函数 ──

func (s *authService) issueTokens(user *model.User) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role, user.Company)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Role, user.Company)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         *toUserResponse(user),
	}, nil
}

// revoke 将 Token 加入黑名单，TTL 为剩余有效期
func (s *authService) revoke(ctx context.Context, claims *jwt.Claims) {
	if s.blacklist == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Warn("写入 Token 黑名单失败", zap.Error(err))
	}
}

func (s *authService) isRevoked(ctx context.Context, jti string) bool {
	if s.blacklist == nil || jti == "" {
		return false
	}
	revoked, err := s.blacklist.IsBlacklisted(ctx, jti)
	if err != nil {
		s.logger.Warn("查询 Token 黑名单失败", zap.Error(err))
		return false
	}
	return revoked
}

func toUserResponse(user *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        user.UserID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Company:   user.Company,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}
