package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Nisheeka1604/yultimate/config"
	"github.com/Nisheeka1604/yultimate/internal/dto"
	"github.com/Nisheeka1604/yultimate/internal/model"
	"github.com/Nisheeka1604/yultimate/internal/policy"
	"github.com/Nisheeka1604/yultimate/internal/repository"
	pkgerrors "github.com/Nisheeka1604/yultimate/pkg/errors"
	"github.com/Nisheeka1604/yultimate/pkg/jwt"
)

// ErrInvalidCredentials 登录失败，不区分邮箱不存在与密码错误
var ErrInvalidCredentials = errors.New("邮箱或密码错误")

// AuthService 认证业务接口
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Me(ctx context.Context, userID string) (*dto.UserResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
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

// ────────────────────── Register ──────────────────────

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	const op = "auth.Register"

	role := policy.Role(req.Role)
	if !role.Valid() {
		return nil, pkgerrors.Validation(op, "无效的角色")
	}
	if role == policy.RoleAdmin && !s.cfg.Auth.AllowAdminSignup {
		return nil, pkgerrors.PermissionDenied(op, "不允许注册管理员账号")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.repo.User.GetByEmail(ctx, email); err == nil {
		return nil, pkgerrors.Conflict(op, "该邮箱已注册")
	} else if !isNotFound(err) {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	cost := s.cfg.Auth.BcryptCost
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), cost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Email:        email,
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: string(hash),
		Role:         string(role),
	}

	// 学员注册时同时创建档案
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.User.Create(ctx, user); err != nil {
			return err
		}
		if role != policy.RoleStudent {
			return nil
		}
		return txRepo.StudentProfile.Create(ctx, &model.StudentProfile{UserID: user.UserID})
	})
	if err != nil {
		if conflict := lockConflict(op, "该邮箱已注册", err); conflict != nil {
			return nil, conflict
		}
		s.logger.Error("创建用户失败", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	return toUserResponse(user), nil
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.repo.User.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:        *toUserResponse(user),
	}, nil
}

// ────────────────────── Me ──────────────────────

func (s *authService) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.NotFound("auth.Me", "用户不存在")
		}
		s.logger.Error("查询用户失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.blacklist == nil || claims == nil {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, claims.RemainingTTL(time.Now())); err != nil {
		s.logger.Error("吊销 Token 失败", zap.String("user_id", claims.UserID), zap.Error(err))
		return err
	}
	return nil
}

func toUserResponse(u *model.User) *dto.UserResponse {
	resp := &dto.UserResponse{
		ID:       u.UserID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
	}
	if !u.CreatedAt.IsZero() {
		resp.CreatedAt = formatTime(u.CreatedAt)
	}
	return resp
}
