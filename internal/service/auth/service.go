// Package auth 运营账号注册、登录与令牌校验
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ashwinyue/next-fans/internal/errs"
	"github.com/ashwinyue/next-fans/internal/model"
	"github.com/ashwinyue/next-fans/internal/repository"
)

const (
	accessTTL  = 24 * time.Hour
	refreshTTL = 7 * 24 * time.Hour
)

// Claims 令牌声明
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// Service 认证服务
type Service struct {
	repo   *repository.Repositories
	secret []byte
	now    func() time.Time
}

// NewService 创建认证服务
// secret 为空时生成随机密钥，重启后已签发的令牌失效
func NewService(repo *repository.Repositories, secret string) (*Service, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		randomBytes := make([]byte, 32)
		if _, err := rand.Read(randomBytes); err != nil {
			return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		secret = base64.StdEncoding.EncodeToString(randomBytes)
	}
	return &Service{repo: repo, secret: []byte(secret), now: time.Now}, nil
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	User         *model.User `json:"user"`
	Token        string      `json:"token"`
	RefreshToken string      `json:"refresh_token"`
}

// Register 注册用户
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.repo.User.ExistsByEmailOrUsername(ctx, email, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if exists {
		return nil, errs.Conflict("user with this email or username already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login 用户登录
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.repo.User.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.IsActive {
		return nil, errs.Unauthorized("account is disabled")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errs.Unauthorized("invalid email or password")
	}

	accessToken, refreshToken, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{User: user, Token: accessToken, RefreshToken: refreshToken}, nil
}

// ValidateToken 校验访问令牌并返回用户
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*model.User, error) {
	claims, err := s.parse(tokenString, "access")
	if err != nil {
		return nil, err
	}
	return s.activeUser(ctx, claims.UserID)
}

// RefreshToken 用刷新令牌换取新令牌
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*LoginResponse, error) {
	claims, err := s.parse(refreshToken, "refresh")
	if err != nil {
		return nil, err
	}
	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	accessToken, newRefresh, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{User: user, Token: accessToken, RefreshToken: newRefresh}, nil
}

func (s *Service) activeUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Unauthorized("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.IsActive {
		return nil, errs.Unauthorized("account is disabled")
	}
	return user, nil
}

func (s *Service) parse(tokenString, tokenType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, errs.Unauthorized("invalid token")
	}
	if claims.Type != tokenType || claims.UserID == "" {
		return nil, errs.Unauthorized("invalid token type")
	}
	return claims, nil
}

// generateTokens 生成访问令牌和刷新令牌
func (s *Service) generateTokens(user *model.User) (string, string, error) {
	now := s.now()
	accessToken, err := s.sign(&Claims{
		UserID: user.ID,
		Email:  user.Email,
		Type:   "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTTL)),
		},
	})
	if err != nil {
		return "", "", err
	}

	refreshToken, err := s.sign(&Claims{
		UserID: user.ID,
		Type:   "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(refreshTTL)),
		},
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (s *Service) sign(claims *Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
