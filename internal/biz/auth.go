package biz

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"koober/internal/biz/model"
	conf "koober/internal/conf/v1"
	"koober/internal/data"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultIssuer         = "koober"
	defaultJwtExpireHours = 24
	minPasswordLength     = 8
	maxPasswordBytes      = 72
)

// sessionClaims 访问令牌载荷, ID(jti) 即会话 ID
type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type AuthUseCase struct {
	users      data.UserRepo
	sessions   data.SessionRepo
	secret     []byte
	issuer     string
	ttl        time.Duration
	bcryptCost int
	// dummyHash 在用户不存在时参与比较, 使两条路径耗时一致
	dummyHash []byte
	compare   func(hash, password []byte) error
	clock     clockwork.Clock
	l         *zap.Logger
}

func NewAuthUseCase(users data.UserRepo, sessions data.SessionRepo, cfg *conf.Bootstrap, clock clockwork.Clock, logger *zap.Logger) (model.AuthUseCase, error) {
	authCfg := cfg.Auth
	if authCfg == nil {
		authCfg = &conf.Auth{}
	}

	var secret []byte
	if authCfg.JwtSecret != "" {
		secret = []byte(authCfg.JwtSecret)
	} else {
		// 生成默认密钥, 重启后已签发的令牌全部失效
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate jwt secret failed: %w", err)
		}
		logger.Warn("WARNING: Using auto-generated JWT secret, set auth.jwt_secret in config for production")
	}

	expireHours := authCfg.JwtExpireHours
	if expireHours <= 0 {
		expireHours = defaultJwtExpireHours
	}

	issuer := authCfg.Issuer
	if issuer == "" {
		issuer = defaultIssuer
	}

	cost := int(authCfg.BcryptCost)
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("invalid bcrypt cost %d", cost)
	}

	dummyHash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cost)
	if err != nil {
		return nil, fmt.Errorf("generate dummy hash: %w", err)
	}

	return &AuthUseCase{
		users:      users,
		sessions:   sessions,
		secret:     secret,
		issuer:     issuer,
		ttl:        time.Duration(expireHours) * time.Hour,
		bcryptCost: cost,
		dummyHash:  dummyHash,
		compare:    bcrypt.CompareHashAndPassword,
		clock:      clock,
		l:          logger,
	}, nil
}

func (uc *AuthUseCase) SignIn(ctx context.Context, email, password string) (*model.UserSession, error) {
	email = normalizeEmail(email)

	account, err := uc.users.GetUserByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		// 返回通用错误避免用户枚举
		_ = uc.compare(uc.dummyHash, []byte(password))
		return nil, model.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	if err := uc.compare([]byte(account.PasswordHash), []byte(password)); err != nil {
		uc.l.Info("Sign in rejected", zap.Int64("user_id", account.ID))
		return nil, model.ErrInvalidCredentials
	}

	session, err := uc.issueSession(ctx, account)
	if err != nil {
		return nil, err
	}

	uc.l.Info("User signed in",
		zap.Int64("user_id", account.ID),
		zap.String("session_id", session.Tokens.SessionID),
	)
	return session, nil
}

func (uc *AuthUseCase) SignUp(ctx context.Context, newAccount model.NewAccount) (*model.UserSession, error) {
	user, err := validateNewAccount(newAccount)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newAccount.Password), uc.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account, err := uc.users.CreateUser(ctx, user, string(hash))
	if err != nil {
		if errors.Is(err, model.ErrUserAlreadyExists) {
			return nil, model.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("sign up: %w", err)
	}

	return uc.issueSession(ctx, account)
}

func (uc *AuthUseCase) GetSession(ctx context.Context, accessToken string) (*model.UserSession, error) {
	claims, err := uc.parseToken(accessToken, true)
	if err != nil {
		return nil, err
	}

	session, err := uc.sessions.Get(ctx, claims.ID)
	if err != nil {
		return nil, err
	}

	session.Tokens.AccessToken = accessToken
	if claims.ExpiresAt != nil {
		session.Tokens.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// SignOut 吊销令牌对应的会话, 已过期的令牌同样可以注销, 重复注销不报错
func (uc *AuthUseCase) SignOut(ctx context.Context, accessToken string) error {
	claims, err := uc.parseToken(accessToken, false)
	if err != nil {
		return err
	}

	if err := uc.sessions.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}

	uc.l.Info("User signed out", zap.String("session_id", claims.ID))
	return nil
}

func (uc *AuthUseCase) issueSession(ctx context.Context, account *model.Account) (*model.UserSession, error) {
	// NumericDate 精度为秒, 截断后令牌与返回值的过期时间一致
	now := uc.clock.Now().Truncate(time.Second)
	expiresAt := now.Add(uc.ttl)
	sessionID := uuid.NewString()

	token, err := uc.generateJWT(account, sessionID, now, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("generate token failed: %w", err)
	}

	session := &model.UserSession{
		User: account.User,
		Tokens: model.AuthTokens{
			SessionID:   sessionID,
			AccessToken: token,
			ExpiresAt:   expiresAt,
		},
	}

	if err := uc.sessions.Create(ctx, session, uc.ttl); err != nil {
		return nil, fmt.Errorf("register session: %w", err)
	}
	return session, nil
}

func (uc *AuthUseCase) generateJWT(account *model.Account, sessionID string, now, expiresAt time.Time) (string, error) {
	claims := sessionClaims{
		Email: account.User.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    uc.issuer,
			Subject:   fmt.Sprintf("%d", account.ID),
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(uc.secret)
}

func (uc *AuthUseCase) parseToken(accessToken string, validateExpiry bool) (*sessionClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(uc.clock.Now),
		jwt.WithIssuer(uc.issuer),
	}
	if !validateExpiry {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(accessToken, claims, func(*jwt.Token) (interface{}, error) {
		return uc.secret, nil
	}, opts...)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, model.ErrSessionExpired
	}
	if err != nil {
		uc.l.Debug("Rejected access token", zap.Error(err))
		return nil, model.ErrSessionNotFound
	}
	if claims.ID == "" {
		return nil, model.ErrSessionNotFound
	}
	return claims, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateNewAccount(a model.NewAccount) (model.User, error) {
	fullName := strings.TrimSpace(a.FullName)
	if fullName == "" {
		return model.User{}, fmt.Errorf("%w: full name is required", model.ErrInvalidAccount)
	}

	email := normalizeEmail(a.Email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return model.User{}, fmt.Errorf("%w: invalid email %q", model.ErrInvalidAccount, a.Email)
	}

	if len(a.Password) < minPasswordLength {
		return model.User{}, fmt.Errorf("%w: password must be at least %d characters", model.ErrInvalidAccount, minPasswordLength)
	}
	// bcrypt 只处理前 72 字节
	if len(a.Password) > maxPasswordBytes {
		return model.User{}, fmt.Errorf("%w: password must be at most %d bytes", model.ErrInvalidAccount, maxPasswordBytes)
	}

	nickname := strings.TrimSpace(a.Nickname)
	if nickname == "" {
		nickname = strings.Fields(fullName)[0]
	}

	return model.User{
		DisplayName: nickname,
		FullName:    fullName,
		Email:       email,
		Phone:       strings.TrimSpace(a.Phone),
	}, nil
}
