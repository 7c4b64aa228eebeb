package data

import (
	"context"
	"errors"
	"fmt"

	"koober/internal/biz/model"
	"koober/internal/data/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// pgUniqueViolation PostgreSQL 唯一约束冲突错误码
const pgUniqueViolation = "23505"

// UserRepo 用户数据访问接口
type UserRepo interface {
	GetUserByEmail(ctx context.Context, email string) (*model.Account, error)
	CreateUser(ctx context.Context, user model.User, passwordHash string) (*model.Account, error)
}

type userRepo struct {
	queries *models.Queries
	l       *zap.Logger
}

func NewUserRepo(data *Data, logger *zap.Logger) UserRepo {
	return newUserRepo(models.New(data.db), logger)
}

func newUserRepo(queries *models.Queries, logger *zap.Logger) *userRepo {
	return &userRepo{
		queries: queries,
		l:       logger,
	}
}

func (r *userRepo) GetUserByEmail(ctx context.Context, email string) (*model.Account, error) {
	dbUser, err := r.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return toAccount(dbUser), nil
}

func (r *userRepo) CreateUser(ctx context.Context, user model.User, passwordHash string) (*model.Account, error) {
	dbUser, err := r.queries.CreateUser(ctx, models.CreateUserParams{
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		FullName:     user.FullName,
		Phone:        user.Phone,
		PasswordHash: passwordHash,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, model.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	r.l.Info("User created", zap.Int64("user_id", dbUser.ID))
	return toAccount(dbUser), nil
}

func toAccount(u models.User) *model.Account {
	return &model.Account{
		ID: u.ID,
		User: model.User{
			DisplayName: u.DisplayName,
			FullName:    u.FullName,
			Email:       u.Email,
			Phone:       u.Phone,
		},
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt.Time,
	}
}
