package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"cmms-system/internal/entities"
	"cmms-system/internal/infrastructure/bd"
	apperrors "cmms-system/pkg/errors"
	"cmms-system/pkg/types"
)

var userColumns = []string{"u.id", "u.fio", "u.email", "u.password_hash", "u.role", "u.is_active", "u.created_at", "u.updated_at"}

var userMap = map[string]string{
	"id":         "u.id",
	"fio":        "u.fio",
	"email":      "u.email",
	"role":       "u.role",
	"is_active":  "u.is_active",
	"created_at": "u.created_at",
}

type UserRepositoryInterface interface {
	GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error)
	FindByID(ctx context.Context, id uint64) (*entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	CreateUser(ctx context.Context, user *entities.User) (*entities.User, error)
	CountUsers(ctx context.Context) (uint64, error)
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	err := row.Scan(&u.ID, &u.Fio, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error) {
	countBuilder := bd.Psql.Select("COUNT(u.id)").From("users AS u")
	countBuilder = bd.ApplySearch(countBuilder, filter.Search, "u.fio", "u.email")
	countBuilder = bd.ApplyListParams(countBuilder, bd.CountFilter(filter), userMap)

	var total uint64
	sqlCount, argsCount, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.User{}, 0, nil
	}

	builder := bd.Psql.Select(userColumns...).From("users AS u")
	builder = bd.ApplySearch(builder, filter.Search, "u.fio", "u.email")
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("u.id")
	}
	builder = bd.ApplyListParams(builder, filter, userMap)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]entities.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

func (r *UserRepository) findOne(ctx context.Context, where sq.Sqlizer) (*entities.User, error) {
	query, args, err := bd.Psql.Select(userColumns...).From("users AS u").Where(where).ToSql()
	if err != nil {
		return nil, err
	}
	return scanUser(r.storage.QueryRow(ctx, query, args...))
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*entities.User, error) {
	return r.findOne(ctx, sq.Eq{"u.id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findOne(ctx, sq.Expr("LOWER(u.email) = LOWER(?)", email))
}

func (r *UserRepository) CreateUser(ctx context.Context, user *entities.User) (*entities.User, error) {
	query := `
		INSERT INTO users (fio, email, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, fio, email, password_hash, role, is_active, created_at, updated_at`
	created, err := scanUser(r.storage.QueryRow(ctx, query, user.Fio, user.Email, user.PasswordHash, user.Role, user.IsActive))
	if err != nil {
		if pgErrCode(err) == pgUniqueViolation {
			return nil, fmt.Errorf("пользователь с email %s уже существует: %w", user.Email, apperrors.ErrConflict)
		}
		return nil, err
	}
	return created, nil
}

func (r *UserRepository) CountUsers(ctx context.Context) (uint64, error) {
	var total uint64
	err := r.storage.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&total)
	return total, err
}
