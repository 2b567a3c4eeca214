package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/samiksha1911888/slot-swapper/internal/models"
)

// ErrEmailTaken возвращается при попытке регистрации с занятым email
var ErrEmailTaken = errors.New("email уже зарегистрирован")

// ErrUserNotFound возвращается, когда пользователь не найден
var ErrUserNotFound = errors.New("пользователь не найден")

// CreateUser создает нового пользователя с уже захэшированным паролем
func CreateUser(name, email, passwordHash string) (*models.User, error) {
	ctx, cancel := GetContext()
	defer cancel()

	var user models.User
	err := Pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, name, email, password_hash, created_at
	`, name, email, passwordHash).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 — нарушение уникальности (занятый email)
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("ошибка при создании пользователя: %w", err)
	}

	return &user, nil
}

// GetUserByEmail возвращает пользователя по email
func GetUserByEmail(email string) (*models.User, error) {
	ctx, cancel := GetContext()
	defer cancel()

	var user models.User
	err := Pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка при поиске пользователя: %w", err)
	}

	return &user, nil
}
