package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"taskapp/internal/mockapi/store"
)

// UserRepository implements store.UserRepository on sqlite.
type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user store.User) (store.User, error) {
	if _, err := r.GetByEmail(ctx, user.Email); err == nil {
		return store.User{}, store.ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return store.User{}, err
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := r.db.QueryBuilder.Insert("users").
		Columns("email", "password_hash", "created_at").
		Values(user.Email, user.PasswordHash, user.CreatedAt)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return store.User{}, err
	}
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return store.User{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return store.User{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (store.User, error) {
	return r.getOne(ctx, sq.Eq{"email": email})
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (store.User, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

func (r *UserRepository) getOne(ctx context.Context, where sq.Eq) (store.User, error) {
	query := r.db.QueryBuilder.
		Select("id", "email", "password_hash", "created_at").
		From("users").
		Where(where)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return store.User{}, err
	}

	var user store.User
	err = r.db.QueryRowContext(ctx, sqlStr, args...).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, store.ErrNotFound
	}
	if err != nil {
		return store.User{}, err
	}
	return user, nil
}
