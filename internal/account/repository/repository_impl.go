package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/moimlab/moim/internal/account/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Create(user).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, username, is_staff, total_points, created_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, username, is_staff, total_points, created_at
		 FROM users WHERE email = ?`,
		email,
	).Scan(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

func (r *repo) ListStaff(ctx context.Context, db *gorm.DB) ([]*domain.User, error) {
	var users []*domain.User
	err := db.WithContext(ctx).
		Where("is_staff = ?", true).
		Order("created_at asc, id asc").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repo) IncrementPoints(ctx context.Context, db *gorm.DB, userID snowflake.ID, delta int64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE users SET total_points = total_points + ? WHERE id = ?`,
		delta,
		userID,
	).Error
}

func (r *repo) ReconcileTotals(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error) {
	stmt := `UPDATE users SET total_points = (
		SELECT COALESCE(SUM(points_change), 0)
		FROM points_history
		WHERE points_history.user_id = users.id
	)`
	var result *gorm.DB
	if userID != 0 {
		result = db.WithContext(ctx).Exec(stmt+` WHERE users.id = ?`, userID)
	} else {
		result = db.WithContext(ctx).Exec(stmt)
	}
	return result.RowsAffected, result.Error
}
