package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/moimlab/moim/internal/pet/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*domain.UserPet, error) {
	var pet domain.UserPet
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, pet_type, current_level, current_xp, created_at, updated_at
		 FROM user_pets WHERE user_id = ?`,
		userID,
	).Scan(&pet).Error
	if err != nil {
		return nil, err
	}
	if pet.ID == 0 {
		return nil, nil
	}
	return &pet, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, pet *domain.UserPet) error {
	return db.WithContext(ctx).Create(pet).Error
}

func (r *repo) UpdateProgress(ctx context.Context, db *gorm.DB, pet *domain.UserPet) error {
	return db.WithContext(ctx).Exec(
		`UPDATE user_pets SET current_level = ?, current_xp = ?, updated_at = ? WHERE id = ?`,
		pet.CurrentLevel,
		pet.CurrentXP,
		pet.UpdatedAt,
		pet.ID,
	).Error
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB) ([]*domain.PetItem, error) {
	var items []*domain.PetItem
	err := db.WithContext(ctx).
		Order("required_level asc, cost asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindItem(ctx context.Context, db *gorm.DB, itemID snowflake.ID) (*domain.PetItem, error) {
	var item domain.PetItem
	err := db.WithContext(ctx).Raw(
		`SELECT id, item_name, item_type, required_level, cost, created_at
		 FROM pet_items WHERE id = ?`,
		itemID,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) InsertInventory(ctx context.Context, db *gorm.DB, row *domain.UserInventory) error {
	return db.WithContext(ctx).Create(row).Error
}

func (r *repo) SetEquipped(ctx context.Context, db *gorm.DB, userID, itemID snowflake.ID, equipped bool) (int64, error) {
	result := db.WithContext(ctx).
		Model(&domain.UserInventory{}).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Update("is_equipped", equipped)
	return result.RowsAffected, result.Error
}

func (r *repo) ListInventory(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]*domain.UserInventory, error) {
	var rows []*domain.UserInventory
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("acquired_at desc, id desc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
