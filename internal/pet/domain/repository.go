package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*UserPet, error)
	Insert(ctx context.Context, db *gorm.DB, pet *UserPet) error
	UpdateProgress(ctx context.Context, db *gorm.DB, pet *UserPet) error

	ListItems(ctx context.Context, db *gorm.DB) ([]*PetItem, error)
	FindItem(ctx context.Context, db *gorm.DB, itemID snowflake.ID) (*PetItem, error)
	InsertInventory(ctx context.Context, db *gorm.DB, row *UserInventory) error
	SetEquipped(ctx context.Context, db *gorm.DB, userID, itemID snowflake.ID, equipped bool) (int64, error)
	ListInventory(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]*UserInventory, error)
}
