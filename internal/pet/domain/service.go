package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// GrantXPResult reports what a single xp grant did to the pet.
type GrantXPResult struct {
	Pet          UserPet
	LevelsGained int
}

type SelectRequest struct {
	UserID  snowflake.ID
	PetType string
}

type PurchaseRequest struct {
	UserID snowflake.ID
	ItemID string
}

type EquipRequest struct {
	UserID   snowflake.ID
	ItemID   string
	Equipped bool
}

type Service interface {
	// GrantXP adds xp to the user's pet inside the caller's transaction,
	// creating the pet lazily and cascading level-ups until the xp bound
	// holds again.
	GrantXP(ctx context.Context, tx *gorm.DB, userID snowflake.ID, xp int64) (GrantXPResult, error)

	// Select creates the user's pet with the chosen species. A user who
	// already has a pet, picked or lazily created, cannot re-select.
	Select(ctx context.Context, req SelectRequest) (UserPet, error)

	GetForUser(ctx context.Context, userID snowflake.ID) (UserPet, error)
	ListItems(ctx context.Context) ([]PetItem, error)
	Purchase(ctx context.Context, req PurchaseRequest) (UserInventory, error)
	Equip(ctx context.Context, req EquipRequest) error
}

var (
	ErrInvalidUser        = errors.New("invalid_user")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidPetType     = errors.New("invalid_pet_type")
	ErrPetAlreadySelected = errors.New("pet_already_selected")
	ErrItemNotFound       = errors.New("item_not_found")
	ErrPetNotFound        = errors.New("pet_not_found")
	ErrLevelTooLow        = errors.New("level_too_low")
	ErrInsufficientPoints = errors.New("insufficient_points")
	ErrAlreadyOwned       = errors.New("already_owned")
	ErrNotOwned           = errors.New("not_owned")
)
