package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const DefaultPetType = "otter"

// SelectablePetTypes are the species a user may pick. Pets created
// lazily by a reward grant fall back to DefaultPetType instead.
var SelectablePetTypes = []string{"cat", "dog", "tree"}

func ValidPetType(petType string) bool {
	for _, t := range SelectablePetTypes {
		if t == petType {
			return true
		}
	}
	return false
}

type UserPet struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID       snowflake.ID `gorm:"not null;uniqueIndex" json:"user_id"`
	PetType      string       `gorm:"not null;default:otter" json:"pet_type"`
	CurrentLevel int          `gorm:"not null;default:1" json:"current_level"`
	CurrentXP    int64        `gorm:"not null;default:0" json:"current_xp"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// XPNeeded is the xp required to advance past the given level.
func XPNeeded(level int) int64 {
	return int64(level+1) * 100
}

// MaxXP is the exclusive upper bound for the pet's normalized xp.
func (p UserPet) MaxXP() int64 {
	return XPNeeded(p.CurrentLevel)
}

type ItemType string

const (
	ItemTypeSnack      ItemType = "snack"
	ItemTypeDecoration ItemType = "decoration"
)

type PetItem struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	ItemName      string       `gorm:"not null" json:"item_name"`
	ItemType      ItemType     `gorm:"not null" json:"item_type"`
	RequiredLevel int          `gorm:"not null;default:1" json:"required_level"`
	Cost          int64        `gorm:"not null" json:"cost"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

type UserInventory struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID     snowflake.ID `gorm:"not null;uniqueIndex:ux_user_inventories_user_item" json:"user_id"`
	ItemID     snowflake.ID `gorm:"not null;uniqueIndex:ux_user_inventories_user_item" json:"item_id"`
	IsEquipped bool         `gorm:"not null;default:false" json:"is_equipped"`
	AcquiredAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"acquired_at"`
}

func (UserInventory) TableName() string {
	return "user_inventories"
}
