package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/moimlab/moim/internal/account/domain"
	donationdomain "github.com/moimlab/moim/internal/donation/domain"
	petdomain "github.com/moimlab/moim/internal/pet/domain"
	"gorm.io/gorm"
)

const (
	defaultAdminEmail    = "admin@moim.local"
	defaultAdminUsername = "admin"
)

// EnsureDefaultAdmin seeds a staff user for self-hosted setups so the
// manual review path works out of the box.
func EnsureDefaultAdmin(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user accountdomain.User
		err := tx.WithContext(ctx).
			Where("email = ?", defaultAdminEmail).
			First(&user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		user = accountdomain.User{
			ID:        node.Generate(),
			Email:     defaultAdminEmail,
			Username:  defaultAdminUsername,
			IsStaff:   true,
			CreatedAt: time.Now().UTC(),
		}
		return tx.WithContext(ctx).Create(&user).Error
	})
}

// EnsureOpenPool seeds one open donation pool when none exists, so
// reward grants have somewhere to aggregate.
func EnsureOpenPool(db *gorm.DB, goalPoints int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if goalPoints <= 0 {
		return errors.New("seed pool goal must be positive")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.WithContext(ctx).
			Model(&donationdomain.DonationPool{}).
			Where("status = ?", donationdomain.PoolStatusOpen).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		pool := donationdomain.DonationPool{
			ID:         node.Generate(),
			Title:      "Community donation pool",
			GoalPoints: goalPoints,
			Status:     donationdomain.PoolStatusOpen,
			CreatedAt:  time.Now().UTC(),
		}
		return tx.WithContext(ctx).Create(&pool).Error
	})
}

// EnsureShopCatalog seeds the starter pet shop items once.
func EnsureShopCatalog(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	items := []petdomain.PetItem{
		{ItemName: "Fish snack", ItemType: petdomain.ItemTypeSnack, RequiredLevel: 1, Cost: 50},
		{ItemName: "Clam snack", ItemType: petdomain.ItemTypeSnack, RequiredLevel: 2, Cost: 120},
		{ItemName: "Pebble pile", ItemType: petdomain.ItemTypeDecoration, RequiredLevel: 1, Cost: 80},
		{ItemName: "River den", ItemType: petdomain.ItemTypeDecoration, RequiredLevel: 3, Cost: 300},
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.WithContext(ctx).
			Model(&petdomain.PetItem{}).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		for i := range items {
			items[i].ID = node.Generate()
			items[i].CreatedAt = now
			if err := tx.WithContext(ctx).Create(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
