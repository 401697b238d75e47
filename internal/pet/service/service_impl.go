package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/moimlab/moim/internal/account/domain"
	"github.com/moimlab/moim/internal/cache"
	"github.com/moimlab/moim/internal/clock"
	ledgerdomain "github.com/moimlab/moim/internal/ledger/domain"
	"github.com/moimlab/moim/internal/pet/domain"
	"github.com/moimlab/moim/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	AccountRepo accountdomain.Repository
	LedgerRepo  ledgerdomain.Repository
	Catalog     cache.CatalogCache `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	accountRepo accountdomain.Repository
	ledgerRepo  ledgerdomain.Repository
	catalog     cache.CatalogCache
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("pet.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		accountRepo: p.AccountRepo,
		ledgerRepo:  p.LedgerRepo,
		catalog:     p.Catalog,
	}
}

func (s *Service) GrantXP(ctx context.Context, tx *gorm.DB, userID snowflake.ID, xp int64) (domain.GrantXPResult, error) {
	if userID == 0 {
		return domain.GrantXPResult{}, domain.ErrInvalidUser
	}
	if xp <= 0 {
		return domain.GrantXPResult{}, nil
	}

	now := s.clock.Now()

	pet, err := s.repo.FindByUser(ctx, tx, userID)
	if err != nil {
		return domain.GrantXPResult{}, err
	}

	created := false
	if pet == nil {
		pet = &domain.UserPet{
			ID:           s.genID.Generate(),
			UserID:       userID,
			PetType:      domain.DefaultPetType,
			CurrentLevel: 1,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		created = true
	}

	pet.CurrentXP += xp
	levels := 0
	for pet.CurrentXP >= domain.XPNeeded(pet.CurrentLevel) {
		pet.CurrentXP -= domain.XPNeeded(pet.CurrentLevel)
		pet.CurrentLevel++
		levels++
	}
	pet.UpdatedAt = now

	if created {
		if err := s.repo.Insert(ctx, tx, pet); err != nil {
			return domain.GrantXPResult{}, err
		}
	} else {
		if err := s.repo.UpdateProgress(ctx, tx, pet); err != nil {
			return domain.GrantXPResult{}, err
		}
	}

	return domain.GrantXPResult{Pet: *pet, LevelsGained: levels}, nil
}

func (s *Service) Select(ctx context.Context, req domain.SelectRequest) (domain.UserPet, error) {
	if req.UserID == 0 {
		return domain.UserPet{}, domain.ErrInvalidUser
	}
	petType := strings.ToLower(strings.TrimSpace(req.PetType))
	if !domain.ValidPetType(petType) {
		return domain.UserPet{}, domain.ErrInvalidPetType
	}

	existing, err := s.repo.FindByUser(ctx, s.db, req.UserID)
	if err != nil {
		return domain.UserPet{}, err
	}
	if existing != nil {
		return domain.UserPet{}, domain.ErrPetAlreadySelected
	}

	now := s.clock.Now()
	pet := domain.UserPet{
		ID:           s.genID.Generate(),
		UserID:       req.UserID,
		PetType:      petType,
		CurrentLevel: 1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, s.db, &pet); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.UserPet{}, domain.ErrPetAlreadySelected
		}
		return domain.UserPet{}, err
	}

	s.log.Info("pet selected",
		zap.String("user_id", req.UserID.String()),
		zap.String("pet_type", petType),
	)
	return pet, nil
}

func (s *Service) GetForUser(ctx context.Context, userID snowflake.ID) (domain.UserPet, error) {
	if userID == 0 {
		return domain.UserPet{}, domain.ErrInvalidUser
	}
	pet, err := s.repo.FindByUser(ctx, s.db, userID)
	if err != nil {
		return domain.UserPet{}, err
	}
	if pet == nil {
		return domain.UserPet{}, domain.ErrPetNotFound
	}
	return *pet, nil
}

func (s *Service) ListItems(ctx context.Context) ([]domain.PetItem, error) {
	if s.catalog != nil {
		if cached, ok := s.catalog.GetItems(); ok {
			return cached, nil
		}
	}

	items, err := s.repo.ListItems(ctx, s.db)
	if err != nil {
		return nil, err
	}
	result := make([]domain.PetItem, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		result = append(result, *item)
	}

	if s.catalog != nil {
		s.catalog.SetItems(result)
	}
	return result, nil
}

// Purchase spends points on a shop item. The ledger append, the cached
// total decrement, and the inventory row commit or roll back together.
func (s *Service) Purchase(ctx context.Context, req domain.PurchaseRequest) (domain.UserInventory, error) {
	if req.UserID == 0 {
		return domain.UserInventory{}, domain.ErrInvalidUser
	}
	itemID, err := s.parseID(req.ItemID)
	if err != nil {
		return domain.UserInventory{}, err
	}

	var row domain.UserInventory
	err = s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrItemNotFound
		}

		user, err := s.accountRepo.FindByID(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrInvalidUser
		}
		if user.TotalPoints < item.Cost {
			return domain.ErrInsufficientPoints
		}

		pet, err := s.repo.FindByUser(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		level := 1
		if pet != nil {
			level = pet.CurrentLevel
		}
		if level < item.RequiredLevel {
			return domain.ErrLevelTooLow
		}

		now := s.clock.Now()
		if err := s.ledgerRepo.Append(ctx, tx, &ledgerdomain.PointsHistory{
			ID:           s.genID.Generate(),
			UserID:       req.UserID,
			ItemID:       &item.ID,
			PointsChange: -item.Cost,
			Reason:       ledgerdomain.ReasonItemPurchase,
			CreatedAt:    now,
		}); err != nil {
			return err
		}
		if err := s.accountRepo.IncrementPoints(ctx, tx, req.UserID, -item.Cost); err != nil {
			return err
		}

		row = domain.UserInventory{
			ID:         s.genID.Generate(),
			UserID:     req.UserID,
			ItemID:     item.ID,
			AcquiredAt: now,
		}
		if err := s.repo.InsertInventory(ctx, tx, &row); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrAlreadyOwned
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.UserInventory{}, err
	}

	s.log.Info("item purchased",
		zap.String("user_id", req.UserID.String()),
		zap.String("item_id", itemID.String()),
	)
	return row, nil
}

func (s *Service) Equip(ctx context.Context, req domain.EquipRequest) error {
	if req.UserID == 0 {
		return domain.ErrInvalidUser
	}
	itemID, err := s.parseID(req.ItemID)
	if err != nil {
		return err
	}

	affected, err := s.repo.SetEquipped(ctx, s.db, req.UserID, itemID, req.Equipped)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotOwned
	}
	return nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
