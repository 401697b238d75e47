package migration

import (
	"strings"

	accountdomain "github.com/moimlab/moim/internal/account/domain"
	"github.com/moimlab/moim/internal/config"
	donationdomain "github.com/moimlab/moim/internal/donation/domain"
	ledgerdomain "github.com/moimlab/moim/internal/ledger/domain"
	meetingdomain "github.com/moimlab/moim/internal/meeting/domain"
	notificationdomain "github.com/moimlab/moim/internal/notification/domain"
	petdomain "github.com/moimlab/moim/internal/pet/domain"
	"github.com/moimlab/moim/internal/seed"
	submissiondomain "github.com/moimlab/moim/internal/submission/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		// Embedded migrations target the primary postgres dialect; the
		// sqlite/mysql dev paths derive the schema from the models instead.
		if strings.EqualFold(cfg.DBType, "postgres") {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			log.Info("auto-migrating schema for non-postgres database",
				zap.String("db_type", cfg.DBType),
			)
			if err := conn.AutoMigrate(
				&accountdomain.User{},
				&meetingdomain.Meeting{},
				&meetingdomain.MeetingParticipant{},
				&submissiondomain.Submission{},
				&submissiondomain.SubmissionMedia{},
				&ledgerdomain.PointsHistory{},
				&petdomain.UserPet{},
				&petdomain.PetItem{},
				&petdomain.UserInventory{},
				&donationdomain.DonationPool{},
				&donationdomain.DonationHistory{},
				&notificationdomain.Notification{},
			); err != nil {
				return err
			}
		}

		if cfg.Bootstrap.EnsureDefaultAdmin {
			if err := seed.EnsureDefaultAdmin(conn); err != nil {
				return err
			}
		}
		if cfg.Bootstrap.DefaultPoolGoal > 0 {
			if err := seed.EnsureOpenPool(conn, cfg.Bootstrap.DefaultPoolGoal); err != nil {
				return err
			}
		}
		return seed.EnsureShopCatalog(conn)
	}),
)
