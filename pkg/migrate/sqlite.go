package migrate

import (
	"context"
	"fmt"

	"github.com/veloraworld/velora-backend/pkg/db"
	"github.com/veloraworld/velora-backend/pkg/db/models"
	"github.com/veloraworld/velora-backend/pkg/logger"
)

func autoMigrateSQLite(ctx context.Context, logg *logger.Logger, client *db.Client) error {
	logg.Info(ctx, "running GORM auto-migration (sqlite dev mode)")
	if err := client.DB().AutoMigrate(
		&models.Product{},
		&models.Order{},
		&models.Coupon{},
		&models.Admin{},
		&models.ContentBlock{},
	); err != nil {
		return fmt.Errorf("sqlite auto-migrate: %w", err)
	}
	return nil
}
