package controllers

import (
	"context"

	"github.com/veloraworld/velora-backend/pkg/logger"
)

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
