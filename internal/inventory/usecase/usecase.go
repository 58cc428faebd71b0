package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-catalog-service/internal/apperror"
	"github.com/fekuna/omnipos-catalog-service/internal/events"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
)

const (
	lockTTL      = 5 * time.Second
	lockAttempts = 3
	lockBackoff  = 100 * time.Millisecond
)

type inventoryUseCase struct {
	repo       inventory.Repository
	cache      *cache.RedisClient
	dispatcher *events.Dispatcher
	logger     logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, cache *cache.RedisClient, dispatcher *events.Dispatcher, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:       repo,
		cache:      cache,
		dispatcher: dispatcher,
		logger:     log,
	}
}

// AdjustStock serializes ledger appends per variant behind a redis lock,
// then re-reads, validates and persists inside the lock window. The
// database transaction remains the source of truth; the lock only cuts
// down lost-update retries between replicas.
func (uc *inventoryUseCase) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*dto.StockAdjustResult, error) {
	release, err := uc.acquireVariantLock(ctx, input.VariantID)
	if err != nil {
		return nil, err
	}
	defer release()

	v, err := uc.repo.FindVariantByID(ctx, input.VariantID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, apperror.NewNotFound("variant_not_found", fmt.Sprintf("variant %s does not exist", input.VariantID))
	}

	movement, err := v.AdjustStock(input.Quantity, model.MovementType(input.MovementType), input.ReferenceID, input.Notes)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.SaveVariantStock(ctx, v); err != nil {
		return nil, err
	}

	uc.dispatcher.Dispatch(ctx, v.DrainEvents())

	return &dto.StockAdjustResult{
		VariantID:     v.ID,
		MovementID:    movement.ID,
		StockQuantity: v.StockQuantity,
		StockStatus:   v.StockStatus,
	}, nil
}

func (uc *inventoryUseCase) CheckAvailability(ctx context.Context, variantID string, quantity int) (*dto.AvailabilityResult, error) {
	v, err := uc.repo.FindVariantByID(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, apperror.NewNotFound("variant_not_found", fmt.Sprintf("variant %s does not exist", variantID))
	}

	available, err := v.CheckStockAvailability(quantity)
	if err != nil {
		return nil, err
	}
	return &dto.AvailabilityResult{
		VariantID:     v.ID,
		Requested:     quantity,
		Available:     available,
		StockQuantity: v.StockQuantity,
		StockStatus:   v.StockStatus,
	}, nil
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	return uc.repo.ListMovements(ctx, filters)
}

func (uc *inventoryUseCase) acquireVariantLock(ctx context.Context, variantID string) (func(), error) {
	if uc.cache == nil {
		return func() {}, nil
	}

	lockKey := "lock:stock:" + variantID
	lockValue := uuid.New().String()

	for i := 0; i < lockAttempts; i++ {
		ok, err := uc.cache.AcquireLock(ctx, lockKey, lockValue, lockTTL)
		if err != nil {
			uc.logger.Error("failed to acquire stock lock", zap.String("variant_id", variantID), zap.Error(err))
		}
		if ok {
			return func() {
				if err := uc.cache.ReleaseLock(context.Background(), lockKey, lockValue); err != nil {
					uc.logger.Warn("failed to release stock lock", zap.String("variant_id", variantID), zap.Error(err))
				}
			}, nil
		}
		time.Sleep(lockBackoff)
	}
	return nil, apperror.NewConflict("stock_locked", "stock is being adjusted concurrently, retry the request")
}
