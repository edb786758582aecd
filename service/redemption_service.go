package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"magbank/events"
	"magbank/models"
)

type redemptionService struct {
	uowFactory UnitOfWorkFactory
}

// NewRedemptionService creates a new redemption service
func NewRedemptionService(uowFactory UnitOfWorkFactory) RedemptionService {
	return &redemptionService{
		uowFactory: uowFactory,
	}
}

// ListPrizes returns active prizes, cheapest first
func (s *redemptionService) ListPrizes(ctx context.Context, category models.PrizeCategory) ([]*models.Prize, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	prizes, err := uow.PrizeRepository().ListActive(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list prizes: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return prizes, nil
}

// Redeem exchanges tickets for a prize. The prize row is locked before the
// stock check so two buyers of the last unit serialize; the ticket account
// is locked before the balance check for the same reason. Magys prizes
// credit the Magys balance inside the same transaction and come back
// delivered; every other category stays pending for manual fulfillment.
func (s *redemptionService) Redeem(ctx context.Context, userID, prizeID int64, shippingAddress string) (*models.RedeemResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	prize, err := uow.PrizeRepository().GetForUpdate(ctx, prizeID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock prize: %w", err)
	}
	if prize == nil {
		return nil, models.ErrPrizeNotFound
	}
	if !prize.Active {
		return nil, models.ErrPrizeInactive
	}
	if prize.Stock != nil && *prize.Stock <= 0 {
		return nil, models.ErrOutOfStock
	}

	tickets, err := uow.TicketRepository().GetForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock ticket balance: %w", err)
	}
	if tickets == nil {
		return nil, models.ErrTicketAccountNotFound
	}
	if tickets.Balance < prize.TicketCost {
		return nil, models.NewInsufficientTickets(tickets.Balance, prize.TicketCost)
	}

	if err := uow.TicketRepository().Debit(ctx, userID, prize.TicketCost); err != nil {
		return nil, fmt.Errorf("failed to debit tickets: %w", err)
	}

	var address *string
	if shippingAddress != "" {
		address = &shippingAddress
	}
	redemption := &models.Redemption{
		UserID:          userID,
		PrizeID:         prizeID,
		TicketsSpent:    prize.TicketCost,
		State:           models.RedemptionStatePending,
		ShippingAddress: address,
	}
	if err := uow.RedemptionRepository().Create(ctx, redemption); err != nil {
		return nil, fmt.Errorf("failed to create redemption: %w", err)
	}

	var magysCredited int64
	state := models.RedemptionStatePending

	if prize.Category.IsCurrencyCredit() && prize.MagysAmount != nil && *prize.MagysAmount > 0 {
		magysCredited, err = s.creditMagysPrize(ctx, uow, userID, prize, redemption.ID)
		if err != nil {
			return nil, err
		}
		if err := uow.RedemptionRepository().MarkDelivered(ctx, redemption.ID, ""); err != nil {
			return nil, fmt.Errorf("failed to mark redemption delivered: %w", err)
		}
		state = models.RedemptionStateDelivered
	}

	if prize.Stock != nil {
		if err := uow.PrizeRepository().DecrementStock(ctx, prizeID); err != nil {
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}
	}

	uow.EventBus().Publish(events.PrizeRedeemedEvent{
		RedemptionID: redemption.ID,
		UserID:       userID,
		PrizeID:      prizeID,
		Category:     prize.Category,
		TicketsSpent: prize.TicketCost,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":        userID,
		"prizeID":       prizeID,
		"ticketsSpent":  prize.TicketCost,
		"magysCredited": magysCredited,
		"state":         state,
	}).Info("Prize redeemed")

	return &models.RedeemResult{
		RedemptionID:  redemption.ID,
		PrizeName:     prize.Name,
		TicketsSpent:  prize.TicketCost,
		State:         state,
		MagysCredited: magysCredited,
		TicketBalance: tickets.Balance - prize.TicketCost,
	}, nil
}

func (s *redemptionService) creditMagysPrize(ctx context.Context, uow UnitOfWork, userID int64, prize *models.Prize, redemptionID int64) (int64, error) {
	magys, err := uow.MagysRepository().GetForUpdate(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to lock magys balance: %w", err)
	}
	if magys == nil {
		return 0, models.ErrMagysAccountNotFound
	}

	amount := *prize.MagysAmount
	newBalance := magys.Balance + amount
	if err := uow.MagysRepository().UpdateBalance(ctx, userID, newBalance); err != nil {
		return 0, fmt.Errorf("failed to credit magys: %w", err)
	}

	ledgerEvent := &models.LedgerEvent{
		UserID:      userID,
		EventType:   models.EventTypePrizeRedemption,
		RelatedID:   &redemptionID,
		RelatedType: relatedType(models.RelatedTypeRedemption),
		Amount:      amount,
		Description: fmt.Sprintf("Redeemed prize: %s", prize.Name),
	}
	if err := uow.LedgerEventRepository().Record(ctx, ledgerEvent); err != nil {
		return 0, fmt.Errorf("failed to record ledger event: %w", err)
	}

	uow.EventBus().Publish(events.MagysChangeEvent{
		UserID:     userID,
		OldBalance: magys.Balance,
		NewBalance: newBalance,
		EventKind:  models.EventTypePrizeRedemption,
		Amount:     amount,
	})

	return amount, nil
}

// GetRedemptions returns the user's redemption history, newest first
func (s *redemptionService) GetRedemptions(ctx context.Context, userID int64) ([]*models.Redemption, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	redemptions, err := uow.RedemptionRepository().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get redemptions: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return redemptions, nil
}
