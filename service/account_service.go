package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"magbank/config"
	"magbank/events"
	"magbank/models"
)

type accountService struct {
	uowFactory UnitOfWorkFactory
}

// NewAccountService creates a new account service
func NewAccountService(uowFactory UnitOfWorkFactory) AccountService {
	return &accountService{
		uowFactory: uowFactory,
	}
}

// RequestAccount creates a pending current account for the user. A user can
// hold at most one pending-or-approved account; a duplicate request fails on
// the pre-insert check, and a concurrent one on the database constraint.
func (s *accountService) RequestAccount(ctx context.Context, userID int64) (*models.RequestAccountResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	existing, err := uow.AccountRepository().GetActiveRequestByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing request: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: account %s is %s", models.ErrDuplicateRequest, existing.AccountNumber, existing.State)
	}

	accountNumber, err := s.generateAccountNumber(ctx, uow)
	if err != nil {
		return nil, err
	}

	account, err := uow.AccountRepository().Create(ctx, userID, accountNumber)
	if err != nil {
		// A concurrent request can slip past the pre-insert check; the
		// partial unique index catches it at insert time
		if errors.Is(err, models.ErrDuplicateRequest) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if err := uow.ProductRequestRepository().Create(ctx, userID, models.ProductTypeCurrentAccount, account.ID); err != nil {
		return nil, fmt.Errorf("failed to create product request: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":        userID,
		"accountNumber": accountNumber,
	}).Info("Account request created")

	return &models.RequestAccountResult{
		AccountID:     account.ID,
		AccountNumber: account.AccountNumber,
		State:         account.State,
	}, nil
}

// generateAccountNumber produces a unique account number with a bounded
// number of collision retries. The timestamp component makes collisions
// effectively impossible; the retry loop exists so a clash surfaces as a
// clean error instead of a constraint violation.
func (s *accountService) generateAccountNumber(ctx context.Context, uow UnitOfWork) (string, error) {
	cfg := config.Get()

	for attempt := 0; attempt < cfg.AccountNumberMaxRetries; attempt++ {
		candidate := fmt.Sprintf("%s%d%s",
			cfg.AccountNumberPrefix,
			time.Now().UnixMilli(),
			uuid.NewString()[:6])

		taken, err := uow.AccountRepository().AccountNumberExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check account number: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", models.ErrAccountNumberGeneration
}

// ResolveRequest approves or rejects a pending request. The request row is
// locked for the duration, so two admins resolving the same request
// serialize and the loser gets a not-pending error. The one-time Magys
// reward is issued inside the same transaction on approval.
func (s *accountService) ResolveRequest(ctx context.Context, accountID int64, action models.ResolveAction, reason, notes string) (*models.ResolveRequestResult, error) {
	if action != models.ResolveActionApprove && action != models.ResolveActionReject {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidAction, action)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByIDForUpdate(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	if account == nil {
		return nil, models.ErrRequestNotFound
	}
	if account.State != models.RequestStatePending {
		return nil, fmt.Errorf("%w: account is %s", models.ErrRequestNotPending, account.State)
	}

	var rewardIssued int64
	var newState models.RequestState

	if action == models.ResolveActionApprove {
		newState = models.RequestStateApproved
		if err := uow.AccountRepository().Approve(ctx, accountID, notes); err != nil {
			return nil, fmt.Errorf("failed to approve account: %w", err)
		}
		if err := uow.ProductRequestRepository().Resolve(ctx, models.ProductTypeCurrentAccount, accountID, newState, "", notes); err != nil {
			return nil, fmt.Errorf("failed to resolve product request: %w", err)
		}

		rewardIssued, err = s.issueReward(ctx, uow, account)
		if err != nil {
			return nil, err
		}
	} else {
		newState = models.RequestStateRejected
		if err := uow.AccountRepository().Reject(ctx, accountID, reason, notes); err != nil {
			return nil, fmt.Errorf("failed to reject account: %w", err)
		}
		if err := uow.ProductRequestRepository().Resolve(ctx, models.ProductTypeCurrentAccount, accountID, newState, reason, notes); err != nil {
			return nil, fmt.Errorf("failed to resolve product request: %w", err)
		}
	}

	uow.EventBus().Publish(events.RequestResolvedEvent{
		UserID:       account.UserID,
		AccountID:    accountID,
		State:        newState,
		RewardIssued: rewardIssued,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"accountID":    accountID,
		"userID":       account.UserID,
		"state":        newState,
		"rewardIssued": rewardIssued,
	}).Info("Account request resolved")

	return &models.ResolveRequestResult{
		AccountID:     accountID,
		AccountNumber: account.AccountNumber,
		State:         newState,
		RewardIssued:  rewardIssued,
	}, nil
}

// issueReward credits the configured activation reward. A missing or
// inactive rule means no reward is configured, which is a no-op.
func (s *accountService) issueReward(ctx context.Context, uow UnitOfWork, account *models.CurrentAccount) (int64, error) {
	rule, err := uow.RewardRuleRepository().GetActiveByProductType(ctx, models.ProductTypeCurrentAccount)
	if err != nil {
		return 0, fmt.Errorf("failed to get reward rule: %w", err)
	}
	if rule == nil || rule.MagysAmount <= 0 {
		return 0, nil
	}

	magys, err := uow.MagysRepository().GetForUpdate(ctx, account.UserID)
	if err != nil {
		return 0, fmt.Errorf("failed to lock magys balance: %w", err)
	}
	if magys == nil {
		return 0, models.ErrMagysAccountNotFound
	}

	newBalance := magys.Balance + rule.MagysAmount
	if err := uow.MagysRepository().UpdateBalance(ctx, account.UserID, newBalance); err != nil {
		return 0, fmt.Errorf("failed to credit reward: %w", err)
	}

	ledgerEvent := &models.LedgerEvent{
		UserID:      account.UserID,
		EventType:   models.EventTypeProductActivation,
		RelatedID:   &account.ID,
		RelatedType: relatedType(models.RelatedTypeCurrentAccount),
		Amount:      rule.MagysAmount,
		Description: fmt.Sprintf("Activation reward for account %s", account.AccountNumber),
	}
	if err := uow.LedgerEventRepository().Record(ctx, ledgerEvent); err != nil {
		return 0, fmt.Errorf("failed to record ledger event: %w", err)
	}

	uow.EventBus().Publish(events.MagysChangeEvent{
		UserID:     account.UserID,
		OldBalance: magys.Balance,
		NewBalance: newBalance,
		EventKind:  models.EventTypeProductActivation,
		Amount:     rule.MagysAmount,
	})

	return rule.MagysAmount, nil
}

// GetAccounts returns the user's accounts, newest first
func (s *accountService) GetAccounts(ctx context.Context, userID int64) ([]*models.CurrentAccount, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	accounts, err := uow.AccountRepository().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return accounts, nil
}

// GetAccountDetail returns one account owned by the user
func (s *accountService) GetAccountDetail(ctx context.Context, accountID, userID int64) (*models.CurrentAccount, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByIDAndUser(ctx, accountID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, models.ErrAccountNotFound
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return account, nil
}

// ListPendingRequests returns the admin approval queue, oldest first
func (s *accountService) ListPendingRequests(ctx context.Context) ([]*models.PendingRequest, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	pending, err := uow.AccountRepository().ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return pending, nil
}
