package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"magbank/events"
	"magbank/models"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, name, email string) (*models.User, error) {
	args := m.Called(ctx, name, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockMagysRepository is a mock implementation of MagysRepository
type MockMagysRepository struct {
	mock.Mock
}

func (m *MockMagysRepository) Get(ctx context.Context, userID int64) (*models.MagysAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MagysAccount), args.Error(1)
}

func (m *MockMagysRepository) GetForUpdate(ctx context.Context, userID int64) (*models.MagysAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MagysAccount), args.Error(1)
}

func (m *MockMagysRepository) UpdateBalance(ctx context.Context, userID int64, newBalance int64) error {
	args := m.Called(ctx, userID, newBalance)
	return args.Error(0)
}

// MockTicketRepository is a mock implementation of TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) Get(ctx context.Context, userID int64) (*models.TicketAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TicketAccount), args.Error(1)
}

func (m *MockTicketRepository) GetForUpdate(ctx context.Context, userID int64) (*models.TicketAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TicketAccount), args.Error(1)
}

func (m *MockTicketRepository) Credit(ctx context.Context, userID int64, amount int64) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockTicketRepository) EnsureExists(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockTicketRepository) Debit(ctx context.Context, userID int64, amount int64) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

// MockLedgerEventRepository is a mock implementation of LedgerEventRepository
type MockLedgerEventRepository struct {
	mock.Mock
}

func (m *MockLedgerEventRepository) Record(ctx context.Context, event *models.LedgerEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockLedgerEventRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.LedgerEvent, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEvent), args.Error(1)
}

// MockGameRepository is a mock implementation of GameRepository
type MockGameRepository struct {
	mock.Mock
}

func (m *MockGameRepository) GetActive(ctx context.Context) ([]*models.Game, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Game), args.Error(1)
}

func (m *MockGameRepository) GetActiveByID(ctx context.Context, gameID int64) (*models.Game, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Game), args.Error(1)
}

func (m *MockGameRepository) GetSymbols(ctx context.Context, gameID int64) ([]models.SlotSymbol, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SlotSymbol), args.Error(1)
}

// MockPlayHistoryRepository is a mock implementation of PlayHistoryRepository
type MockPlayHistoryRepository struct {
	mock.Mock
}

func (m *MockPlayHistoryRepository) Record(ctx context.Context, record *models.PlayRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPlayHistoryRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.PlayRecord, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PlayRecord), args.Error(1)
}

func (m *MockPlayHistoryRepository) GetStats(ctx context.Context, userID int64) (*models.PlayerStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlayerStats), args.Error(1)
}

func (m *MockPlayHistoryRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetActiveRequestByUser(ctx context.Context, userID int64) (*models.CurrentAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CurrentAccount), args.Error(1)
}

func (m *MockAccountRepository) AccountNumberExists(ctx context.Context, accountNumber string) (bool, error) {
	args := m.Called(ctx, accountNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, userID int64, accountNumber string) (*models.CurrentAccount, error) {
	args := m.Called(ctx, userID, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CurrentAccount), args.Error(1)
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, accountID int64) (*models.CurrentAccount, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CurrentAccount), args.Error(1)
}

func (m *MockAccountRepository) Approve(ctx context.Context, accountID int64, notes string) error {
	args := m.Called(ctx, accountID, notes)
	return args.Error(0)
}

func (m *MockAccountRepository) Reject(ctx context.Context, accountID int64, reason, notes string) error {
	args := m.Called(ctx, accountID, reason, notes)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByUser(ctx context.Context, userID int64) ([]*models.CurrentAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CurrentAccount), args.Error(1)
}

func (m *MockAccountRepository) GetByIDAndUser(ctx context.Context, accountID, userID int64) (*models.CurrentAccount, error) {
	args := m.Called(ctx, accountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CurrentAccount), args.Error(1)
}

func (m *MockAccountRepository) ListPending(ctx context.Context) ([]*models.PendingRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PendingRequest), args.Error(1)
}

// MockProductRequestRepository is a mock implementation of ProductRequestRepository
type MockProductRequestRepository struct {
	mock.Mock
}

func (m *MockProductRequestRepository) Create(ctx context.Context, userID int64, productType string, productID int64) error {
	args := m.Called(ctx, userID, productType, productID)
	return args.Error(0)
}

func (m *MockProductRequestRepository) Resolve(ctx context.Context, productType string, productID int64, state models.RequestState, reason, notes string) error {
	args := m.Called(ctx, productType, productID, state, reason, notes)
	return args.Error(0)
}

// MockRewardRuleRepository is a mock implementation of RewardRuleRepository
type MockRewardRuleRepository struct {
	mock.Mock
}

func (m *MockRewardRuleRepository) GetActiveByProductType(ctx context.Context, productType string) (*models.RewardRule, error) {
	args := m.Called(ctx, productType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RewardRule), args.Error(1)
}

// MockPrizeRepository is a mock implementation of PrizeRepository
type MockPrizeRepository struct {
	mock.Mock
}

func (m *MockPrizeRepository) ListActive(ctx context.Context, category models.PrizeCategory) ([]*models.Prize, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Prize), args.Error(1)
}

func (m *MockPrizeRepository) GetForUpdate(ctx context.Context, prizeID int64) (*models.Prize, error) {
	args := m.Called(ctx, prizeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Prize), args.Error(1)
}

func (m *MockPrizeRepository) DecrementStock(ctx context.Context, prizeID int64) error {
	args := m.Called(ctx, prizeID)
	return args.Error(0)
}

// MockRedemptionRepository is a mock implementation of RedemptionRepository
type MockRedemptionRepository struct {
	mock.Mock
}

func (m *MockRedemptionRepository) Create(ctx context.Context, redemption *models.Redemption) error {
	args := m.Called(ctx, redemption)
	return args.Error(0)
}

func (m *MockRedemptionRepository) MarkDelivered(ctx context.Context, redemptionID int64, trackingCode string) error {
	args := m.Called(ctx, redemptionID, trackingCode)
	return args.Error(0)
}

func (m *MockRedemptionRepository) GetByUser(ctx context.Context, userID int64) ([]*models.Redemption, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Redemption), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// recordingPublisher collects published events without expectations, for
// tests that only care about transaction flow
type recordingPublisher struct {
	published []events.Event
}

func (p *recordingPublisher) Publish(event events.Event) {
	p.published = append(p.published, event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are
// injected with SetRepositories; unset repositories panic on access, which
// surfaces an unexpected dependency in the service under test.
type MockUnitOfWork struct {
	mock.Mock

	userRepo           UserRepository
	magysRepo          MagysRepository
	ticketRepo         TicketRepository
	ledgerRepo         LedgerEventRepository
	gameRepo           GameRepository
	playHistoryRepo    PlayHistoryRepository
	accountRepo        AccountRepository
	productRequestRepo ProductRequestRepository
	rewardRuleRepo     RewardRuleRepository
	prizeRepo          PrizeRepository
	redemptionRepo     RedemptionRepository
	eventBus           EventPublisher
}

// SetRepositories injects the repository mocks a test cares about. Nil
// entries are fine as long as the service never touches them.
func (m *MockUnitOfWork) SetRepositories(
	userRepo UserRepository,
	magysRepo MagysRepository,
	ticketRepo TicketRepository,
	ledgerRepo LedgerEventRepository,
	gameRepo GameRepository,
	playHistoryRepo PlayHistoryRepository,
	accountRepo AccountRepository,
	productRequestRepo ProductRequestRepository,
	rewardRuleRepo RewardRuleRepository,
	prizeRepo PrizeRepository,
	redemptionRepo RedemptionRepository,
) {
	m.userRepo = userRepo
	m.magysRepo = magysRepo
	m.ticketRepo = ticketRepo
	m.ledgerRepo = ledgerRepo
	m.gameRepo = gameRepo
	m.playHistoryRepo = playHistoryRepo
	m.accountRepo = accountRepo
	m.productRequestRepo = productRequestRepo
	m.rewardRuleRepo = rewardRuleRepo
	m.prizeRepo = prizeRepo
	m.redemptionRepo = redemptionRepo
}

// SetEventBus injects an event publisher; defaults to a silent recorder
func (m *MockUnitOfWork) SetEventBus(bus EventPublisher) {
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	if m.userRepo == nil {
		panic("UserRepository not set on MockUnitOfWork")
	}
	return m.userRepo
}

func (m *MockUnitOfWork) MagysRepository() MagysRepository {
	if m.magysRepo == nil {
		panic("MagysRepository not set on MockUnitOfWork")
	}
	return m.magysRepo
}

func (m *MockUnitOfWork) TicketRepository() TicketRepository {
	if m.ticketRepo == nil {
		panic("TicketRepository not set on MockUnitOfWork")
	}
	return m.ticketRepo
}

func (m *MockUnitOfWork) LedgerEventRepository() LedgerEventRepository {
	if m.ledgerRepo == nil {
		panic("LedgerEventRepository not set on MockUnitOfWork")
	}
	return m.ledgerRepo
}

func (m *MockUnitOfWork) GameRepository() GameRepository {
	if m.gameRepo == nil {
		panic("GameRepository not set on MockUnitOfWork")
	}
	return m.gameRepo
}

func (m *MockUnitOfWork) PlayHistoryRepository() PlayHistoryRepository {
	if m.playHistoryRepo == nil {
		panic("PlayHistoryRepository not set on MockUnitOfWork")
	}
	return m.playHistoryRepo
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	if m.accountRepo == nil {
		panic("AccountRepository not set on MockUnitOfWork")
	}
	return m.accountRepo
}

func (m *MockUnitOfWork) ProductRequestRepository() ProductRequestRepository {
	if m.productRequestRepo == nil {
		panic("ProductRequestRepository not set on MockUnitOfWork")
	}
	return m.productRequestRepo
}

func (m *MockUnitOfWork) RewardRuleRepository() RewardRuleRepository {
	if m.rewardRuleRepo == nil {
		panic("RewardRuleRepository not set on MockUnitOfWork")
	}
	return m.rewardRuleRepo
}

func (m *MockUnitOfWork) PrizeRepository() PrizeRepository {
	if m.prizeRepo == nil {
		panic("PrizeRepository not set on MockUnitOfWork")
	}
	return m.prizeRepo
}

func (m *MockUnitOfWork) RedemptionRepository() RedemptionRepository {
	if m.redemptionRepo == nil {
		panic("RedemptionRepository not set on MockUnitOfWork")
	}
	return m.redemptionRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		m.eventBus = &recordingPublisher{}
	}
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
