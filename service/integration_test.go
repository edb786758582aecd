package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magbank/config"
	"magbank/events"
	"magbank/models"
	"magbank/repository"
	"magbank/repository/testutil"
	"magbank/service"
)

func setupIntegration(t *testing.T) (*testutil.TestDatabase, service.UnitOfWorkFactory) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	config.SetTestConfig(config.NewTestConfig())
	t.Cleanup(config.ResetConfig)

	testDB := testutil.SetupTestDatabase(t)
	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	return testDB, uowFactory
}

func createFundedUser(t *testing.T, testDB *testutil.TestDatabase, name string, magys, tickets int64) *models.User {
	ctx := context.Background()
	userRepo := repository.NewUserRepository(testDB.DB)
	user, err := userRepo.Create(ctx, name, name+"@example.com")
	require.NoError(t, err)

	err = testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE magys_accounts SET balance = $1 WHERE user_id = $2`, magys, user.ID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `UPDATE ticket_accounts SET balance = $1 WHERE user_id = $2`, tickets, user.ID)
		return err
	})
	require.NoError(t, err)

	return user
}

func seededGameID(t *testing.T, testDB *testutil.TestDatabase) int64 {
	var gameID int64
	err := testDB.DB.QueryRow(context.Background(),
		`SELECT id FROM games WHERE name = 'Tragamonedas Clasico'`).Scan(&gameID)
	require.NoError(t, err)
	return gameID
}

func TestWagerFlow_Integration(t *testing.T) {
	testDB, uowFactory := setupIntegration(t)
	ctx := context.Background()

	user := createFundedUser(t, testDB, "player", 1000, 0)
	gameID := seededGameID(t, testDB)

	// Force every reel onto the same symbol band
	wagerService := service.NewWagerService(uowFactory, service.NewSlotMachineWithRand(func() float64 { return 0.1 }))

	result, err := wagerService.Play(ctx, user.ID, gameID, 100, "203.0.113.9")
	require.NoError(t, err)

	assert.True(t, result.Won)
	assert.Equal(t, int64(900), result.Balances.Magys)
	assert.Equal(t, 100*result.Multiplier, result.TicketsWon)
	assert.Equal(t, result.TicketsWon, result.Balances.Tickets)

	// Persisted state matches the returned snapshot
	magysRepo := repository.NewMagysRepository(testDB.DB)
	magys, err := magysRepo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(900), magys.Balance)

	ticketRepo := repository.NewTicketRepository(testDB.DB)
	tickets, err := ticketRepo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, result.TicketsWon, tickets.Balance)
	assert.Equal(t, result.TicketsWon, tickets.TotalWon)

	// Exactly one audit row carrying the signed bet
	ledgerRepo := repository.NewLedgerEventRepository(testDB.DB)
	ledger, err := ledgerRepo.GetByUser(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, models.EventTypeWagerSpend, ledger[0].EventType)
	assert.Equal(t, int64(-100), ledger[0].Amount)

	playRepo := repository.NewPlayHistoryRepository(testDB.DB)
	history, err := playRepo.GetByUser(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, int64(100), history[0].Bet)
	assert.Len(t, history[0].Reels, 3)
}

func TestWagerFlow_InsufficientFundsLeavesNoTrace_Integration(t *testing.T) {
	testDB, uowFactory := setupIntegration(t)
	ctx := context.Background()

	user := createFundedUser(t, testDB, "poorplayer", 5, 0)
	gameID := seededGameID(t, testDB)

	wagerService := service.NewWagerService(uowFactory, service.NewSlotMachine())

	_, err := wagerService.Play(ctx, user.ID, gameID, 10, "")
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)

	// Balance untouched, no history, no ledger rows
	magysRepo := repository.NewMagysRepository(testDB.DB)
	magys, err := magysRepo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), magys.Balance)

	ledgerRepo := repository.NewLedgerEventRepository(testDB.DB)
	ledger, err := ledgerRepo.GetByUser(ctx, user.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, ledger)
}

func TestLedgerConservation_Integration(t *testing.T) {
	testDB, uowFactory := setupIntegration(t)
	ctx := context.Background()

	const initialBalance = int64(2000)
	user := createFundedUser(t, testDB, "auditee", initialBalance, 0)
	gameID := seededGameID(t, testDB)

	wagerService := service.NewWagerService(uowFactory, service.NewSlotMachine())
	accountService := service.NewAccountService(uowFactory)

	for i := 0; i < 10; i++ {
		_, err := wagerService.Play(ctx, user.ID, gameID, 50, "")
		require.NoError(t, err)
	}

	// Approval reward adds a credit event on top of the wager debits
	request, err := accountService.RequestAccount(ctx, user.ID)
	require.NoError(t, err)
	_, err = accountService.ResolveRequest(ctx, request.AccountID, models.ResolveActionApprove, "", "")
	require.NoError(t, err)

	// The signed event sum accounts for every Magys moved since funding
	var eventSum int64
	err = testDB.DB.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM magys_ledger_events WHERE user_id = $1`, user.ID).Scan(&eventSum)
	require.NoError(t, err)

	magysRepo := repository.NewMagysRepository(testDB.DB)
	magys, err := magysRepo.Get(ctx, user.ID)
	require.NoError(t, err)

	assert.Equal(t, initialBalance+eventSum, magys.Balance)
}

func TestAccountApprovalReward_Integration(t *testing.T) {
	testDB, uowFactory := setupIntegration(t)
	ctx := context.Background()

	user := createFundedUser(t, testDB, "requester", 0, 0)
	accountService := service.NewAccountService(uowFactory)

	request, err := accountService.RequestAccount(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatePending, request.State)

	// A second request while one is open is refused
	_, err = accountService.RequestAccount(ctx, user.ID)
	assert.ErrorIs(t, err, models.ErrDuplicateRequest)

	result, err := accountService.ResolveRequest(ctx, request.AccountID, models.ResolveActionApprove, "", "looks good")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStateApproved, result.State)
	assert.Equal(t, int64(500), result.RewardIssued)

	magysRepo := repository.NewMagysRepository(testDB.DB)
	magys, err := magysRepo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), magys.Balance)

	// Resolving again hits the terminal-state guard
	_, err = accountService.ResolveRequest(ctx, request.AccountID, models.ResolveActionApprove, "", "")
	assert.ErrorIs(t, err, models.ErrRequestNotPending)
}

func TestAccountRequest_ConcurrentDuplicateRace_Integration(t *testing.T) {
	testDB, uowFactory := setupIntegration(t)
	ctx := context.Background()

	user := createFundedUser(t, testDB, "eager", 0, 0)
	accountService := service.NewAccountService(uowFactory)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, errs[slot] = accountService.RequestAccount(ctx, user.ID)
		}(i)
	}
	wg.Wait()

	// Both requests pass the pre-insert check; the unique index lets only
	// one insert commit
	var succeeded, refused int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		default:
			assert.ErrorIs(t, err, models.ErrDuplicateRequest)
			refused++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, refused)

	var open int
	err := testDB.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM current_accounts
		 WHERE user_id = $1 AND state IN ('pending', 'approved')`, user.ID).Scan(&open)
	require.NoError(t, err)
	assert.Equal(t, 1, open)
}

func TestRedemption_LastUnitRace_Integration(t *testing.T) {
	testDB, uowFactory := setupIntegration(t)
	ctx := context.Background()

	buyer1 := createFundedUser(t, testDB, "buyer1", 0, 1000)
	buyer2 := createFundedUser(t, testDB, "buyer2", 0, 1000)

	var prizeID int64
	err := testDB.DB.QueryRow(ctx,
		`INSERT INTO prizes (name, ticket_cost, stock, category)
		 VALUES ('Ultima Mochila', 800, 1, 'physical')
		 RETURNING id`).Scan(&prizeID)
	require.NoError(t, err)

	redemptionService := service.NewRedemptionService(uowFactory)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, userID := range []int64{buyer1.ID, buyer2.ID} {
		wg.Add(1)
		go func(slot int, uid int64) {
			defer wg.Done()
			_, errs[slot] = redemptionService.Redeem(ctx, uid, prizeID, "Calle Falsa 123")
		}(i, userID)
	}
	wg.Wait()

	// Exactly one buyer gets the unit; the loser sees an out-of-stock error
	var succeeded, outOfStock int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		default:
			assert.ErrorIs(t, err, models.ErrOutOfStock)
			outOfStock++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, outOfStock)

	var stock int
	err = testDB.DB.QueryRow(ctx, `SELECT stock FROM prizes WHERE id = $1`, prizeID).Scan(&stock)
	require.NoError(t, err)
	assert.Zero(t, stock)

	// Only the winner paid
	var totalSpent int64
	err = testDB.DB.QueryRow(ctx,
		`SELECT COALESCE(SUM(tickets_spent), 0) FROM redemptions WHERE prize_id = $1`, prizeID).Scan(&totalSpent)
	require.NoError(t, err)
	assert.Equal(t, int64(800), totalSpent)
}

func TestRedemption_MagysPrize_Integration(t *testing.T) {
	testDB, uowFactory := setupIntegration(t)
	ctx := context.Background()

	user := createFundedUser(t, testDB, "shopper", 100, 500)

	var prizeID int64
	err := testDB.DB.QueryRow(ctx,
		`INSERT INTO prizes (name, ticket_cost, category, magys_amount)
		 VALUES ('250 Magys', 400, 'magys', 250)
		 RETURNING id`).Scan(&prizeID)
	require.NoError(t, err)

	redemptionService := service.NewRedemptionService(uowFactory)

	result, err := redemptionService.Redeem(ctx, user.ID, prizeID, "")
	require.NoError(t, err)
	assert.Equal(t, models.RedemptionStateDelivered, result.State)
	assert.Equal(t, int64(250), result.MagysCredited)
	assert.Equal(t, int64(100), result.TicketBalance)

	magysRepo := repository.NewMagysRepository(testDB.DB)
	magys, err := magysRepo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(350), magys.Balance)

	// The credit is audited as a prize redemption event
	ledgerRepo := repository.NewLedgerEventRepository(testDB.DB)
	ledger, err := ledgerRepo.GetByUser(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, models.EventTypePrizeRedemption, ledger[0].EventType)
	assert.Equal(t, int64(250), ledger[0].Amount)

	ticketRepo := repository.NewTicketRepository(testDB.DB)
	tickets, err := ticketRepo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), tickets.Balance)
	assert.Equal(t, int64(400), tickets.TotalRedeemed)
}

func TestConcurrentPlays_SerializeOnBalance_Integration(t *testing.T) {
	testDB, uowFactory := setupIntegration(t)
	ctx := context.Background()

	user := createFundedUser(t, testDB, "racer", 100, 0)
	gameID := seededGameID(t, testDB)

	wagerService := service.NewWagerService(uowFactory, service.NewSlotMachine())

	// Ten concurrent 50-Magys bets against a 100-Magys balance: the row
	// lock admits exactly two
	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, errs[slot] = wagerService.Play(ctx, user.ID, gameID, 50, "")
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, models.ErrInsufficientFunds)
		}
	}
	assert.Equal(t, 2, succeeded)

	magysRepo := repository.NewMagysRepository(testDB.DB)
	magys, err := magysRepo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), magys.Balance)
}
