package service

import (
	"context"
	"testing"
	"time"

	"wingo/config"
	"wingo/events"
	"wingo/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// stubRoundService hands back a fixed current round
type stubRoundService struct {
	round *models.Round
	err   error
}

func (s *stubRoundService) GetCurrentRound(ctx context.Context) (*models.Round, error) {
	return s.round, s.err
}

func (s *stubRoundService) GetRoundByIssueNumber(ctx context.Context, issueNumber string) (*models.Round, error) {
	return s.round, s.err
}

func (s *stubRoundService) GetRecentRounds(ctx context.Context, limit int) ([]*models.Round, error) {
	return nil, s.err
}

func testConfig() *config.Config {
	return &config.Config{
		RoundDuration:    60 * time.Second,
		LockWindow:       10 * time.Second,
		MinBetAmount:     decimal.NewFromFloat(1.00),
		MaxBetAmount:     decimal.NewFromFloat(1000.00),
		NumberMultiplier: decimal.NewFromInt(9),
		ColorMultiplier:  decimal.NewFromInt(2),
		SizeMultiplier:   decimal.NewFromInt(2),
		InitialBalance:   decimal.NewFromFloat(1000.00),
		Environment:      "test",
	}
}

func decimalEq(expected string) interface{} {
	want := decimal.RequireFromString(expected)
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(want)
	})
}

func openRound(now time.Time) *models.Round {
	return &models.Round{
		ID:          7,
		IssueNumber: "20260901001",
		State:       models.RoundStateActive,
		StartTime:   now,
		EndTime:     now.Add(60 * time.Second),
	}
}

func TestWagerService_PlaceWager_Success(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	round := openRound(now)

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockLedgerRepo := new(MockLedgerRepository)
	mockRoundRepo := new(MockRoundRepository)
	mockWagerRepo := new(MockWagerRepository)
	mockUoW.SetRepositories(mockAccountRepo, mockLedgerRepo, mockRoundRepo, mockWagerRepo)

	svc := NewWagerService(mockFactory, &stubRoundService{round: round}, &fixedClock{now: now}, testConfig())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRoundRepo.On("GetByIssueNumber", ctx, "20260901001").Return(round, nil)
	mockWagerRepo.On("Exists", ctx, int64(123), int64(7), models.WagerKindNumber, "5").Return(false, nil)

	account := &models.Account{ID: 123, Balance: decimal.RequireFromString("1000.00")}
	mockAccountRepo.On("GetByIDForUpdate", ctx, int64(123)).Return(account, nil)
	mockAccountRepo.On("ApplyBalance", ctx, int64(123), decimalEq("900.00"), decimalEq("100.00"), decimalEq("0")).Return(nil)

	mockLedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.AccountID == 123 &&
			e.Kind == models.EntryKindBet &&
			e.Amount.Equal(decimal.RequireFromString("100.00")) &&
			e.BalanceBefore.Equal(decimal.RequireFromString("1000.00")) &&
			e.BalanceAfter.Equal(decimal.RequireFromString("900.00"))
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.LedgerEntry).ID = 55
	})

	mockWagerRepo.On("Create", ctx, mock.MatchedBy(func(w *models.Wager) bool {
		return w.AccountID == 123 &&
			w.RoundID == 7 &&
			w.Kind == models.WagerKindNumber &&
			w.Value == "5" &&
			w.Amount.Equal(decimal.RequireFromString("100.00")) &&
			w.Multiplier.Equal(decimal.NewFromInt(9)) &&
			w.PotentialPayout.Equal(decimal.RequireFromString("900.00"))
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Wager).ID = 31
	})

	receipt, err := svc.PlaceWager(ctx, 123, models.WagerKindNumber, "5", decimal.RequireFromString("100.00"), "20260901001")

	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, int64(31), receipt.Wager.ID)
	assert.True(t, receipt.NewBalance.Equal(decimal.RequireFromString("900.00")))

	// Both the ledger and the wager event land on the transactional bus
	published := mockUoW.PublishedEvents()
	require.Len(t, published, 2)
	assert.Equal(t, events.EventTypeBalanceChange, published[0].Type())
	assert.Equal(t, events.EventTypeWagerPlaced, published[1].Type())

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockAccountRepo.AssertExpectations(t)
	mockLedgerRepo.AssertExpectations(t)
	mockWagerRepo.AssertExpectations(t)
}

func TestWagerService_PlaceWager_InvalidAmount(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	mockFactory := new(MockUnitOfWorkFactory)
	svc := NewWagerService(mockFactory, &stubRoundService{round: openRound(now)}, &fixedClock{now: now}, testConfig())

	cases := []struct {
		name   string
		amount string
	}{
		{"zero", "0"},
		{"negative", "-5.00"},
		{"below minimum", "0.50"},
		{"above maximum", "1000.01"},
		{"fractional cents", "10.005"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.PlaceWager(ctx, 123, models.WagerKindNumber, "5", decimal.RequireFromString(tc.amount), "20260901001")
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}

	// Rejected before any transaction begins
	mockFactory.AssertNotCalled(t, "Create")
}

func TestWagerService_PlaceWager_InvalidWager(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	mockFactory := new(MockUnitOfWorkFactory)
	svc := NewWagerService(mockFactory, &stubRoundService{round: openRound(now)}, &fixedClock{now: now}, testConfig())

	cases := []struct {
		name  string
		kind  models.WagerKind
		value string
	}{
		{"digit out of range", models.WagerKindNumber, "10"},
		{"non-numeric digit", models.WagerKindNumber, "x"},
		{"unknown color", models.WagerKindColor, "blue"},
		{"unknown size", models.WagerKindSize, "medium"},
		{"unknown kind", models.WagerKind("parity"), "even"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.PlaceWager(ctx, 123, tc.kind, tc.value, decimal.RequireFromString("10.00"), "20260901001")
			assert.ErrorIs(t, err, ErrInvalidWager)
		})
	}

	mockFactory.AssertNotCalled(t, "Create")
}

func TestWagerService_PlaceWager_RoundClosed(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	round := openRound(now)

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockLedgerRepo := new(MockLedgerRepository)
	mockRoundRepo := new(MockRoundRepository)
	mockWagerRepo := new(MockWagerRepository)
	mockUoW.SetRepositories(mockAccountRepo, mockLedgerRepo, mockRoundRepo, mockWagerRepo)

	// The round locked between the current-round read and the wager transaction
	lockedRound := *round
	lockedRound.State = models.RoundStateLocked

	svc := NewWagerService(mockFactory, &stubRoundService{round: round}, &fixedClock{now: now}, testConfig())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockRoundRepo.On("GetByIssueNumber", ctx, "20260901001").Return(&lockedRound, nil)

	_, err := svc.PlaceWager(ctx, 123, models.WagerKindColor, "red", decimal.RequireFromString("10.00"), "20260901001")

	assert.ErrorIs(t, err, ErrRoundClosed)
	mockAccountRepo.AssertNotCalled(t, "GetByIDForUpdate", mock.Anything, mock.Anything)
}

func TestWagerService_PlaceWager_InsideLockWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	round := openRound(now)

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockRoundRepo := new(MockRoundRepository)
	mockUoW.SetRepositories(new(MockAccountRepository), new(MockLedgerRepository), mockRoundRepo, new(MockWagerRepository))

	// Clock sits 5 seconds before the end, inside the 10 second lock window
	late := &fixedClock{now: round.EndTime.Add(-5 * time.Second)}
	svc := NewWagerService(mockFactory, &stubRoundService{round: round}, late, testConfig())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockRoundRepo.On("GetByIssueNumber", ctx, "20260901001").Return(round, nil)

	_, err := svc.PlaceWager(ctx, 123, models.WagerKindSize, "big", decimal.RequireFromString("10.00"), "20260901001")

	assert.ErrorIs(t, err, ErrRoundClosed)
}

func TestWagerService_PlaceWager_Duplicate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	round := openRound(now)

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockRoundRepo := new(MockRoundRepository)
	mockWagerRepo := new(MockWagerRepository)
	mockUoW.SetRepositories(mockAccountRepo, new(MockLedgerRepository), mockRoundRepo, mockWagerRepo)

	svc := NewWagerService(mockFactory, &stubRoundService{round: round}, &fixedClock{now: now}, testConfig())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockRoundRepo.On("GetByIssueNumber", ctx, "20260901001").Return(round, nil)
	mockWagerRepo.On("Exists", ctx, int64(123), int64(7), models.WagerKindNumber, "5").Return(true, nil)

	_, err := svc.PlaceWager(ctx, 123, models.WagerKindNumber, "5", decimal.RequireFromString("10.00"), "20260901001")

	assert.ErrorIs(t, err, ErrDuplicateWager)
	// No balance touched for a duplicate
	mockAccountRepo.AssertNotCalled(t, "GetByIDForUpdate", mock.Anything, mock.Anything)
}

func TestWagerService_PlaceWager_DuplicateRace(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	round := openRound(now)

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockLedgerRepo := new(MockLedgerRepository)
	mockRoundRepo := new(MockRoundRepository)
	mockWagerRepo := new(MockWagerRepository)
	mockUoW.SetRepositories(mockAccountRepo, mockLedgerRepo, mockRoundRepo, mockWagerRepo)

	svc := NewWagerService(mockFactory, &stubRoundService{round: round}, &fixedClock{now: now}, testConfig())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockRoundRepo.On("GetByIssueNumber", ctx, "20260901001").Return(round, nil)
	mockWagerRepo.On("Exists", ctx, int64(123), int64(7), models.WagerKindNumber, "5").Return(false, nil)

	account := &models.Account{ID: 123, Balance: decimal.RequireFromString("1000.00")}
	mockAccountRepo.On("GetByIDForUpdate", ctx, int64(123)).Return(account, nil)
	mockAccountRepo.On("ApplyBalance", ctx, int64(123), mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockLedgerRepo.On("Record", ctx, mock.Anything).Return(nil)

	// A concurrent request slipped the identical wager in first
	mockWagerRepo.On("Create", ctx, mock.Anything).Return(&pgconn.PgError{Code: "23505"})

	_, err := svc.PlaceWager(ctx, 123, models.WagerKindNumber, "5", decimal.RequireFromString("10.00"), "20260901001")

	assert.ErrorIs(t, err, ErrDuplicateWager)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestWagerService_PlaceWager_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	round := openRound(now)

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockRoundRepo := new(MockRoundRepository)
	mockWagerRepo := new(MockWagerRepository)
	mockUoW.SetRepositories(mockAccountRepo, new(MockLedgerRepository), mockRoundRepo, mockWagerRepo)

	svc := NewWagerService(mockFactory, &stubRoundService{round: round}, &fixedClock{now: now}, testConfig())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockRoundRepo.On("GetByIssueNumber", ctx, "20260901001").Return(round, nil)
	mockWagerRepo.On("Exists", ctx, int64(123), int64(7), models.WagerKindNumber, "5").Return(false, nil)

	account := &models.Account{ID: 123, Balance: decimal.RequireFromString("50.00")}
	mockAccountRepo.On("GetByIDForUpdate", ctx, int64(123)).Return(account, nil)

	_, err := svc.PlaceWager(ctx, 123, models.WagerKindNumber, "5", decimal.RequireFromString("100.00"), "20260901001")

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	// The failed debit leaves no trace
	mockAccountRepo.AssertNotCalled(t, "ApplyBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockWagerRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockUoW.AssertNotCalled(t, "Commit")
	assert.Empty(t, mockUoW.PublishedEvents())
}

func TestWagerService_PlaceWager_AccountNotFound(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	round := openRound(now)

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockRoundRepo := new(MockRoundRepository)
	mockWagerRepo := new(MockWagerRepository)
	mockUoW.SetRepositories(mockAccountRepo, new(MockLedgerRepository), mockRoundRepo, mockWagerRepo)

	svc := NewWagerService(mockFactory, &stubRoundService{round: round}, &fixedClock{now: now}, testConfig())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockRoundRepo.On("GetByIssueNumber", ctx, "20260901001").Return(round, nil)
	mockWagerRepo.On("Exists", ctx, int64(999), int64(7), models.WagerKindNumber, "5").Return(false, nil)
	mockAccountRepo.On("GetByIDForUpdate", ctx, int64(999)).Return(nil, nil)

	_, err := svc.PlaceWager(ctx, 999, models.WagerKindNumber, "5", decimal.RequireFromString("100.00"), "20260901001")

	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestWagerService_PlaceWager_StaleRound(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 1, 0, 0, time.UTC)

	// The caller targets round 001, but it settled and 002 is current
	completed := &models.Round{
		ID:          7,
		IssueNumber: "20260901001",
		State:       models.RoundStateCompleted,
		StartTime:   now.Add(-2 * time.Minute),
		EndTime:     now.Add(-time.Minute),
	}
	current := &models.Round{
		ID:          8,
		IssueNumber: "20260901002",
		State:       models.RoundStateActive,
		StartTime:   now,
		EndTime:     now.Add(60 * time.Second),
	}

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockRoundRepo := new(MockRoundRepository)
	mockWagerRepo := new(MockWagerRepository)
	mockUoW.SetRepositories(mockAccountRepo, new(MockLedgerRepository), mockRoundRepo, mockWagerRepo)

	svc := NewWagerService(mockFactory, &stubRoundService{round: current}, &fixedClock{now: now}, testConfig())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockRoundRepo.On("GetByIssueNumber", ctx, "20260901001").Return(completed, nil)

	_, err := svc.PlaceWager(ctx, 123, models.WagerKindNumber, "5", decimal.RequireFromString("10.00"), "20260901001")

	// The bet must not slide onto round 002
	assert.ErrorIs(t, err, ErrRoundClosed)
	mockWagerRepo.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockAccountRepo.AssertNotCalled(t, "GetByIDForUpdate", mock.Anything, mock.Anything)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestWagerService_PlaceWager_UnknownRound(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	round := openRound(now)

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockRoundRepo := new(MockRoundRepository)
	mockUoW.SetRepositories(new(MockAccountRepository), new(MockLedgerRepository), mockRoundRepo, new(MockWagerRepository))

	svc := NewWagerService(mockFactory, &stubRoundService{round: round}, &fixedClock{now: now}, testConfig())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockRoundRepo.On("GetByIssueNumber", ctx, "20990101001").Return(nil, nil)

	_, err := svc.PlaceWager(ctx, 123, models.WagerKindNumber, "5", decimal.RequireFromString("10.00"), "20990101001")

	assert.ErrorIs(t, err, ErrRoundNotFound)
}

func TestWagerService_PlaceWager_MissingIssueNumber(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	mockFactory := new(MockUnitOfWorkFactory)
	svc := NewWagerService(mockFactory, &stubRoundService{round: openRound(now)}, &fixedClock{now: now}, testConfig())

	_, err := svc.PlaceWager(ctx, 123, models.WagerKindNumber, "5", decimal.RequireFromString("10.00"), "")

	assert.ErrorIs(t, err, ErrInvalidWager)
	mockFactory.AssertNotCalled(t, "Create")
}
