package domain

import (
	"context"
	"database/sql"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wanderquest-labs/backend/internal/domain/ledger"
	"github.com/wanderquest-labs/backend/internal/entity"
	"github.com/wanderquest-labs/backend/internal/model"
	"github.com/wanderquest-labs/backend/internal/repository"
	"github.com/wanderquest-labs/backend/pkg/errorx"
	"github.com/wanderquest-labs/backend/pkg/testutil"
	"github.com/wanderquest-labs/backend/pkg/xcontext"
)

type settlementTest struct {
	ctx context.Context

	gateway *testutil.MockGateway
	indexer *testutil.MockIndexer
	redis   *testutil.MockRedisClient

	claimRepo      repository.RewardClaimRepository
	mintRepo       repository.MintRequestRepository
	completionRepo repository.QuestCompletionRepository

	domain SettlementDomain
}

func newSettlementTest(userID string) *settlementTest {
	ctx := testutil.MockContextWithUserID(userID)
	testutil.CreateFixtureDb(ctx)

	st := &settlementTest{
		ctx:            ctx,
		gateway:        &testutil.MockGateway{},
		indexer:        &testutil.MockIndexer{},
		redis:          &testutil.MockRedisClient{},
		claimRepo:      repository.NewRewardClaimRepository(),
		mintRepo:       repository.NewMintRequestRepository(),
		completionRepo: repository.NewQuestCompletionRepository(),
	}

	st.domain = NewSettlementDomain(
		st.claimRepo,
		st.mintRepo,
		repository.NewQuestRepository(),
		st.completionRepo,
		st.gateway,
		ledger.NewConfirmationMonitor(st.indexer),
		st.redis,
	)

	return st
}

// answerWithTransfer makes the indexer report an inbound token transfer with
// the given hash to wallet on the fungible token contract.
func (st *settlementTest) answerWithTransfer(wallet, txHash string) {
	contract := xcontext.Configs(st.ctx).Ledger.TokenAddress
	st.indexer.AccountTransfersFunc = func(
		ctx context.Context, address, c string, page, pageSize int,
	) ([]ledger.TransferEntry, error) {
		return []ledger.TransferEntry{
			{Hash: txHash, ContractAddress: contract, To: wallet, BlockNumber: 42},
		}, nil
	}
}

func (st *settlementTest) answerWithMint(wallet, contract, txHash, tokenID string) {
	st.indexer.AccountTransfersFunc = func(
		ctx context.Context, address, c string, page, pageSize int,
	) ([]ledger.TransferEntry, error) {
		return []ledger.TransferEntry{
			{Hash: txHash, ContractAddress: contract, To: wallet, TokenID: tokenID, BlockNumber: 42},
		}, nil
	}
}

func Test_settlementDomain_SubmitClaim(t *testing.T) {
	st := newSettlementTest("user1")
	st.answerWithTransfer(testutil.Wallet1, "0xmocktransfer")

	resp, err := st.domain.SubmitClaim(st.ctx, &model.SubmitClaimRequest{
		WalletAddress: testutil.Wallet1,
		QuestIDs:      []string{"quest1", "quest2"},
	})
	require.NoError(t, err)
	require.Equal(t, string(entity.SettlementConfirmed), resp.Status)
	require.Equal(t, float64(80), resp.Amount)
	require.Equal(t, "0xmocktransfer", resp.TxHash)
	require.Equal(t, 1, st.gateway.TransferCalls)

	completions, err := st.completionRepo.GetVerifiedUnclaimed(
		st.ctx, "user1", []string{"quest1", "quest2"})
	require.NoError(t, err)
	require.Empty(t, completions)

	// A repeated claim of an already settled quest returns the original
	// outcome without touching the ledger again.
	resp2, err := st.domain.SubmitClaim(st.ctx, &model.SubmitClaimRequest{
		WalletAddress: testutil.Wallet1,
		QuestIDs:      []string{"quest1"},
	})
	require.NoError(t, err)
	require.Equal(t, resp.ID, resp2.ID)
	require.Equal(t, float64(80), resp2.Amount)
	require.Equal(t, 1, st.gateway.TransferCalls)
}

func Test_settlementDomain_SubmitClaim_NoEligibleQuests(t *testing.T) {
	st := newSettlementTest("user2")

	_, err := st.domain.SubmitClaim(st.ctx, &model.SubmitClaimRequest{
		WalletAddress: testutil.Wallet2,
		QuestIDs:      []string{"quest1"},
	})
	require.Error(t, err)

	errx := errorx.Error{}
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.NoEligibleQuests, errx.Code)
	require.Equal(t, 0, st.gateway.TransferCalls)
}

func Test_settlementDomain_SubmitClaim_UnconfirmedThenResumed(t *testing.T) {
	st := newSettlementTest("user1")

	// The indexer never sees the transaction inside the polling window.
	resp, err := st.domain.SubmitClaim(st.ctx, &model.SubmitClaimRequest{
		WalletAddress: testutil.Wallet1,
		QuestIDs:      []string{"quest1", "quest2"},
	})
	require.NoError(t, err)
	require.Equal(t, string(entity.SettlementSubmitted), resp.Status)
	require.Equal(t, "0xmocktransfer", resp.TxHash)
	require.Equal(t, 1, st.gateway.TransferCalls)

	// The retry must not produce a second ledger transaction. Once the
	// indexer reports the original hash, the claim completes.
	st.answerWithTransfer(testutil.Wallet1, "0xmocktransfer")
	resp2, err := st.domain.SubmitClaim(st.ctx, &model.SubmitClaimRequest{
		WalletAddress: testutil.Wallet1,
		QuestIDs:      []string{"quest1", "quest2"},
	})
	require.NoError(t, err)
	require.Equal(t, resp.ID, resp2.ID)
	require.Equal(t, string(entity.SettlementConfirmed), resp2.Status)
	require.Equal(t, 1, st.gateway.TransferCalls)

	completions, err := st.completionRepo.GetVerifiedUnclaimed(
		st.ctx, "user1", []string{"quest1", "quest2"})
	require.NoError(t, err)
	require.Empty(t, completions)
}

func Test_settlementDomain_SubmitClaim_Cooldown(t *testing.T) {
	st := newSettlementTest("user1")
	st.answerWithTransfer(testutil.Wallet1, "0xmocktransfer")

	_, err := st.domain.SubmitClaim(st.ctx, &model.SubmitClaimRequest{
		WalletAddress: testutil.Wallet1,
		QuestIDs:      []string{"quest1"},
	})
	require.NoError(t, err)

	// quest2 is still claimable, but the owner confirmed a claim a moment
	// ago and has to wait out the cooldown.
	_, err = st.domain.SubmitClaim(st.ctx, &model.SubmitClaimRequest{
		WalletAddress: testutil.Wallet1,
		QuestIDs:      []string{"quest2"},
	})
	require.Error(t, err)

	errx := errorx.Error{}
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.ClaimCooldown, errx.Code)
	require.Equal(t, 1, st.gateway.TransferCalls)
}

func Test_settlementDomain_SubmitClaim_ChainRejected(t *testing.T) {
	st := newSettlementTest("user1")
	st.gateway.TransferFunc = func(
		ctx context.Context, to string, amount float64,
	) (ledger.SubmitReceipt, error) {
		return ledger.SubmitReceipt{}, ledger.NewSubmitError(
			ledger.ChainRejected, errors.New("execution reverted"))
	}

	_, err := st.domain.SubmitClaim(st.ctx, &model.SubmitClaimRequest{
		WalletAddress: testutil.Wallet1,
		QuestIDs:      []string{"quest1", "quest2"},
	})
	require.Error(t, err)

	errx := errorx.Error{}
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.ChainRejected, errx.Code)

	// No transaction reached the ledger, so the failed row does not block a
	// later retry.
	key := entity.ClaimIdempotencyKey("user1", []string{"quest1", "quest2"})
	claim, err := st.claimRepo.GetByIdempotencyKey(st.ctx, key)
	require.NoError(t, err)
	require.Equal(t, entity.SettlementFailed, claim.Status)
	require.False(t, claim.TxHash.Valid)

	st.gateway.TransferFunc = nil
	st.answerWithTransfer(testutil.Wallet1, "0xmocktransfer")
	resp, err := st.domain.SubmitClaim(st.ctx, &model.SubmitClaimRequest{
		WalletAddress: testutil.Wallet1,
		QuestIDs:      []string{"quest1", "quest2"},
	})
	require.NoError(t, err)
	require.Equal(t, string(entity.SettlementConfirmed), resp.Status)
	require.Equal(t, 2, st.gateway.TransferCalls)
}

func Test_settlementDomain_SubmitMint_Passport(t *testing.T) {
	st := newSettlementTest("user1")
	passportContract := xcontext.Configs(st.ctx).Ledger.PassportAddress
	st.answerWithMint(testutil.Wallet1, passportContract, "0xmockmint", "1")

	resp, err := st.domain.SubmitMint(st.ctx, &model.SubmitMintRequest{
		WalletAddress: testutil.Wallet1,
		Kind:          "passport",
		Tier:          "bronze",
	})
	require.NoError(t, err)
	require.Equal(t, string(entity.SettlementConfirmed), resp.Status)
	require.Equal(t, int64(1), resp.TokenID)
	require.Equal(t, 1, st.gateway.MintCalls)

	// The passport is unique per owner; any tier is refused afterwards.
	_, err = st.domain.SubmitMint(st.ctx, &model.SubmitMintRequest{
		WalletAddress: testutil.Wallet1,
		Kind:          "passport",
		Tier:          "gold",
	})
	require.Error(t, err)

	errx := errorx.Error{}
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.AlreadyMinted, errx.Code)
	require.Equal(t, 1, st.gateway.MintCalls)
}

func Test_settlementDomain_SubmitMint_Achievement(t *testing.T) {
	st := newSettlementTest("user1")
	contract := xcontext.Configs(st.ctx).Ledger.AchievementAddress
	tokenID := entity.AchievementTokenID("quest1")
	st.answerWithMint(testutil.Wallet1, contract, "0xmockmint", "")

	resp, err := st.domain.SubmitMint(st.ctx, &model.SubmitMintRequest{
		WalletAddress: testutil.Wallet1,
		Kind:          "achievement",
		QuestID:       "quest1",
	})
	require.NoError(t, err)
	require.Equal(t, string(entity.SettlementConfirmed), resp.Status)
	require.Equal(t, tokenID, resp.TokenID)
	require.Equal(t, 1, st.gateway.MintCalls)

	_, err = st.domain.SubmitMint(st.ctx, &model.SubmitMintRequest{
		WalletAddress: testutil.Wallet1,
		Kind:          "achievement",
		QuestID:       "quest1",
	})
	require.Error(t, err)

	errx := errorx.Error{}
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.AlreadyMinted, errx.Code)
	require.Equal(t, 1, st.gateway.MintCalls)
}

func Test_settlementDomain_SubmitMint_UnverifiedQuest(t *testing.T) {
	st := newSettlementTest("user2")

	_, err := st.domain.SubmitMint(st.ctx, &model.SubmitMintRequest{
		WalletAddress: testutil.Wallet2,
		Kind:          "achievement",
		QuestID:       "quest1",
	})
	require.Error(t, err)

	errx := errorx.Error{}
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.NoEligibleQuests, errx.Code)
	require.Equal(t, 0, st.gateway.MintCalls)
}

func Test_settlementDomain_SubmitMint_LedgerAuthority(t *testing.T) {
	st := newSettlementTest("user1")

	// The record store has no row, but the ledger already attributes the
	// achievement to this wallet.
	st.gateway.NFTBalanceOfFunc = func(
		ctx context.Context, account string, tokenID int64, kind entity.MintKind,
	) (*big.Int, error) {
		return big.NewInt(1), nil
	}

	_, err := st.domain.SubmitMint(st.ctx, &model.SubmitMintRequest{
		WalletAddress: testutil.Wallet1,
		Kind:          "achievement",
		QuestID:       "quest1",
	})
	require.Error(t, err)

	errx := errorx.Error{}
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.AlreadyMinted, errx.Code)
	require.Equal(t, 0, st.gateway.MintCalls)
}

func Test_settlementDomain_Reconcile_CompletesInterruptedClaim(t *testing.T) {
	st := newSettlementTest("user1")

	// Simulate a crash after submission: the row is submitted with a hash
	// but nothing was confirmed locally.
	claim := &entity.RewardClaim{
		Base:           entity.Base{ID: "claim1"},
		UserID:         "user1",
		WalletAddress:  testutil.Wallet1,
		Amount:         80,
		QuestIDs:       []string{"quest1", "quest2"},
		IdempotencyKey: entity.ClaimIdempotencyKey("user1", []string{"quest1", "quest2"}),
		Status:         entity.SettlementSubmitted,
		TxHash:         sql.NullString{Valid: true, String: "0xinterrupted"},
	}
	require.NoError(t, st.claimRepo.UpsertPending(st.ctx, claim))

	st.answerWithTransfer(testutil.Wallet1, "0xinterrupted")

	resp, err := st.domain.Reconcile(st.ctx, &model.ReconcileRequest{
		WalletAddress: testutil.Wallet1,
	})
	require.NoError(t, err)
	require.Equal(t, 1, resp.ConfirmedClaims)
	require.Equal(t, 0, st.gateway.TransferCalls)

	reloaded, err := st.claimRepo.GetByIdempotencyKey(st.ctx, claim.IdempotencyKey)
	require.NoError(t, err)
	require.Equal(t, entity.SettlementConfirmed, reloaded.Status)

	completions, err := st.completionRepo.GetVerifiedUnclaimed(
		st.ctx, "user1", []string{"quest1", "quest2"})
	require.NoError(t, err)
	require.Empty(t, completions)
}

func Test_settlementDomain_Reconcile_BackfillsLedgerMint(t *testing.T) {
	st := newSettlementTest("user1")

	achievementID := entity.AchievementTokenID("quest1")
	st.gateway.NFTBalanceOfFunc = func(
		ctx context.Context, account string, tokenID int64, kind entity.MintKind,
	) (*big.Int, error) {
		if kind == entity.MintAchievement && tokenID == achievementID {
			return big.NewInt(1), nil
		}

		return big.NewInt(0), nil
	}

	resp, err := st.domain.Reconcile(st.ctx, &model.ReconcileRequest{
		WalletAddress: testutil.Wallet1,
	})
	require.NoError(t, err)
	require.Equal(t, 1, resp.BackfilledMints)

	key := entity.MintIdempotencyKey("user1", entity.MintAchievement, "quest1")
	mint, err := st.mintRepo.GetByIdempotencyKey(st.ctx, key)
	require.NoError(t, err)
	require.Equal(t, entity.SettlementConfirmed, mint.Status)
	require.Equal(t, achievementID, mint.TokenID.Int64)
}

func Test_settlementDomain_ReconcilePending(t *testing.T) {
	st := newSettlementTest("user1")

	mint := &entity.MintRequest{
		Base:           entity.Base{ID: "mint1"},
		UserID:         "user1",
		WalletAddress:  testutil.Wallet1,
		Kind:           entity.MintPassport,
		Tier:           entity.TierSilver,
		IdempotencyKey: entity.MintIdempotencyKey("user1", entity.MintPassport, ""),
		Status:         entity.SettlementSubmitted,
		TokenID:        sql.NullInt64{Valid: true, Int64: 2},
		TxHash:         sql.NullString{Valid: true, String: "0xlostmint"},
	}
	require.NoError(t, st.mintRepo.UpsertPending(st.ctx, mint))

	passportContract := xcontext.Configs(st.ctx).Ledger.PassportAddress
	st.answerWithMint(testutil.Wallet1, passportContract, "0xlostmint", "2")

	st.domain.ReconcilePending(st.ctx)

	reloaded, err := st.mintRepo.GetByIdempotencyKey(st.ctx, mint.IdempotencyKey)
	require.NoError(t, err)
	require.Equal(t, entity.SettlementConfirmed, reloaded.Status)
	require.Equal(t, int64(2), reloaded.TokenID.Int64)
	require.Equal(t, 0, st.gateway.MintCalls)
}

func Test_settlementDomain_GetMySettlements(t *testing.T) {
	st := newSettlementTest("user1")
	st.answerWithTransfer(testutil.Wallet1, "0xmocktransfer")

	_, err := st.domain.SubmitClaim(st.ctx, &model.SubmitClaimRequest{
		WalletAddress: testutil.Wallet1,
		QuestIDs:      []string{"quest1", "quest2"},
	})
	require.NoError(t, err)

	resp, err := st.domain.GetMySettlements(st.ctx, &model.GetMySettlementsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Claims, 1)
	require.Empty(t, resp.Mints)
	require.Equal(t, string(entity.SettlementConfirmed), resp.Claims[0].Status)

	other := xcontext.WithRequestUserID(st.ctx, "user2")
	respOther, err := st.domain.GetMySettlements(other, &model.GetMySettlementsRequest{})
	require.NoError(t, err)
	require.Empty(t, respOther.Claims)
}

// Cooldown must not outlive its window.
func Test_settlementDomain_SubmitClaim_CooldownExpires(t *testing.T) {
	st := newSettlementTest("user1")

	old := &entity.RewardClaim{
		Base:           entity.Base{ID: "oldclaim"},
		UserID:         "user1",
		WalletAddress:  testutil.Wallet1,
		Amount:         50,
		QuestIDs:       []string{"quest1"},
		IdempotencyKey: entity.ClaimIdempotencyKey("user1", []string{"quest1"}),
		Status:         entity.SettlementConfirmed,
		TxHash:         sql.NullString{Valid: true, String: "0xold"},
		ConfirmedAt:    sql.NullTime{Valid: true, Time: time.Now().Add(-2 * time.Hour)},
	}
	require.NoError(t, st.claimRepo.UpsertPending(st.ctx, old))
	require.NoError(t, st.completionRepo.MarkRewardClaimed(st.ctx, "user1", []string{"quest1"}))

	st.answerWithTransfer(testutil.Wallet1, "0xmocktransfer")
	resp, err := st.domain.SubmitClaim(st.ctx, &model.SubmitClaimRequest{
		WalletAddress: testutil.Wallet1,
		QuestIDs:      []string{"quest2"},
	})
	require.NoError(t, err)
	require.Equal(t, string(entity.SettlementConfirmed), resp.Status)
	require.Equal(t, float64(30), resp.Amount)
}
