package domain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/wanderquest-labs/backend/internal/domain/ledger"
	"github.com/wanderquest-labs/backend/internal/entity"
	"github.com/wanderquest-labs/backend/internal/model"
	"github.com/wanderquest-labs/backend/internal/repository"
	"github.com/wanderquest-labs/backend/pkg/enum"
	"github.com/wanderquest-labs/backend/pkg/errorx"
	"github.com/wanderquest-labs/backend/pkg/xcontext"
	"github.com/wanderquest-labs/backend/pkg/xredis"
	"gorm.io/gorm"
)

type SettlementDomain interface {
	SubmitClaim(ctx context.Context, req *model.SubmitClaimRequest) (*model.SubmitClaimResponse, error)
	SubmitMint(ctx context.Context, req *model.SubmitMintRequest) (*model.SubmitMintResponse, error)
	GetMySettlements(ctx context.Context, req *model.GetMySettlementsRequest) (*model.GetMySettlementsResponse, error)
	Reconcile(ctx context.Context, req *model.ReconcileRequest) (*model.ReconcileResponse, error)
	ReconcilePending(ctx context.Context)
}

type settlementDomain struct {
	rewardClaimRepo     repository.RewardClaimRepository
	mintRequestRepo     repository.MintRequestRepository
	questRepo           repository.QuestRepository
	questCompletionRepo repository.QuestCompletionRepository
	gateway             ledger.Gateway
	monitor             *ledger.ConfirmationMonitor
	redisClient         xredis.Client
}

func NewSettlementDomain(
	rewardClaimRepo repository.RewardClaimRepository,
	mintRequestRepo repository.MintRequestRepository,
	questRepo repository.QuestRepository,
	questCompletionRepo repository.QuestCompletionRepository,
	gateway ledger.Gateway,
	monitor *ledger.ConfirmationMonitor,
	redisClient xredis.Client,
) *settlementDomain {
	return &settlementDomain{
		rewardClaimRepo:     rewardClaimRepo,
		mintRequestRepo:     mintRequestRepo,
		questRepo:           questRepo,
		questCompletionRepo: questCompletionRepo,
		gateway:             gateway,
		monitor:             monitor,
		redisClient:         redisClient,
	}
}

func (d *settlementDomain) SubmitClaim(
	ctx context.Context, req *model.SubmitClaimRequest,
) (*model.SubmitClaimResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	if !common.IsHexAddress(req.WalletAddress) {
		return nil, errorx.New(errorx.BadRequest, "Invalid wallet address")
	}

	if len(req.QuestIDs) == 0 {
		return nil, errorx.New(errorx.BadRequest, "No quest specified")
	}

	// A quest already settled in a confirmed claim must never be paid twice.
	// Returning the prior outcome makes the retry indistinguishable from the
	// original call.
	for _, questID := range req.QuestIDs {
		claim, err := d.rewardClaimRepo.GetConfirmedByQuestID(ctx, userID, questID)
		if err == nil {
			return &model.SubmitClaimResponse{RewardClaim: model.ConvertRewardClaim(claim)}, nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot check confirmed claims: %v", err)
			return nil, errorx.Unknown
		}
	}

	completions, err := d.questCompletionRepo.GetVerifiedUnclaimed(ctx, userID, req.QuestIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get verified completions: %v", err)
		return nil, errorx.Unknown
	}

	if len(completions) == 0 {
		return nil, errorx.New(errorx.NoEligibleQuests, "No eligible quest to claim")
	}

	eligibleIDs := make([]string, 0, len(completions))
	for _, completion := range completions {
		eligibleIDs = append(eligibleIDs, completion.QuestID)
	}

	idempotencyKey := entity.ClaimIdempotencyKey(userID, eligibleIDs)

	// An in-flight claim with this exact quest set resumes instead of
	// producing a second ledger transaction.
	existing, err := d.rewardClaimRepo.GetByIdempotencyKey(ctx, idempotencyKey)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get claim by idempotency key: %v", err)
		return nil, errorx.Unknown
	}

	if existing != nil && existing.TxHash.Valid {
		return d.resumeClaim(ctx, existing, eligibleIDs)
	}

	if err := d.checkClaimCooldown(ctx, userID); err != nil {
		return nil, err
	}

	quests, err := d.questRepo.GetByIDs(ctx, eligibleIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get quests: %v", err)
		return nil, errorx.Unknown
	}

	var amount float64
	for _, quest := range quests {
		amount += quest.RewardAmount
	}

	claim := &entity.RewardClaim{
		Base:           entity.Base{ID: xcontext.SnowFlake(ctx).Generate().String()},
		UserID:         userID,
		WalletAddress:  req.WalletAddress,
		Amount:         amount,
		QuestIDs:       eligibleIDs,
		IdempotencyKey: idempotencyKey,
		Status:         entity.SettlementPending,
	}

	if err := d.rewardClaimRepo.UpsertPending(ctx, claim); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upsert pending claim: %v", err)
		return nil, errorx.Unknown
	}

	// Racing requests converge on one row; re-read to learn which one won.
	claim, err = d.rewardClaimRepo.GetByIdempotencyKey(ctx, idempotencyKey)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot re-read claim: %v", err)
		return nil, errorx.Unknown
	}

	if claim.TxHash.Valid {
		return d.resumeClaim(ctx, claim, eligibleIDs)
	}

	receipt, err := d.gateway.Transfer(ctx, claim.WalletAddress, claim.Amount)
	if err != nil {
		// No transaction hash exists, so marking the claim failed cannot
		// contradict the ledger.
		finalErr := d.rewardClaimRepo.MarkFinal(ctx, claim.ID, &entity.RewardClaim{
			Status: entity.SettlementFailed,
		})
		if finalErr != nil {
			xcontext.Logger(ctx).Errorf("Cannot mark claim failed: %v", finalErr)
		}

		return nil, d.mapSubmitError(ctx, err)
	}

	if err := d.rewardClaimRepo.MarkSubmitted(ctx, claim.ID, receipt.TxHash); err != nil {
		// The transaction is on its way regardless; the reconciler picks the
		// row up from its current state.
		xcontext.Logger(ctx).Errorf("Cannot mark claim submitted: %v", err)
	}

	claim.Status = entity.SettlementSubmitted
	claim.TxHash = sql.NullString{Valid: true, String: receipt.TxHash}

	return d.awaitClaim(ctx, claim, eligibleIDs)
}

// resumeClaim completes a claim that already carries a transaction hash. It
// never re-submits; it only watches the ledger for the existing transaction.
func (d *settlementDomain) resumeClaim(
	ctx context.Context, claim *entity.RewardClaim, questIDs []string,
) (*model.SubmitClaimResponse, error) {
	if claim.Status == entity.SettlementConfirmed {
		return &model.SubmitClaimResponse{RewardClaim: model.ConvertRewardClaim(claim)}, nil
	}

	cfg := xcontext.Configs(ctx).Ledger
	result, err := d.monitor.FindTransaction(
		ctx, claim.WalletAddress, cfg.TokenAddress, claim.TxHash.String)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot query indexer for claim %s: %v", claim.ID, err)
		return &model.SubmitClaimResponse{RewardClaim: model.ConvertRewardClaim(claim)}, nil
	}

	if !result.Found {
		return &model.SubmitClaimResponse{RewardClaim: model.ConvertRewardClaim(claim)}, nil
	}

	return d.confirmClaim(ctx, claim, questIDs, result)
}

func (d *settlementDomain) awaitClaim(
	ctx context.Context, claim *entity.RewardClaim, questIDs []string,
) (*model.SubmitClaimResponse, error) {
	cfg := xcontext.Configs(ctx).Ledger
	result, err := d.monitor.AwaitTransfer(
		ctx, claim.WalletAddress, cfg.TokenAddress, 0,
		cfg.ConfirmMaxAttempts, cfg.ConfirmInterval)
	if err != nil || !result.Found {
		// Unconfirmed is not failure. The row stays submitted and the
		// reconciler finishes the settlement later.
		return &model.SubmitClaimResponse{RewardClaim: model.ConvertRewardClaim(claim)}, nil
	}

	return d.confirmClaim(ctx, claim, questIDs, result)
}

func (d *settlementDomain) confirmClaim(
	ctx context.Context, claim *entity.RewardClaim, questIDs []string, result ledger.TrackResult,
) (*model.SubmitClaimResponse, error) {
	confirmedAt := time.Now()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	err := d.rewardClaimRepo.MarkFinal(ctx, claim.ID, &entity.RewardClaim{
		Status:      entity.SettlementConfirmed,
		BlockNumber: sql.NullInt64{Valid: true, Int64: result.BlockNumber},
		ConfirmedAt: sql.NullTime{Valid: true, Time: confirmedAt},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot mark claim confirmed: %v", err)
		return nil, errorx.Unknown
	}

	err = d.questCompletionRepo.MarkRewardClaimed(ctx, claim.UserID, questIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot mark completions claimed: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	d.setClaimCooldown(ctx, claim.UserID)

	claim.Status = entity.SettlementConfirmed
	claim.BlockNumber = sql.NullInt64{Valid: true, Int64: result.BlockNumber}
	claim.ConfirmedAt = sql.NullTime{Valid: true, Time: confirmedAt}

	return &model.SubmitClaimResponse{RewardClaim: model.ConvertRewardClaim(claim)}, nil
}

func (d *settlementDomain) checkClaimCooldown(ctx context.Context, userID string) error {
	cooldown := xcontext.Configs(ctx).Ledger.ClaimCooldown

	if d.redisClient != nil {
		exist, err := d.redisClient.Exist(ctx, claimCooldownKey(userID))
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot check cooldown key: %v", err)
		} else if exist {
			return errorx.New(errorx.ClaimCooldown,
				"You need to wait before claiming again")
		}
	}

	// The record store stays authoritative; redis only saves a query.
	last, err := d.rewardClaimRepo.GetLastConfirmed(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get last confirmed claim: %v", err)
		return errorx.Unknown
	}

	if last.ConfirmedAt.Valid && time.Since(last.ConfirmedAt.Time) < cooldown {
		return errorx.New(errorx.ClaimCooldown,
			"You need to wait before claiming again")
	}

	return nil
}

func (d *settlementDomain) setClaimCooldown(ctx context.Context, userID string) {
	if d.redisClient == nil {
		return
	}

	cooldown := xcontext.Configs(ctx).Ledger.ClaimCooldown
	err := d.redisClient.Set(ctx, claimCooldownKey(userID), "1", cooldown)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot set cooldown key: %v", err)
	}
}

func claimCooldownKey(userID string) string {
	return fmt.Sprintf("claim_cooldown:%s", userID)
}

func (d *settlementDomain) SubmitMint(
	ctx context.Context, req *model.SubmitMintRequest,
) (*model.SubmitMintResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	if !common.IsHexAddress(req.WalletAddress) {
		return nil, errorx.New(errorx.BadRequest, "Invalid wallet address")
	}

	kind, err := enum.ToEnum[entity.MintKind](req.Kind)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid mint kind %s", req.Kind)
	}

	var tier entity.PassportTier
	var tokenID int64
	switch kind {
	case entity.MintPassport:
		tier, err = enum.ToEnum[entity.PassportTier](req.Tier)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid passport tier %s", req.Tier)
		}

		tokenID = entity.PassportTokenID(tier)

	case entity.MintAchievement:
		if req.QuestID == "" {
			return nil, errorx.New(errorx.BadRequest, "No quest specified")
		}

		completion, err := d.questCompletionRepo.Get(ctx, userID, req.QuestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.NoEligibleQuests,
					"Quest has not been completed")
			}

			xcontext.Logger(ctx).Errorf("Cannot get completion: %v", err)
			return nil, errorx.Unknown
		}

		if completion.Status != entity.CompletionVerified {
			return nil, errorx.New(errorx.NoEligibleQuests,
				"Quest has not been verified")
		}

		tokenID = entity.AchievementTokenID(req.QuestID)
	}

	idempotencyKey := entity.MintIdempotencyKey(userID, kind, req.QuestID)

	existing, err := d.mintRequestRepo.GetByIdempotencyKey(ctx, idempotencyKey)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get mint by idempotency key: %v", err)
		return nil, errorx.Unknown
	}

	if existing != nil {
		if existing.Status == entity.SettlementConfirmed {
			return nil, errorx.New(errorx.AlreadyMinted, "Collectible already minted")
		}

		if existing.TxHash.Valid {
			return d.resumeMint(ctx, existing)
		}
	} else if already, err := d.mintedOnLedger(ctx, req.WalletAddress, kind, req.QuestID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check ledger ownership: %v", err)
		return nil, errorx.Unknown
	} else if already {
		return nil, errorx.New(errorx.AlreadyMinted, "Collectible already minted")
	}

	mint := &entity.MintRequest{
		Base:           entity.Base{ID: xcontext.SnowFlake(ctx).Generate().String()},
		UserID:         userID,
		WalletAddress:  req.WalletAddress,
		Kind:           kind,
		Tier:           tier,
		IdempotencyKey: idempotencyKey,
		Status:         entity.SettlementPending,
		TokenID:        sql.NullInt64{Valid: true, Int64: tokenID},
	}

	if kind == entity.MintAchievement {
		mint.QuestID = sql.NullString{Valid: true, String: req.QuestID}
	}

	if err := d.mintRequestRepo.UpsertPending(ctx, mint); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upsert pending mint: %v", err)
		return nil, errorx.Unknown
	}

	mint, err = d.mintRequestRepo.GetByIdempotencyKey(ctx, idempotencyKey)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot re-read mint: %v", err)
		return nil, errorx.Unknown
	}

	if mint.Status == entity.SettlementConfirmed {
		return nil, errorx.New(errorx.AlreadyMinted, "Collectible already minted")
	}

	if mint.TxHash.Valid {
		return d.resumeMint(ctx, mint)
	}

	receipt, err := d.gateway.Mint(ctx, mint.WalletAddress, tokenID, kind)
	if err != nil {
		finalErr := d.mintRequestRepo.MarkFinal(ctx, mint.ID, &entity.MintRequest{
			Status: entity.SettlementFailed,
		})
		if finalErr != nil {
			xcontext.Logger(ctx).Errorf("Cannot mark mint failed: %v", finalErr)
		}

		return nil, d.mapSubmitError(ctx, err)
	}

	if err := d.mintRequestRepo.MarkSubmitted(ctx, mint.ID, receipt.TxHash); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot mark mint submitted: %v", err)
	}

	mint.Status = entity.SettlementSubmitted
	mint.TxHash = sql.NullString{Valid: true, String: receipt.TxHash}

	return d.awaitMint(ctx, mint)
}

func (d *settlementDomain) resumeMint(
	ctx context.Context, mint *entity.MintRequest,
) (*model.SubmitMintResponse, error) {
	result, err := d.monitor.FindTransaction(
		ctx, mint.WalletAddress, d.collectibleContract(ctx, mint.Kind), mint.TxHash.String)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot query indexer for mint %s: %v", mint.ID, err)
		return &model.SubmitMintResponse{MintRequest: model.ConvertMintRequest(mint)}, nil
	}

	if !result.Found {
		return &model.SubmitMintResponse{MintRequest: model.ConvertMintRequest(mint)}, nil
	}

	return d.confirmMint(ctx, mint, result)
}

func (d *settlementDomain) awaitMint(
	ctx context.Context, mint *entity.MintRequest,
) (*model.SubmitMintResponse, error) {
	cfg := xcontext.Configs(ctx).Ledger
	result, err := d.monitor.AwaitTransfer(
		ctx, mint.WalletAddress, d.collectibleContract(ctx, mint.Kind), 0,
		cfg.ConfirmMaxAttempts, cfg.ConfirmInterval)
	if err != nil || !result.Found {
		return &model.SubmitMintResponse{MintRequest: model.ConvertMintRequest(mint)}, nil
	}

	return d.confirmMint(ctx, mint, result)
}

func (d *settlementDomain) confirmMint(
	ctx context.Context, mint *entity.MintRequest, result ledger.TrackResult,
) (*model.SubmitMintResponse, error) {
	confirmedAt := time.Now()

	tokenID := mint.TokenID
	if result.TokenID > 0 {
		tokenID = sql.NullInt64{Valid: true, Int64: result.TokenID}
	}

	err := d.mintRequestRepo.MarkFinal(ctx, mint.ID, &entity.MintRequest{
		Status:      entity.SettlementConfirmed,
		TokenID:     tokenID,
		BlockNumber: sql.NullInt64{Valid: true, Int64: result.BlockNumber},
		ConfirmedAt: sql.NullTime{Valid: true, Time: confirmedAt},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot mark mint confirmed: %v", err)
		return nil, errorx.Unknown
	}

	mint.Status = entity.SettlementConfirmed
	mint.TokenID = tokenID
	mint.BlockNumber = sql.NullInt64{Valid: true, Int64: result.BlockNumber}
	mint.ConfirmedAt = sql.NullTime{Valid: true, Time: confirmedAt}

	return &model.SubmitMintResponse{MintRequest: model.ConvertMintRequest(mint)}, nil
}

// mintedOnLedger consults the collectible contracts directly. Token ids are
// derived from tier and quest id, so ownership is answerable even when the
// record store has no row at all.
func (d *settlementDomain) mintedOnLedger(
	ctx context.Context, wallet string, kind entity.MintKind, questID string,
) (bool, error) {
	if kind == entity.MintAchievement {
		balance, err := d.gateway.NFTBalanceOf(
			ctx, wallet, entity.AchievementTokenID(questID), kind)
		if err != nil {
			return false, err
		}

		return balance.Sign() > 0, nil
	}

	// One passport per owner across all tiers.
	for _, tokenID := range entity.PassportTokenIDs() {
		balance, err := d.gateway.NFTBalanceOf(ctx, wallet, tokenID, kind)
		if err != nil {
			return false, err
		}

		if balance.Sign() > 0 {
			return true, nil
		}
	}

	return false, nil
}

func (d *settlementDomain) GetMySettlements(
	ctx context.Context, req *model.GetMySettlementsRequest,
) (*model.GetMySettlementsResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	claims, err := d.rewardClaimRepo.GetByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get claims: %v", err)
		return nil, errorx.Unknown
	}

	mints, err := d.mintRequestRepo.GetByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get mints: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetMySettlementsResponse{
		Claims: []model.RewardClaim{},
		Mints:  []model.MintRequest{},
	}

	for i := range claims {
		resp.Claims = append(resp.Claims, model.ConvertRewardClaim(&claims[i]))
	}

	for i := range mints {
		resp.Mints = append(resp.Mints, model.ConvertMintRequest(&mints[i]))
	}

	return resp, nil
}

// Reconcile completes every interrupted settlement of the calling owner and
// backfills mint rows for collectibles the ledger says the wallet already
// holds. It submits nothing.
func (d *settlementDomain) Reconcile(
	ctx context.Context, req *model.ReconcileRequest,
) (*model.ReconcileResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	if !common.IsHexAddress(req.WalletAddress) {
		return nil, errorx.New(errorx.BadRequest, "Invalid wallet address")
	}

	resp := &model.ReconcileResponse{}

	claims, err := d.rewardClaimRepo.GetSubmittedByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get submitted claims: %v", err)
		return nil, errorx.Unknown
	}

	for i := range claims {
		if d.reconcileClaim(ctx, &claims[i]) {
			resp.ConfirmedClaims++
		}
	}

	mints, err := d.mintRequestRepo.GetSubmittedByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get submitted mints: %v", err)
		return nil, errorx.Unknown
	}

	for i := range mints {
		if d.reconcileMint(ctx, &mints[i]) {
			resp.ConfirmedMints++
		}
	}

	backfilled, err := d.backfillMints(ctx, userID, req.WalletAddress)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot backfill mints: %v", err)
		return nil, errorx.Unknown
	}

	resp.BackfilledMints = backfilled
	return resp, nil
}

// ReconcilePending sweeps every submitted settlement in the record store.
// Run periodically; each pass is idempotent.
func (d *settlementDomain) ReconcilePending(ctx context.Context) {
	claims, err := d.rewardClaimRepo.GetAllSubmitted(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get submitted claims: %v", err)
		return
	}

	for i := range claims {
		d.reconcileClaim(ctx, &claims[i])
	}

	mints, err := d.mintRequestRepo.GetAllSubmitted(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get submitted mints: %v", err)
		return
	}

	for i := range mints {
		d.reconcileMint(ctx, &mints[i])
	}
}

func (d *settlementDomain) reconcileClaim(ctx context.Context, claim *entity.RewardClaim) bool {
	if !claim.TxHash.Valid {
		return false
	}

	cfg := xcontext.Configs(ctx).Ledger
	result, err := d.monitor.FindTransaction(
		ctx, claim.WalletAddress, cfg.TokenAddress, claim.TxHash.String)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot query indexer for claim %s: %v", claim.ID, err)
		return false
	}

	if !result.Found {
		return false
	}

	if _, err := d.confirmClaim(ctx, claim, claim.QuestIDs, result); err != nil {
		return false
	}

	xcontext.Logger(ctx).Infof("Reconciled claim %s with tx %s", claim.ID, result.TxHash)
	return true
}

func (d *settlementDomain) reconcileMint(ctx context.Context, mint *entity.MintRequest) bool {
	if !mint.TxHash.Valid {
		return false
	}

	result, err := d.monitor.FindTransaction(
		ctx, mint.WalletAddress, d.collectibleContract(ctx, mint.Kind), mint.TxHash.String)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot query indexer for mint %s: %v", mint.ID, err)
		return false
	}

	if !result.Found {
		return false
	}

	if _, err := d.confirmMint(ctx, mint, result); err != nil {
		return false
	}

	xcontext.Logger(ctx).Infof("Reconciled mint %s with tx %s", mint.ID, result.TxHash)
	return true
}

// backfillMints writes confirmed mint rows for collectibles the ledger
// attributes to the wallet but the record store does not know about. This
// covers crashes between submission and the submitted write.
func (d *settlementDomain) backfillMints(
	ctx context.Context, userID, wallet string,
) (int, error) {
	count := 0

	passportKey := entity.MintIdempotencyKey(userID, entity.MintPassport, "")
	passport, err := d.mintRequestRepo.GetByIdempotencyKey(ctx, passportKey)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	if passport == nil || passport.Status != entity.SettlementConfirmed {
		for tier, tokenID := range entity.PassportTokenIDs() {
			balance, err := d.gateway.NFTBalanceOf(ctx, wallet, tokenID, entity.MintPassport)
			if err != nil {
				return 0, err
			}

			if balance.Sign() == 0 {
				continue
			}

			err = d.mintRequestRepo.UpsertConfirmed(ctx, &entity.MintRequest{
				Base:           entity.Base{ID: xcontext.SnowFlake(ctx).Generate().String()},
				UserID:         userID,
				WalletAddress:  wallet,
				Kind:           entity.MintPassport,
				Tier:           tier,
				IdempotencyKey: passportKey,
				Status:         entity.SettlementConfirmed,
				TokenID:        sql.NullInt64{Valid: true, Int64: tokenID},
				ConfirmedAt:    sql.NullTime{Valid: true, Time: time.Now()},
			})
			if err != nil {
				return 0, err
			}

			count++
			break
		}
	}

	completions, err := d.questCompletionRepo.GetVerifiedByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}

	for _, completion := range completions {
		key := entity.MintIdempotencyKey(userID, entity.MintAchievement, completion.QuestID)
		existing, err := d.mintRequestRepo.GetByIdempotencyKey(ctx, key)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}

		if existing != nil && existing.Status == entity.SettlementConfirmed {
			continue
		}

		tokenID := entity.AchievementTokenID(completion.QuestID)
		balance, err := d.gateway.NFTBalanceOf(ctx, wallet, tokenID, entity.MintAchievement)
		if err != nil {
			return 0, err
		}

		if balance.Sign() == 0 {
			continue
		}

		err = d.mintRequestRepo.UpsertConfirmed(ctx, &entity.MintRequest{
			Base:           entity.Base{ID: xcontext.SnowFlake(ctx).Generate().String()},
			UserID:         userID,
			WalletAddress:  wallet,
			Kind:           entity.MintAchievement,
			QuestID:        sql.NullString{Valid: true, String: completion.QuestID},
			IdempotencyKey: key,
			Status:         entity.SettlementConfirmed,
			TokenID:        sql.NullInt64{Valid: true, Int64: tokenID},
			ConfirmedAt:    sql.NullTime{Valid: true, Time: time.Now()},
		})
		if err != nil {
			return 0, err
		}

		count++
	}

	return count, nil
}

func (d *settlementDomain) collectibleContract(ctx context.Context, kind entity.MintKind) string {
	cfg := xcontext.Configs(ctx).Ledger
	if kind == entity.MintPassport {
		return cfg.PassportAddress
	}

	return cfg.AchievementAddress
}

func (d *settlementDomain) mapSubmitError(ctx context.Context, err error) error {
	xcontext.Logger(ctx).Errorf("Cannot submit to ledger: %v", err)

	switch ledger.ClassOf(err) {
	case ledger.UserRejected:
		return errorx.New(errorx.UserRejected, "Wallet owner rejected the transaction")
	case ledger.ChainRejected:
		return errorx.New(errorx.ChainRejected, "Ledger rejected the transaction")
	default:
		return errorx.New(errorx.Unavailable, "Ledger is temporarily unavailable, try again later")
	}
}

