package main

import (
	"context"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/urfave/cli/v2"
	"github.com/wanderquest-labs/backend/config"
	"github.com/wanderquest-labs/backend/internal/domain"
	"github.com/wanderquest-labs/backend/internal/domain/ledger"
	"github.com/wanderquest-labs/backend/internal/domain/ledger/eth"
	"github.com/wanderquest-labs/backend/internal/entity"
	"github.com/wanderquest-labs/backend/internal/repository"
	"github.com/wanderquest-labs/backend/pkg/logger"
	"github.com/wanderquest-labs/backend/pkg/router"
	"github.com/wanderquest-labs/backend/pkg/xcontext"
	"github.com/wanderquest-labs/backend/pkg/xredis"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type srv struct {
	ctx context.Context
	app *cli.App

	userRepo            repository.UserRepository
	questRepo           repository.QuestRepository
	questCompletionRepo repository.QuestCompletionRepository
	rewardClaimRepo     repository.RewardClaimRepository
	mintRequestRepo     repository.MintRequestRepository
	blockchainRepo      repository.BlockChainRepository

	ethClient eth.EthClient
	gateway   ledger.Gateway
	monitor   *ledger.ConfirmationMonitor

	redisClient xredis.Client

	authDomain       domain.AuthDomain
	questDomain      domain.QuestDomain
	settlementDomain domain.SettlementDomain

	router *router.Router
	server *http.Server
}

func (s *srv) loadConfig(cctx *cli.Context) {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
}

func (s *srv) loadLogger() {
	level := logger.INFO
	if xcontext.Configs(s.ctx).Env == "local" {
		level = logger.DEBUG
	}

	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(level))
}

func (s *srv) loadDatabase() {
	databaseCfg := xcontext.Configs(s.ctx).Database
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       databaseCfg.ConnectionString(),
		DefaultStringSize:         256,
		DisableDatetimePrecision:  true,
		DontSupportRenameIndex:    true,
		DontSupportRenameColumn:   true,
		SkipInitializeWithVersion: false,
	}), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
}

func (s *srv) loadSnowFlake() {
	node, err := snowflake.NewNode(0)
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithSnowFlake(s.ctx, node)
}

func (s *srv) loadRedis() {
	client, err := xredis.NewClient(s.ctx)
	if err != nil {
		// The cooldown fast path degrades to database checks without redis.
		xcontext.Logger(s.ctx).Warnf("Cannot connect to redis: %v", err)
		return
	}

	s.redisClient = client
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.questRepo = repository.NewQuestRepository()
	s.questCompletionRepo = repository.NewQuestCompletionRepository()
	s.rewardClaimRepo = repository.NewRewardClaimRepository()
	s.mintRequestRepo = repository.NewMintRequestRepository()
	s.blockchainRepo = repository.NewBlockChainRepository()
}

func (s *srv) loadLedger() {
	cfg := xcontext.Configs(s.ctx).Ledger

	blockchain := &entity.Blockchain{
		Name: cfg.Chain,
		ID:   cfg.ChainID,
	}

	if err := s.blockchainRepo.Upsert(s.ctx, blockchain); err != nil {
		panic(err)
	}

	s.ethClient = eth.NewEthClient(blockchain, s.blockchainRepo)
	s.ethClient.Start(s.ctx)

	s.gateway = eth.NewGateway(blockchain, s.ethClient)
	s.monitor = ledger.NewConfirmationMonitor(ledger.NewIndexerClient())
}

func (s *srv) loadDomains() {
	s.authDomain = domain.NewAuthDomain(s.userRepo, s.redisClient)
	s.questDomain = domain.NewQuestDomain(s.questRepo, s.questCompletionRepo, s.userRepo)
	s.settlementDomain = domain.NewSettlementDomain(
		s.rewardClaimRepo,
		s.mintRequestRepo,
		s.questRepo,
		s.questCompletionRepo,
		s.gateway,
		s.monitor,
		s.redisClient,
	)
}
