package main

import (
	"fmt"
	"net/http"

	"github.com/rs/cors"
	"github.com/urfave/cli/v2"
	"github.com/wanderquest-labs/backend/internal/middleware"
	"github.com/wanderquest-labs/backend/pkg/router"
	"github.com/wanderquest-labs/backend/pkg/xcontext"
)

func (s *srv) startApi(cctx *cli.Context) error {
	s.loadConfig(cctx)
	s.loadLogger()
	s.loadDatabase()
	s.loadSnowFlake()
	s.loadRedis()
	s.loadRepos()
	s.loadLedger()
	s.loadDomains()
	s.loadRouter()

	cfg := xcontext.Configs(s.ctx)
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.ApiServer.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ApiServer.Port),
		Handler: corsHandler.Handler(s.router.Handler()),
	}

	xcontext.Logger(s.ctx).Infof("Starting api server on port %s", cfg.ApiServer.Port)
	if err := s.server.ListenAndServe(); err != nil {
		panic(err)
	}

	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.ctx)

	authRouter := s.router.Branch()
	authRouter.Before(middleware.Authentication())
	{
		router.POST(authRouter, "/submitClaim", s.settlementDomain.SubmitClaim)
		router.POST(authRouter, "/submitMint", s.settlementDomain.SubmitMint)
		router.GET(authRouter, "/getMySettlements", s.settlementDomain.GetMySettlements)
		router.POST(authRouter, "/reconcile", s.settlementDomain.Reconcile)
		router.POST(authRouter, "/verifyCompletion", s.questDomain.VerifyCompletion)
	}

	// Public API.
	router.POST(s.router, "/walletLogin", s.authDomain.WalletLogin)
	router.POST(s.router, "/walletVerify", s.authDomain.WalletVerify)
	router.GET(s.router, "/getQuests", s.questDomain.GetQuests)
}
