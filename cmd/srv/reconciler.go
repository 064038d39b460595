package main

import (
	"time"

	"github.com/urfave/cli/v2"
	"github.com/wanderquest-labs/backend/pkg/xcontext"
)

// The reconciler sweeps submitted settlements against the ledger so that
// interrupted requests eventually converge. Safe to run alongside the api
// service; it never submits transactions.
func (s *srv) startReconciler(cctx *cli.Context) error {
	s.loadConfig(cctx)
	s.loadLogger()
	s.loadDatabase()
	s.loadSnowFlake()
	s.loadRepos()
	s.loadLedger()
	s.loadDomains()

	frequency := xcontext.Configs(s.ctx).Ledger.ReconcileFrequency
	xcontext.Logger(s.ctx).Infof("Starting reconciler with frequency %s", frequency)

	for {
		s.settlementDomain.ReconcilePending(s.ctx)

		select {
		case <-s.ctx.Done():
			return s.ctx.Err()
		case <-time.After(frequency):
		}
	}
}
