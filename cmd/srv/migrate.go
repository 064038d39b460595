package main

import (
	"github.com/urfave/cli/v2"
	"github.com/wanderquest-labs/backend/internal/entity"
	"github.com/wanderquest-labs/backend/pkg/xcontext"
)

func (s *srv) startMigrate(cctx *cli.Context) error {
	s.loadConfig(cctx)
	s.loadLogger()
	s.loadDatabase()

	if err := entity.MigrateTable(s.ctx); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Migrated database tables")
	return nil
}
