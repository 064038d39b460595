package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "WanderQuest"
	app.Usage = "Reward settlement backend"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path of the configuration file",
			Value: "config.toml",
		},
	}
	app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Api",
			Description: `Serve the quest, claim, and mint APIs.`,
		},
		{
			Action:      s.startReconciler,
			Name:        "reconciler",
			Usage:       "Start the settlement reconciler",
			Category:    "Worker",
			Description: `Periodically complete interrupted settlements against the ledger.`,
		},
		{
			Action:      s.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate database tables",
			Category:    "Database",
			Description: `Create or update every table of the record store.`,
		},
	}

	s.app = app
}
