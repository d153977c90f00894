package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli"
	"gorm.io/gorm"

	"pahla_backend/internals/configs"
	database "pahla_backend/internals/databases"
	"pahla_backend/internals/features/nominations/reminders"
	"pahla_backend/internals/features/nominations/repository"
	"pahla_backend/internals/helpers/mailer"
	"pahla_backend/internals/logger"
	"pahla_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()
	cfg := configs.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	app := cli.NewApp()
	app.Name = "nomctl"
	app.Usage = "PAHLA nominations maintenance: schema, seed data and reminders"

	timeout := cli.DurationFlag{
		Name:  "timeout",
		Usage: "overall deadline for the command",
		Value: 10 * time.Minute,
	}

	app.Commands = []cli.Command{
		{
			Name:  "migrate",
			Usage: "Create or update the database schema",
			Flags: []cli.Flag{timeout},
			Action: func(clictx *cli.Context) error {
				return withDB(cfg, func(db *gorm.DB) error {
					if err := database.Migrate(db); err != nil {
						return cli.NewExitError(fmt.Sprintf("migrate: %v", err), 1)
					}
					fmt.Println("schema up to date")
					return nil
				})
			},
		},
		{
			Name:  "seed",
			Usage: "Load the award catalogue and the bootstrap admin",
			Flags: []cli.Flag{
				timeout,
				cli.StringFlag{Name: "awards-file", Usage: "JSON file overriding the embedded award catalogue"},
			},
			Action: func(clictx *cli.Context) error {
				ctx, cancel := context.WithTimeout(context.Background(), clictx.Duration("timeout"))
				defer cancel()
				return withDB(cfg, func(db *gorm.DB) error {
					if err := seeds.RunAllSeeds(ctx, db, clictx.String("awards-file")); err != nil {
						return cli.NewExitError(fmt.Sprintf("seed: %v", err), 1)
					}
					fmt.Println("seed complete")
					return nil
				})
			},
		},
		{
			Name:  "remind",
			Usage: "Email continuation links to nominators of unfinished nominations",
			Flags: []cli.Flag{
				timeout,
				cli.BoolFlag{Name: "all", Usage: "every draft or incomplete nomination"},
				cli.StringFlag{Name: "id", Usage: "a single nomination id"},
				cli.StringFlag{Name: "site-url", Usage: "base URL for continuation links", Value: cfg.SiteURL},
			},
			Action: func(clictx *cli.Context) error {
				req := reminders.Request{SendToAll: clictx.Bool("all"), SiteURL: clictx.String("site-url")}
				if raw := clictx.String("id"); raw != "" {
					id, err := uuid.Parse(raw)
					if err != nil {
						return cli.NewExitError("--id must be a UUID", 2)
					}
					req.NominationID = &id
				}

				ctx, cancel := context.WithTimeout(context.Background(), clictx.Duration("timeout"))
				defer cancel()
				return withDB(cfg, func(db *gorm.DB) error {
					d := &reminders.Dispatcher{
						Store:       repository.NewNominationStore(db),
						Mailer:      mailer.New(cfg.SMTP),
						Renderer:    mailer.NewRenderer(),
						SiteURL:     cfg.SiteURL,
						Concurrency: cfg.ReminderConcurrency,
					}
					res, err := d.Dispatch(ctx, req)
					if errors.Is(err, reminders.ErrNoTarget) {
						return cli.NewExitError("pass --all or --id", 2)
					}
					if err != nil {
						return cli.NewExitError(fmt.Sprintf("remind: %v", err), 1)
					}
					for _, r := range res.Results {
						if r.Success {
							fmt.Printf("sent    %s  %s\n", r.NominationID, r.Email)
						} else {
							fmt.Printf("failed  %s  %s\n", r.NominationID, r.Error)
						}
					}
					fmt.Printf("%d sent, %d failed\n", res.SuccessCount, res.FailureCount)
					return nil
				})
			},
		},
	}

	app.Action = func(clictx *cli.Context) error {
		fmt.Printf("Must specify command. Run `%s help` for info\n", app.Name)
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		logger.With("nomctl").Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func withDB(cfg *configs.Config, fn func(db *gorm.DB) error) error {
	db, err := configs.InitSeederDB(cfg.DB)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	return fn(db)
}
