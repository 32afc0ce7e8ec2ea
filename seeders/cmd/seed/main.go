package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cmms-system/pkg/config"
	"cmms-system/pkg/database/postgresql"
	applogger "cmms-system/pkg/logger"
	"cmms-system/seeders"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *pgxpool.Pool
}

func newRootCmd() *cobra.Command {
	// config.New подгружает .env до чтения значений флагов по умолчанию
	a := &app{cfg: config.New()}
	var adminEmail, adminPassword string

	root := &cobra.Command{
		Use:           "seed",
		Short:         "Миграции и наполнение БД CMMS",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.logger = applogger.NewLogger(a.cfg.Log.Level, "")
			db, err := postgresql.ConnectDB(cmd.Context(), a.cfg.Postgres.DSN, a.logger)
			if err != nil {
				return err
			}
			a.db = db
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.db != nil {
				a.db.Close()
			}
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&adminEmail, "admin-email", envOr("ADMIN_EMAIL", "admin@cmms.local"), "email администратора")
	root.PersistentFlags().StringVar(&adminPassword, "admin-password", os.Getenv("ADMIN_PASSWORD"), "пароль администратора")

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Применить миграции",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return postgresql.Migrate(cmd.Context(), a.db, a.logger)
		},
	}

	rollback := &cobra.Command{
		Use:   "rollback",
		Short: "Откатить последнюю миграцию",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return postgresql.Rollback(cmd.Context(), a.db)
		},
	}

	seed := &cobra.Command{
		Use:   "seed",
		Short: "Создать администратора и загрузить демонстрационные данные",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.seed(cmd.Context(), adminEmail, adminPassword)
		},
	}

	all := &cobra.Command{
		Use:   "all",
		Short: "migrate + seed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := postgresql.Migrate(cmd.Context(), a.db, a.logger); err != nil {
				return err
			}
			return a.seed(cmd.Context(), adminEmail, adminPassword)
		},
	}

	root.AddCommand(migrate, rollback, seed, all)
	return root
}

func (a *app) seed(ctx context.Context, adminEmail, adminPassword string) error {
	data, err := seeders.LoadDemoData()
	if err != nil {
		return err
	}
	s := seeders.New(a.db, a.logger)
	if err := s.SeedAdmin(ctx, adminEmail, adminPassword); err != nil {
		return err
	}
	return s.SeedDemo(ctx, data)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
