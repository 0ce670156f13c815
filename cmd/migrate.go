package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"marketplace_api/internal/config"
	"marketplace_api/pkg/database"
	"marketplace_api/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "执行嵌入的数据库迁移",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "应用全部未执行的迁移",
	RunE: func(_ *cobra.Command, _ []string) error {
		initializer, err := newMigrator()
		if err != nil {
			return err
		}
		return initializer.MigrateUp()
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "回滚迁移，省略 steps 时全部回滚",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		steps := 0
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			steps = n
		}

		initializer, err := newMigrator()
		if err != nil {
			return err
		}
		return initializer.MigrateDown(steps)
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}

// newMigrator 迁移只需要 DSN，不建立 gorm 连接
func newMigrator() (*database.Initializer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if _, err := logger.Init(cfg.Server.Mode); err != nil {
		return nil, err
	}
	return database.NewInitializer(nil, database.InitOptions{DSN: cfg.Database.DSN}), nil
}
