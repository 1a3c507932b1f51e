package migration

import (
	"strings"

	"github.com/mentorlane/mentorlane/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if strings.ToLower(strings.TrimSpace(cfg.DBType)) != "postgres" {
			// Non-postgres databases are used for local development and
			// tests, where the schema is created by AutoMigrate.
			log.Info("skipping sql migrations", zap.String("db_type", cfg.DBType))
			return conn.AutoMigrate(models()...)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
