package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/mentorlane/mentorlane/internal/config"
	"github.com/mentorlane/mentorlane/internal/migration"
	"github.com/mentorlane/mentorlane/internal/observability"
	"github.com/mentorlane/mentorlane/internal/server"
	"github.com/mentorlane/mentorlane/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
