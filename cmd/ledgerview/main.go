package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/ledgerview/internal/clock"
	"github.com/smallbiznis/ledgerview/internal/config"
	"github.com/smallbiznis/ledgerview/internal/migration"
	"github.com/smallbiznis/ledgerview/internal/observability"
	"github.com/smallbiznis/ledgerview/internal/providers"
	"github.com/smallbiznis/ledgerview/internal/scheduler"
	"github.com/smallbiznis/ledgerview/internal/server"
	"github.com/smallbiznis/ledgerview/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		providers.Module,

		migration.Module,
		server.Module,
		scheduler.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
