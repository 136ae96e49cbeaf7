package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/vyaparlabs/gstbill/internal/migration"
	"github.com/vyaparlabs/gstbill/internal/observability"
	"github.com/vyaparlabs/gstbill/internal/server"
	"github.com/vyaparlabs/gstbill/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func registerSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
