package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/moimlab/moim/internal/clock"
	"github.com/moimlab/moim/internal/config"
	"github.com/moimlab/moim/internal/migration"
	"github.com/moimlab/moim/internal/observability"
	"github.com/moimlab/moim/internal/server"
	"github.com/moimlab/moim/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
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
