package cmd

import (
	"github.com/urfave/cli"

	"github.com/kellandavis/lumenmlt/log"
)

var logger = log.New("lumenmlt")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}
	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
