package serve

import (
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"doc-search/cmd/common"
	"doc-search/config"
	"doc-search/service"
)

func Serve(ctx *cli.Context) error {
	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	engine, logger, cleanup, err := common.Engine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	runCtx, stop := signal.NotifyContext(ctx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return service.Run(runCtx, cfg.Addr(), service.NewRouter(engine, logger), logger)
}
