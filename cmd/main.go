package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"doc-search/cmd/download"
	"doc-search/cmd/query"
	"doc-search/cmd/serve"
	"doc-search/config"
)

func main() {
	config.LoadDotEnv(slog.Default())

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "doc-search",
		Usage: "Semantic search over a small document corpus",
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"s"},
				Usage:   "Embed the corpus and serve /basic and /with-gpt over HTTP",
				Flags:   config.Flags(),
				Action:  serve.Serve,
			},
			{
				Name:      "query",
				Aliases:   []string{"q"},
				Usage:     "Run a single search against the corpus",
				ArgsUsage: "<query>",
				Flags:     append(config.Flags(), query.Flags()...),
				Action:    query.Query,
			},
			{
				Name:    "import-feed",
				Aliases: []string{"i"},
				Usage:   "Turn the items of an RSS or Atom feed into a document source",
				Flags:   download.Flags(),
				Action:  download.Download,
			},
		},
	}
}
