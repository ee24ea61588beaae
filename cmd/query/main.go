package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"doc-search/cmd/common"
)

var errNoQuery = errors.New("no query given")

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "gpt", Usage: "synthesize an answer from the best match"},
		&cli.IntFlag{Name: "top", Usage: "list the top N matches with their scores instead"},
		&cli.BoolFlag{Name: "raw", Usage: "print answers without markdown rendering"},
	}
}

func Query(ctx *cli.Context) error {
	userQuery := strings.Join(ctx.Args().Slice(), " ")
	if strings.TrimSpace(userQuery) == "" {
		return errNoQuery
	}

	engine, _, cleanup, err := common.Engine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	out := ctx.App.Writer

	if top := ctx.Int("top"); top > 0 {
		matches, err := engine.Rank(ctx.Context, userQuery, top)
		if err != nil {
			return fmt.Errorf("failed to rank documents: %w", err)
		}
		score := color.New(color.FgGreen).SprintfFunc()
		id := color.New(color.Bold).SprintFunc()
		for _, match := range matches {
			fmt.Fprintf(out, "%s %s %s\n", score("[%.4f]", match.Score), id(match.ID), match.Text)
		}
		return nil
	}

	if !ctx.Bool("gpt") {
		response, err := engine.BasicSearch(ctx.Context, userQuery)
		if err != nil {
			return fmt.Errorf("basic search failed: %w", err)
		}
		fmt.Fprintln(out, response.Message)
		return nil
	}

	response, err := engine.SynthesizedSearch(ctx.Context, userQuery)
	if err != nil {
		return fmt.Errorf("synthesized search failed: %w", err)
	}
	if ctx.Bool("raw") {
		fmt.Fprintln(out, response.Message)
		return nil
	}

	rendered, err := glamour.Render(response.Message, "dark")
	if err != nil {
		return fmt.Errorf("failed to render answer: %w", err)
	}
	fmt.Fprint(out, rendered)
	fmt.Fprintln(out, color.New(color.Faint).Sprintf("source: document %s (%.4f)", response.DocumentID, response.Score))
	return nil
}
