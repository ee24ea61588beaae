package download

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/urfave/cli/v2"

	"doc-search/manifest"
)

const (
	defaultMaxItems = 10
)

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "url", Required: true, Usage: "RSS or Atom feed to import"},
		&cli.StringFlag{Name: "output", Value: manifest.DefaultPath, Usage: "document source to create or extend"},
		&cli.IntFlag{Name: "max", Value: defaultMaxItems, Usage: "maximum number of new items to import"},
	}
}

func Download(ctx *cli.Context) error {
	feedURL := ctx.String("url")
	output := ctx.String("output")
	maxItems := ctx.Int("max")

	// Extend the existing document source if there is one, a missing or empty one starts fresh
	records, err := manifest.Load(output)
	switch {
	case err == nil:
	case errors.Is(err, manifest.ErrMissing), errors.Is(err, manifest.ErrNoDocuments):
		records = nil
	default:
		return fmt.Errorf("unexpected error reading document source: %w", err)
	}
	existing := make(map[manifest.ID]bool, len(records))
	for _, record := range records {
		existing[record.ID] = true
	}

	fp := gofeed.NewParser()
	feed, err := fp.ParseURLWithContext(feedURL, ctx.Context)
	if err != nil {
		return fmt.Errorf("failed to process feed from %s: %w", feedURL, err)
	}

	var processedItems = 0
	for _, item := range feed.Items {
		if processedItems >= maxItems {
			break
		}

		record, ok := recordFromItem(item)
		if !ok {
			fmt.Fprintf(ctx.App.ErrWriter, "skipping item without id or text: %q\n", item.Title)
			continue
		}
		if existing[record.ID] {
			fmt.Fprintf(ctx.App.ErrWriter, "skipping existing item %s\n", record.ID)
			continue
		}

		existing[record.ID] = true
		records = append(records, record)
		processedItems++
	}

	if len(records) == 0 {
		return fmt.Errorf("%w: feed %s has no usable items", manifest.ErrNoDocuments, feedURL)
	}

	err = manifest.Write(output, records)
	if err != nil {
		return fmt.Errorf("failed to write document source: %w", err)
	}
	fmt.Fprintf(ctx.App.Writer, "Imported %d items from %s into %s (%d documents)\n", processedItems, feed.Title, output, len(records))

	return nil
}

func recordFromItem(item *gofeed.Item) (manifest.Record, bool) {
	id := item.GUID
	if id == "" {
		id = item.Link
	}

	body := item.Description
	if body == "" {
		body = item.Content
	}
	text := strings.TrimSpace(item.Title)
	if plain := plainText(body); plain != "" {
		if text != "" {
			text += ". "
		}
		text += plain
	}

	if id == "" || text == "" {
		return manifest.Record{}, false
	}
	return manifest.Record{ID: manifest.ID(id), Text: text}, true
}

// plainText drops markup from feed descriptions and collapses whitespace.
func plainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.Join(strings.Fields(html), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
