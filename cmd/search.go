package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/spiralbewilder/mlk-archive-search/pkg/config"
	"github.com/spiralbewilder/mlk-archive-search/pkg/search"
	"github.com/spiralbewilder/mlk-archive-search/pkg/storage"
)

// Define styles using lipgloss
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	resultStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1).
			Margin(0, 0, 1, 2)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	summaryStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("32"))

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33"))

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Margin(1, 0)
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the document archive from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "query",
				Usage: "Search query (AND, OR, NOT and \"quoted phrases\" supported)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results",
				Value: 10,
			},
			&cli.IntFlag{
				Name:  "offset",
				Usage: "Number of results to skip",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return searchArchive(c.String("config"), c.String("query"), c.Int("limit"), c.Int("offset"))
		},
	}
}

// searchArchive runs a query against the archive and renders results
func searchArchive(configPath, rawQuery string, limit, offset int) error {
	if strings.TrimSpace(rawQuery) == "" {
		return fmt.Errorf("query is required (use --query)")
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Printf("Warning: failed to close database: %v\n", err)
		}
	}()

	service := search.NewService(store, cfg.ContextWords, cfg.PDFBaseURL, cfg.ArchiveURIPrefix)
	resp, err := service.Search(search.Params{Query: rawQuery, Limit: limit, Offset: offset})
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Results for %q", resp.Query)))

	if len(resp.Results) == 0 {
		fmt.Println(noDataStyle.Render("No results found"))
		return nil
	}

	titler := cases.Title(language.English)
	for i, r := range resp.Results {
		var b strings.Builder
		heading := r.Filename
		if heading == "" {
			heading = r.ElementID
		}
		b.WriteString(fmt.Sprintf("%d. %s\n", offset+i+1, titler.String(strings.TrimSuffix(heading, ".pdf"))))
		b.WriteString(r.Snippet)
		b.WriteString("\n")
		if len(r.HighlightedTerms) > 0 {
			b.WriteString(metaStyle.Render("matched: " + strings.Join(r.HighlightedTerms, ", ")))
			b.WriteString("\n")
		}
		if r.PDFURL != "" {
			b.WriteString(urlStyle.Render(r.PDFURL))
		}
		fmt.Println(resultStyle.Render(strings.TrimRight(b.String(), "\n")))
	}

	shown := len(resp.Results)
	fmt.Println(summaryStyle.Render(fmt.Sprintf("Showing %d-%d of %d matching documents", offset+1, offset+shown, resp.Total)))
	return nil
}
