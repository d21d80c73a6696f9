package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"invoice-console/config"
	"invoice-console/internal/document"
	"invoice-console/internal/gateway/clients"
	"invoice-console/internal/listing"
	"invoice-console/internal/store"
	"invoice-console/internal/tui"
	"invoice-console/internal/utils"
)

func main() {
	app := &cli.App{
		Name:  "invoicectl",
		Usage: "browse and edit Aquakart invoices from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "token",
				Usage:   "bearer token forwarded to the invoice API",
				EnvVars: []string{"INVOICE_TOKEN"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "tui",
				Usage:  "open the interactive invoice console",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "out", Value: ".", Usage: "directory for PDF and XLSX files"}},
				Action: runTUI,
			},
			{
				Name:  "list",
				Usage: "print one page of invoices",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category", Value: string(listing.CategoryAll), Usage: "all, regular, gst, po or quotation"},
					&cli.StringFlag{Name: "search", Usage: "invoice number or customer name"},
					&cli.IntFlag{Name: "page", Value: 1},
					&cli.IntFlag{Name: "page-size"},
				},
				Action: runList,
			},
			{
				Name:  "export",
				Usage: "write the filtered invoices to an XLSX workbook",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category", Value: string(listing.CategoryAll)},
					&cli.StringFlag{Name: "search"},
					&cli.StringFlag{Name: "out", Value: "."},
				},
				Action: runExport,
			},
			{
				Name:  "token",
				Usage: "issue a console token for an operator",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "name"},
				},
				Action: runToken,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCollection(cfg config.Config) (*clients.InvoiceClient, *store.Collection) {
	client := clients.NewInvoiceClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
	return client, store.NewCollection(client, nil)
}

// loadOnce fetches the collection, reporting the advisory when the sample
// dataset is shown instead.
func loadOnce(cfg config.Config, collection *store.Collection) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Upstream.Timeout)
	defer cancel()
	if err := collection.Load(ctx); err != nil {
		log.Printf("Error loading invoices: %v", err)
	}
	if advisory := collection.Advisory(); advisory != "" {
		fmt.Fprintln(os.Stderr, advisory)
	}
}

func runTUI(c *cli.Context) error {
	cfg := config.LoadConfig()
	client, collection := newCollection(cfg)

	m := tui.New(tui.Options{
		Collection:    collection,
		Saver:         client,
		Deleter:       client,
		Token:         c.String("token"),
		PageSize:      cfg.Listing.PageSize,
		ResetOnFilter: cfg.Listing.ResetOnFilter,
		OutputDir:     c.String("out"),
		Timeout:       cfg.Upstream.Timeout,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run console: %w", err)
	}
	return nil
}

func runList(c *cli.Context) error {
	category, err := listing.ParseCategory(c.String("category"))
	if err != nil {
		return err
	}

	cfg := config.LoadConfig()
	_, collection := newCollection(cfg)
	loadOnce(cfg, collection)

	perPage := c.Int("page-size")
	if perPage <= 0 {
		perPage = cfg.Listing.PageSize
	}
	page := listing.Apply(collection.Snapshot(), listing.Query{
		Category: category,
		Search:   c.String("search"),
		Page:     max(c.Int("page"), 1),
		PerPage:  perPage,
	})

	for _, row := range page.Rows() {
		fmt.Printf("%-14s %-24s %-12s %16s\n", row.InvoiceNo, row.CustomerName, row.Date, row.TotalDisplay)
	}
	p := page.Pagination
	fmt.Printf("page %d of %d, %d invoices\n", p.CurrentPage, p.TotalPages, p.TotalItems)
	return nil
}

func runExport(c *cli.Context) error {
	category, err := listing.ParseCategory(c.String("category"))
	if err != nil {
		return err
	}

	cfg := config.LoadConfig()
	_, collection := newCollection(cfg)
	loadOnce(cfg, collection)

	invoices := listing.Filter(collection.Snapshot(), category, c.String("search"))
	path := filepath.Join(c.String("out"), document.XLSXFilename(time.Now()))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := document.WriteXLSX(f, invoices); err != nil {
		f.Close()
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Exported %d invoices to %s\n", len(invoices), path)
	return nil
}

func runToken(c *cli.Context) error {
	cfg := config.LoadConfig()
	token, expiresAt, err := utils.GenerateToken([]byte(cfg.Auth.JWTSecret), c.String("email"), c.String("name"), cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}
	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", expiresAt.Format(time.RFC3339))
	return nil
}
