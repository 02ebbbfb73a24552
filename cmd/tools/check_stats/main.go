package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/david/becas-dashboard/internal/config"
	"github.com/david/becas-dashboard/internal/dataset"
	"github.com/david/becas-dashboard/internal/ingest"
	"github.com/david/becas-dashboard/internal/refresh"
	"github.com/david/becas-dashboard/internal/views"
)

// check_stats runs one refresh against the configured sources and prints the
// per-scholarship statistics view.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	viewReg, err := views.LoadViews(cfg.ViewsPath)
	if err != nil {
		log.Fatal(err)
	}
	projector, err := views.NewProjector(viewReg)
	if err != nil {
		log.Fatal(err)
	}
	sources, err := ingest.LoadRegistry(cfg.SourcesPath, cfg.RegistryDefaults())
	if err != nil {
		log.Fatal(err)
	}
	sources.ApplyFetchDefaults(cfg.FetchTimeout, cfg.FetchMaxRetries)
	loader, err := ingest.NewLoader(sources, &ingest.Router{})
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store := dataset.NewStore()
	coord := refresh.New(loader, store, projector, refresh.Options{})
	if err := coord.Refresh(ctx); err != nil {
		log.Fatal(err)
	}

	res, err := projector.Project(store.Current(), "estadisticas", views.FilterState{})
	if err != nil {
		log.Fatal(err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	header := table.Row{}
	for _, c := range res.Table.Columns {
		header = append(header, c)
	}
	t.AppendHeader(header)
	for _, r := range res.Table.Rows {
		row := table.Row{}
		for _, v := range r {
			row = append(row, v)
		}
		t.AppendRow(row)
	}
	t.AppendFooter(table.Row{"Codes", len(res.Table.Rows)})
	t.Render()
}
