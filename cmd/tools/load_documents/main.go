package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/david/becas-dashboard/internal/config"
	"github.com/david/becas-dashboard/internal/db"
	"github.com/david/becas-dashboard/internal/ingest"
)

// load_documents copies a dataset document from any supported location into
// Postgres so it can be served as pg://<name>.
func main() {
	name := flag.String("name", "", "Document name (e.g., beca18)")
	from := flag.String("from", "", "Source location: path, file://, http(s)://, or s3://")
	list := flag.Bool("list", false, "List stored documents and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	store := db.NewDocumentStore(pool)

	if *list {
		printDocuments(ctx, store)
		return
	}
	if *name == "" || *from == "" {
		log.Fatal("Please provide -name and -from")
	}

	router := &ingest.Router{}
	s3f, err := ingest.NewS3Fetcher(ctx, ingest.S3Config{
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		PathStyle: cfg.S3PathStyle,
	})
	if err != nil {
		log.Printf("S3 disabled: %v", err)
	} else {
		router.S3 = s3f
	}

	doc, err := router.Fetch(ctx, *from)
	if err != nil {
		log.Fatalf("Fetch failed: %v", err)
	}
	body, err := ingest.ReadDocument(doc)
	if err != nil {
		log.Fatalf("Read failed: %v", err)
	}
	if err := store.PutDocument(ctx, *name, *from, body); err != nil {
		log.Fatalf("Store failed: %v", err)
	}
	log.Printf("Stored %s (%d bytes) from %s", *name, len(body), *from)
}

func printDocuments(ctx context.Context, store *db.DocumentStore) {
	docs, err := store.ListDocuments(ctx)
	if err != nil {
		log.Fatal(err)
	}
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Name", "Source", "Size", "Updated At"})
	for _, d := range docs {
		t.AppendRow(table.Row{d.Name, d.Source, d.SizeBytes, d.UpdatedAt.Format("2006-01-02 15:04:05")})
	}
	t.Render()
}
