// Package acquisition runs the scrape, clean, authenticate and import chain
// that feeds new web content into the knowledge graph.
package acquisition

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yungbote/geograph/internal/config"
	"github.com/yungbote/geograph/internal/firecrawl"
	"github.com/yungbote/geograph/internal/importer"
	"github.com/yungbote/geograph/internal/platform/logger"
	"github.com/yungbote/geograph/internal/textproc"
)

const (
	ScrapedDataFile   = "scraped_data.json"
	ProcessedTextFile = "processed_text.txt"
)

type Scraper interface {
	ScrapeAll(ctx context.Context, urls []string) ([]firecrawl.Page, error)
}

type Authenticator interface {
	Login(ctx context.Context) (bool, error)
}

type DatasetImporter interface {
	ImportFullDataset(ctx context.Context, graphContext string) (importer.Stats, error)
}

type Stats struct {
	URLsScraped           int      `json:"urls_scraped"`
	ContentSize           int      `json:"content_size"`
	Context               string   `json:"infranodus_context"`
	KeywordsImported      int64    `json:"keywords_imported"`
	ClustersImported      int64    `json:"clusters_imported"`
	RelationshipsImported int64    `json:"relationships_imported"`
	GapsIdentified        int64    `json:"gaps_identified"`
	PromptsGenerated      int64    `json:"prompts_generated"`
	Errors                []string `json:"errors"`
}

type Pipeline struct {
	scraper   Scraper
	auth      Authenticator
	importer  DatasetImporter
	cfg       config.AcquisitionConfig
	outputDir string
	log       *logger.Logger
}

func New(scraper Scraper, auth Authenticator, imp DatasetImporter, cfg config.AcquisitionConfig, outputDir string, log *logger.Logger) (*Pipeline, error) {
	if scraper == nil || auth == nil || imp == nil {
		return nil, fmt.Errorf("acquisition: scraper, authenticator and importer required")
	}
	if log == nil {
		return nil, fmt.Errorf("acquisition: logger required")
	}
	if outputDir == "" {
		outputDir = "."
	}
	return &Pipeline{
		scraper:   scraper,
		auth:      auth,
		importer:  imp,
		cfg:       cfg,
		outputDir: outputDir,
		log:       log.With("component", "AcquisitionPipeline"),
	}, nil
}

// Run never returns an error: each failure is recorded in Stats.Errors and
// ends the run at that step. Nothing scraped ends the run quietly.
func (p *Pipeline) Run(ctx context.Context, urls []string, graphContext string) Stats {
	if graphContext == "" {
		graphContext = p.cfg.Context
	}
	stats := Stats{Context: graphContext, Errors: []string{}}
	log := p.log.With("context", graphContext)
	fail := func(step string, err error) Stats {
		log.Error("Pipeline step failed", "step", step, "error", err)
		stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", step, err))
		return stats
	}

	log.Info("Step 1/4: scraping web content", "urls", len(urls))
	pages, err := p.scraper.ScrapeAll(ctx, urls)
	stats.URLsScraped = len(pages)
	if err != nil {
		return fail("scrape", err)
	}
	if len(pages) == 0 {
		log.Warn("No content scraped; pipeline aborted")
		return stats
	}
	if err := p.saveJSON(ScrapedDataFile, pages); err != nil {
		return fail("save scraped data", err)
	}

	log.Info("Step 2/4: cleaning text")
	docs := make([]textproc.Document, 0, len(pages))
	for _, pg := range pages {
		docs = append(docs, textproc.Document{Title: pg.Title, Content: pg.Content})
	}
	text := textproc.Prepare(docs)
	stats.ContentSize = len(text)
	processed := filepath.Join(p.outputDir, ProcessedTextFile)
	if err := os.WriteFile(processed, []byte(text), 0o644); err != nil {
		return fail("save processed text", err)
	}
	log.Info("Processed text saved", "path", processed, "chars", stats.ContentSize)

	log.Info("Step 3/4: authenticating with content-graph service")
	ok, err := p.auth.Login(ctx)
	if err != nil {
		return fail("authenticate", err)
	}
	if !ok {
		return fail("authenticate", importer.ErrAuthentication)
	}
	// The text upload itself is done by an operator in the service UI.
	log.Info("Manual step required: import processed text into the context", "path", processed)

	if d := p.cfg.SettleDelay.Duration; d > 0 {
		log.Info("Waiting for the service to process text", "delay", d.String())
		t := time.NewTimer(d)
		select {
		case <-ctx.Done():
			t.Stop()
			return fail("settle", ctx.Err())
		case <-t.C:
		}
	}

	log.Info("Step 4/4: importing into knowledge graph")
	is, err := p.importer.ImportFullDataset(ctx, graphContext)
	stats.KeywordsImported = is.Keywords
	stats.ClustersImported = is.Clusters
	stats.RelationshipsImported = is.CoOccurrences + is.ClusterLinks
	stats.GapsIdentified = is.Gaps
	stats.PromptsGenerated = is.Prompts
	if err != nil {
		return fail("import", err)
	}

	log.Info("Pipeline completed",
		"urls_scraped", stats.URLsScraped,
		"content_size", stats.ContentSize,
		"keywords", stats.KeywordsImported,
		"clusters", stats.ClustersImported,
		"relationships", stats.RelationshipsImported,
		"gaps", stats.GapsIdentified,
		"prompts", stats.PromptsGenerated,
	)
	return stats
}

func (p *Pipeline) saveJSON(name string, v any) error {
	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(p.outputDir, name)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return err
	}
	p.log.Info("Saved file", "path", path)
	return nil
}
