// Package app wires configuration, stores, clients and services into one
// process-wide graph of dependencies shared by the binaries under cmd/.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/geograph/internal/acquisition"
	"github.com/yungbote/geograph/internal/analytics"
	"github.com/yungbote/geograph/internal/config"
	"github.com/yungbote/geograph/internal/firecrawl"
	"github.com/yungbote/geograph/internal/graphrag"
	"github.com/yungbote/geograph/internal/importer"
	"github.com/yungbote/geograph/internal/infranodus"
	"github.com/yungbote/geograph/internal/monitoring"
	"github.com/yungbote/geograph/internal/observability"
	"github.com/yungbote/geograph/internal/platform/logger"
	"github.com/yungbote/geograph/internal/platform/neo4jdb"
	"github.com/yungbote/geograph/internal/platform/redisdb"
)

type App struct {
	Cfg *config.Config
	Log *logger.Logger

	Graph      *neo4jdb.Client
	Redis      *redisdb.Client
	InfraNodus *infranodus.Client
	Firecrawl  *firecrawl.Client

	Analytics   *analytics.Library
	Answerer    *graphrag.Engine
	Importer    *importer.Importer
	Monitor     *monitoring.Monitor
	Snapshots   *monitoring.SnapshotStore
	Acquisition *acquisition.Pipeline
	Metrics     *observability.Metrics

	shutdownTracing func(context.Context) error
}

// New loads configuration and connects every dependency. Neo4j is required.
// Redis is optional: with no address, or when it cannot be reached, the app
// runs without report snapshots.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log.Info("Loaded configuration", "env", cfg.Env, "neo4j", cfg.Neo4j.URI, "infranodus", cfg.InfraNodus.BaseURL)

	a := &App{Cfg: cfg, Log: log, Metrics: observability.NewMetrics()}
	a.shutdownTracing = observability.InitTracing(ctx, log, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Env,
	})

	if err := a.wireClients(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.wireServices(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wireClients(ctx context.Context) error {
	graph, err := neo4jdb.New(ctx, a.Cfg.Neo4j, a.Log)
	if err != nil {
		return fmt.Errorf("init neo4j: %w", err)
	}
	a.Graph = graph

	if a.Cfg.Redis.Addr != "" {
		rdb, err := redisdb.New(ctx, a.Cfg.Redis, a.Log)
		if err != nil {
			a.Log.Warn("redis unavailable, report snapshots disabled", "addr", a.Cfg.Redis.Addr, "error", err)
		} else {
			a.Redis = rdb
		}
	}

	inx, err := infranodus.New(a.Cfg.InfraNodus, a.Log)
	if err != nil {
		return fmt.Errorf("init infranodus: %w", err)
	}
	a.InfraNodus = inx

	fc, err := firecrawl.New(a.Cfg.Firecrawl, a.Log)
	if err != nil {
		return fmt.Errorf("init firecrawl: %w", err)
	}
	a.Firecrawl = fc
	return nil
}

func (a *App) wireServices() error {
	var err error
	if a.Analytics, err = analytics.New(a.Graph, a.Log); err != nil {
		return err
	}
	if a.Answerer, err = graphrag.New(a.Analytics, a.Log); err != nil {
		return err
	}
	if a.Importer, err = importer.New(a.Graph, a.InfraNodus, a.Cfg.Import, a.Log); err != nil {
		return err
	}
	if a.Monitor, err = monitoring.New(a.Graph, a.Analytics, a.Cfg.Monitoring, a.Log, monitoring.WithInfraNodus(a.InfraNodus)); err != nil {
		return err
	}
	if a.Redis != nil {
		if a.Snapshots, err = monitoring.NewSnapshotStore(a.Redis.Redis(), a.Redis.KeyPrefix(), a.Redis.HistoryLimit(), a.Log); err != nil {
			return err
		}
	}
	if a.Acquisition, err = acquisition.New(a.Firecrawl, a.InfraNodus, a.Importer, a.Cfg.Acquisition, a.Cfg.OutputDir, a.Log); err != nil {
		return err
	}
	return nil
}

// Close releases every handle that was opened. It is safe on a partly wired
// App.
func (a *App) Close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.InfraNodus != nil {
		a.InfraNodus.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Warn("redis close failed", "error", err)
		}
	}
	if a.Graph != nil {
		if err := a.Graph.Close(ctx); err != nil {
			a.Log.Warn("neo4j close failed", "error", err)
		}
	}
	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(ctx); err != nil {
			a.Log.Warn("tracing shutdown failed", "error", err)
		}
	}
	a.Log.Sync()
}
