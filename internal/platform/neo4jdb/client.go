package neo4jdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/geograph/internal/config"
	"github.com/yungbote/geograph/internal/graphdb"
	"github.com/yungbote/geograph/internal/platform/logger"
)

// Client owns the driver. It is safe for concurrent use; every call opens
// its own session.
type Client struct {
	Driver   neo4j.DriverWithContext
	Database string
	log      *logger.Logger
	tracer   trace.Tracer
}

var _ graphdb.Runner = (*Client)(nil)

func New(ctx context.Context, cfg config.Neo4jConfig, log *logger.Logger) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("neo4jdb: logger required")
	}
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return nil, fmt.Errorf("neo4jdb: missing uri")
	}
	user := strings.TrimSpace(cfg.User)
	if user == "" {
		user = "neo4j"
	}
	timeout := cfg.Timeout.Duration
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxPool := cfg.MaxPoolSize
	if maxPool <= 0 {
		maxPool = 50
	}

	auth := neo4j.BasicAuth(user, cfg.Password, "")
	driver, err := neo4j.NewDriverWithContext(uri, auth, func(c *neo4j.Config) {
		c.MaxConnectionPoolSize = maxPool
		c.SocketConnectTimeout = timeout
	})
	if err != nil {
		return nil, fmt.Errorf("neo4jdb: init driver: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	vctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(vctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4jdb: verify connectivity: %w", err)
	}

	log.Info("neo4j connected", "uri", uri, "database", cfg.Database, "max_pool_size", maxPool)
	return &Client{
		Driver:   driver,
		Database: strings.TrimSpace(cfg.Database),
		log:      log.With("client", "Neo4jDB"),
		tracer:   otel.Tracer("geograph/neo4jdb"),
	}, nil
}

func (c *Client) Read(ctx context.Context, cypher string, params map[string]any) ([]graphdb.Row, error) {
	return c.run(ctx, neo4j.AccessModeRead, cypher, params)
}

func (c *Client) Write(ctx context.Context, cypher string, params map[string]any) ([]graphdb.Row, error) {
	return c.run(ctx, neo4j.AccessModeWrite, cypher, params)
}

// Ping issues a trivial query; used by health checks.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Read(ctx, `RETURN 1 AS ok`, nil)
	return err
}

func (c *Client) run(ctx context.Context, mode neo4j.AccessMode, cypher string, params map[string]any) ([]graphdb.Row, error) {
	if c == nil || c.Driver == nil {
		return nil, fmt.Errorf("neo4jdb: client not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if params == nil {
		params = map[string]any{}
	}

	op := "read"
	if mode == neo4j.AccessModeWrite {
		op = "write"
	}
	tracer := c.tracer
	if tracer == nil {
		tracer = otel.Tracer("geograph/neo4jdb")
	}
	ctx, span := tracer.Start(ctx, "neo4j."+op, trace.WithAttributes(
		attribute.String("db.system", "neo4j"),
		attribute.String("db.name", c.Database),
	))
	defer span.End()

	session := c.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: c.Database,
	})
	defer session.Close(ctx)

	work := func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]graphdb.Row, 0, len(records))
		for _, rec := range records {
			rows = append(rows, graphdb.Row(rec.AsMap()))
		}
		return rows, nil
	}

	var (
		out any
		err error
	)
	if mode == neo4j.AccessModeWrite {
		out, err = session.ExecuteWrite(ctx, work)
	} else {
		out, err = session.ExecuteRead(ctx, work)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.log.Warn("neo4j query failed", "mode", op, "error", err)
		return nil, fmt.Errorf("neo4jdb %s: %w", op, err)
	}
	rows, _ := out.([]graphdb.Row)
	span.SetAttributes(attribute.Int("db.rows", len(rows)))
	return rows, nil
}

// RunSchema executes schema statements outside a managed transaction.
// Failures are logged and skipped (restricted users may not create schema).
func (c *Client) RunSchema(ctx context.Context, statements []string) int {
	if c == nil || c.Driver == nil {
		return 0
	}
	session := c.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: c.Database,
	})
	defer session.Close(ctx)

	applied := 0
	for _, stmt := range statements {
		res, err := session.Run(ctx, stmt, nil)
		if err != nil {
			c.log.Warn("neo4j schema init failed (continuing)", "error", err)
			continue
		}
		if _, err := res.Consume(ctx); err != nil {
			c.log.Warn("neo4j schema init failed (continuing)", "error", err)
			continue
		}
		applied++
	}
	return applied
}

func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.Driver == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := c.Driver.Close(ctx)
	c.Driver = nil
	return err
}
