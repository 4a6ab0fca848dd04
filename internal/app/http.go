package app

import (
	"context"

	apphttp "github.com/yungbote/geograph/internal/http"
	httpH "github.com/yungbote/geograph/internal/http/handlers"
)

// NewServer builds the API server over the wired services.
func (a *App) NewServer() *apphttp.Server {
	routes := apphttp.RouterConfig{
		ServiceName:       a.Cfg.ServiceName,
		Log:               a.Log,
		Metrics:           a.Metrics,
		HealthHandler:     httpH.NewHealthHandler(a.Graph),
		AnalyticsHandler:  httpH.NewAnalyticsHandler(a.Analytics, a.Cfg.Brand, a.Log),
		AnswerHandler:     httpH.NewAnswerHandler(a.Answerer, a.Metrics, a.Log),
		MonitoringHandler: httpH.NewMonitoringHandler(a.Monitor, a.Snapshots, a.Metrics, a.Log),
		ImportHandler:     httpH.NewImportHandler(a.Importer, a.Cfg.Import.Context, a.Cfg.OutputDir, a.Metrics, a.Log),
	}
	return apphttp.NewServer(a.Cfg.HTTP, routes, a.Log)
}

// Serve runs the API until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	return a.NewServer().Run(ctx)
}
