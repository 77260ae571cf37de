package cmd

import (
	"database/sql"
	"fmt"
	"portfoliocalc/api"
	"portfoliocalc/internal/logger"
	"portfoliocalc/internal/repository"
	"portfoliocalc/internal/service"
	"portfoliocalc/internal/util"

	_ "github.com/lib/pq"
)

func CloseDependencies(handler *api.ApiHandler) error {
	if handler.Db == nil {
		return nil
	}
	if err := handler.Db.Close(); err != nil {
		return fmt.Errorf("failed to close db: %w", err)
	}
	return nil
}

// InitializeDependencies wires the calculators, the portable document
// service and, when a database is configured, the snapshot store.
func InitializeDependencies() (*api.ApiHandler, *util.Config, error) {
	config, err := util.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	lg := logger.New()
	ioService := service.NewPortfolioIOService()

	apiHandler := &api.ApiHandler{
		CalculationService: service.NewCalculationService(config.StrictCapital),
		PortfolioIOService: ioService,
		Logger:             lg,
		AllowedOrigins:     config.AllowedOrigins,
	}

	connStr := config.ConnectionStr()
	if connStr == "" {
		lg.Infow("no database configured, snapshot routes disabled")
		return apiHandler, config, nil
	}

	dbConn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	if err := dbConn.Ping(); err != nil {
		dbConn.Close()
		return nil, nil, fmt.Errorf("failed to reach db: %w", err)
	}

	apiHandler.Db = dbConn
	apiHandler.LatencyTrackingRepository = repository.NewLatencyTrackingRepository(dbConn)
	apiHandler.SnapshotService = service.NewSnapshotService(
		repository.NewSnapshotRepository(dbConn),
		ioService,
	)

	return apiHandler, config, nil
}
