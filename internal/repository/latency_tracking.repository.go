package repository

import (
	"database/sql"
	"fmt"
	"portfoliocalc/internal/db/models/postgres/public/model"
	"portfoliocalc/internal/db/models/postgres/public/table"
	"portfoliocalc/internal/domain"
	"time"

	"github.com/google/uuid"
)

type latencyTrackingRepositoryHandler struct {
	Db *sql.DB
}

type LatencyTrackingRepository interface {
	Add(profile *domain.Profile, requestID uuid.UUID, route string, statusCode int) error
}

func NewLatencyTrackingRepository(db *sql.DB) LatencyTrackingRepository {
	return latencyTrackingRepositoryHandler{db}
}

func newLatencyTracking(profile *domain.Profile, requestID uuid.UUID, route string, statusCode int) (model.LatencyTracking, error) {
	bytes, err := profile.ToJsonBytes()
	if err != nil {
		return model.LatencyTracking{}, err
	}

	return model.LatencyTracking{
		RequestID:       requestID,
		Route:           route,
		StatusCode:      int32(statusCode),
		ProcessingTimes: string(bytes),
		CreatedAt:       time.Now().UTC(),
	}, nil
}

func (h latencyTrackingRepositoryHandler) Add(profile *domain.Profile, requestID uuid.UUID, route string, statusCode int) error {
	m, err := newLatencyTracking(profile, requestID, route, statusCode)
	if err != nil {
		return err
	}

	query := table.LatencyTracking.INSERT(table.LatencyTracking.MutableColumns).MODEL(m)
	_, err = query.Exec(h.Db)
	if err != nil {
		return fmt.Errorf("failed to insert latency tracking: %w", err)
	}

	return nil
}
