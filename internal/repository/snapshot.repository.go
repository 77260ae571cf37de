package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"portfoliocalc/internal/db/models/postgres/public/model"
	"portfoliocalc/internal/db/models/postgres/public/table"
	"time"

	"github.com/go-jet/jet/v2/postgres"
	"github.com/go-jet/jet/v2/qrm"
	"github.com/google/uuid"
)

type SnapshotRepository interface {
	Add(m model.PortfolioSnapshot) (*model.PortfolioSnapshot, error)
	Get(snapshotID uuid.UUID) (*model.PortfolioSnapshot, error)
	List() ([]model.PortfolioSnapshot, error)
	Update(m model.PortfolioSnapshot) (*model.PortfolioSnapshot, error)
	Delete(snapshotID uuid.UUID) (bool, error)
}

type snapshotRepositoryHandler struct {
	Db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) SnapshotRepository {
	return snapshotRepositoryHandler{db}
}

func (h snapshotRepositoryHandler) Add(m model.PortfolioSnapshot) (*model.PortfolioSnapshot, error) {
	m.CreatedAt = time.Now().UTC()
	m.ModifiedAt = time.Now().UTC()

	query := table.PortfolioSnapshot.
		INSERT(table.PortfolioSnapshot.MutableColumns).
		MODEL(m).
		RETURNING(table.PortfolioSnapshot.AllColumns)

	out := model.PortfolioSnapshot{}
	err := query.Query(h.Db, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to insert portfolio snapshot: %w", err)
	}

	return &out, nil
}

// Get returns nil when no snapshot matches
func (h snapshotRepositoryHandler) Get(snapshotID uuid.UUID) (*model.PortfolioSnapshot, error) {
	query := table.PortfolioSnapshot.
		SELECT(table.PortfolioSnapshot.AllColumns).
		WHERE(table.PortfolioSnapshot.PortfolioSnapshotID.EQ(postgres.UUID(snapshotID)))

	out := model.PortfolioSnapshot{}
	err := query.Query(h.Db, &out)
	if errors.Is(err, qrm.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get portfolio snapshot %s: %w", snapshotID.String(), err)
	}

	return &out, nil
}

func (h snapshotRepositoryHandler) List() ([]model.PortfolioSnapshot, error) {
	query := table.PortfolioSnapshot.
		SELECT(table.PortfolioSnapshot.AllColumns).
		ORDER_BY(
			table.PortfolioSnapshot.CreatedAt.DESC(),
		)

	out := []model.PortfolioSnapshot{}
	err := query.Query(h.Db, &out)
	if errors.Is(err, qrm.ErrNoRows) {
		return []model.PortfolioSnapshot{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to list portfolio snapshots: %w", err)
	}

	return out, nil
}

// Update overwrites name and document. Returns nil when no snapshot
// matches.
func (h snapshotRepositoryHandler) Update(m model.PortfolioSnapshot) (*model.PortfolioSnapshot, error) {
	query := table.PortfolioSnapshot.UPDATE(
		table.PortfolioSnapshot.Name,
		table.PortfolioSnapshot.Document,
		table.PortfolioSnapshot.ModifiedAt,
	).SET(
		postgres.String(m.Name),
		postgres.String(m.Document),
		postgres.TimestampzT(time.Now().UTC()),
	).WHERE(
		table.PortfolioSnapshot.PortfolioSnapshotID.EQ(postgres.UUID(m.PortfolioSnapshotID)),
	).RETURNING(table.PortfolioSnapshot.AllColumns)

	out := model.PortfolioSnapshot{}
	err := query.Query(h.Db, &out)
	if errors.Is(err, qrm.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to update portfolio snapshot %s: %w", m.PortfolioSnapshotID.String(), err)
	}

	return &out, nil
}

func (h snapshotRepositoryHandler) Delete(snapshotID uuid.UUID) (bool, error) {
	query := table.PortfolioSnapshot.
		DELETE().
		WHERE(table.PortfolioSnapshot.PortfolioSnapshotID.EQ(postgres.UUID(snapshotID)))

	result, err := query.Exec(h.Db)
	if err != nil {
		return false, fmt.Errorf("failed to delete portfolio snapshot %s: %w", snapshotID.String(), err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to count deleted rows: %w", err)
	}

	return n > 0, nil
}
