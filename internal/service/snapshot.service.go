package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"portfoliocalc/internal/db/models/postgres/public/model"
	"portfoliocalc/internal/domain"
	"portfoliocalc/internal/logger"
	"portfoliocalc/internal/repository"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

type SavedSnapshot struct {
	SnapshotID uuid.UUID                `json:"snapshot_id"`
	Name       string                   `json:"name"`
	Document   domain.PortfolioDocument `json:"document"`
	CreatedAt  time.Time                `json:"created_at"`
	ModifiedAt time.Time                `json:"modified_at"`
}

// SnapshotService keeps named portfolio documents. It is the only
// stateful piece of the system and sits outside the calculator.
type SnapshotService interface {
	Save(ctx context.Context, name string, doc domain.PortfolioDocument) (*SavedSnapshot, error)
	Get(ctx context.Context, snapshotID uuid.UUID) (*SavedSnapshot, error)
	List(ctx context.Context) ([]SavedSnapshot, error)
	Update(ctx context.Context, snapshotID uuid.UUID, name string, doc domain.PortfolioDocument) (*SavedSnapshot, error)
	Delete(ctx context.Context, snapshotID uuid.UUID) error
}

type snapshotServiceHandler struct {
	SnapshotRepository repository.SnapshotRepository
	PortfolioIOService PortfolioIOService
}

func NewSnapshotService(
	snapshotRepository repository.SnapshotRepository,
	portfolioIOService PortfolioIOService,
) SnapshotService {
	return snapshotServiceHandler{
		SnapshotRepository: snapshotRepository,
		PortfolioIOService: portfolioIOService,
	}
}

func (h snapshotServiceHandler) encode(name string, doc domain.PortfolioDocument) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", fmt.Errorf("%w: name is required", ErrInvalidDocument)
	}

	doc = doc.WithDefaults()
	if err := h.PortfolioIOService.Validate(doc); err != nil {
		return "", "", err
	}
	doc.ExportedAt = nil

	bytes, err := json.Marshal(doc)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode snapshot document: %w", err)
	}
	return name, string(bytes), nil
}

func decodeSnapshot(m model.PortfolioSnapshot) (*SavedSnapshot, error) {
	doc := domain.PortfolioDocument{}
	if err := json.Unmarshal([]byte(m.Document), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", m.PortfolioSnapshotID.String(), err)
	}
	return &SavedSnapshot{
		SnapshotID: m.PortfolioSnapshotID,
		Name:       m.Name,
		Document:   doc.WithDefaults(),
		CreatedAt:  m.CreatedAt,
		ModifiedAt: m.ModifiedAt,
	}, nil
}

func (h snapshotServiceHandler) Save(ctx context.Context, name string, doc domain.PortfolioDocument) (*SavedSnapshot, error) {
	name, document, err := h.encode(name, doc)
	if err != nil {
		return nil, err
	}

	inserted, err := h.SnapshotRepository.Add(model.PortfolioSnapshot{
		Name:     name,
		Document: document,
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Infow("saved snapshot", "snapshotID", inserted.PortfolioSnapshotID.String(), "name", name)
	return decodeSnapshot(*inserted)
}

func (h snapshotServiceHandler) Get(ctx context.Context, snapshotID uuid.UUID) (*SavedSnapshot, error) {
	m, err := h.SnapshotRepository.Get(snapshotID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, snapshotID.String())
	}
	return decodeSnapshot(*m)
}

func (h snapshotServiceHandler) List(ctx context.Context) ([]SavedSnapshot, error) {
	models, err := h.SnapshotRepository.List()
	if err != nil {
		return nil, err
	}

	out := []SavedSnapshot{}
	for _, m := range models {
		s, err := decodeSnapshot(m)
		if err != nil {
			// unreadable rows are skipped
			logger.FromContext(ctx).Errorw("skipping snapshot", "error", err.Error())
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (h snapshotServiceHandler) Update(ctx context.Context, snapshotID uuid.UUID, name string, doc domain.PortfolioDocument) (*SavedSnapshot, error) {
	name, document, err := h.encode(name, doc)
	if err != nil {
		return nil, err
	}

	updated, err := h.SnapshotRepository.Update(model.PortfolioSnapshot{
		PortfolioSnapshotID: snapshotID,
		Name:                name,
		Document:            document,
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, snapshotID.String())
	}

	logger.FromContext(ctx).Infow("updated snapshot", "snapshotID", snapshotID.String())
	return decodeSnapshot(*updated)
}

func (h snapshotServiceHandler) Delete(ctx context.Context, snapshotID uuid.UUID) error {
	deleted, err := h.SnapshotRepository.Delete(snapshotID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, snapshotID.String())
	}

	logger.FromContext(ctx).Infow("deleted snapshot", "snapshotID", snapshotID.String())
	return nil
}
