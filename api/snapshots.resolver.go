package api

import (
	"fmt"
	"portfoliocalc/internal/domain"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type saveSnapshotRequest struct {
	Name     string                   `json:"name"`
	Document domain.PortfolioDocument `json:"document"`
}

type snapshotSummaryResponse struct {
	SnapshotID uuid.UUID `json:"snapshot_id"`
	Name       string    `json:"name"`
	AssetCount int       `json:"asset_count"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

type listSnapshotsResponse struct {
	Snapshots []snapshotSummaryResponse `json:"snapshots"`
}

func snapshotID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		returnErrorJsonCode(fmt.Errorf("invalid snapshot id %q", c.Param("id")), c, 400)
		return uuid.Nil, false
	}
	return id, true
}

func (m ApiHandler) saveSnapshot(c *gin.Context) {
	var requestBody saveSnapshotRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	saved, err := m.SnapshotService.Save(c, requestBody.Name, requestBody.Document)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(201, saved)
}

func (m ApiHandler) listSnapshots(c *gin.Context) {
	snapshots, err := m.SnapshotService.List(c)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	out := listSnapshotsResponse{Snapshots: []snapshotSummaryResponse{}}
	for _, s := range snapshots {
		out.Snapshots = append(out.Snapshots, snapshotSummaryResponse{
			SnapshotID: s.SnapshotID,
			Name:       s.Name,
			AssetCount: len(s.Document.Assets),
			CreatedAt:  s.CreatedAt,
			ModifiedAt: s.ModifiedAt,
		})
	}

	c.JSON(200, out)
}

func (m ApiHandler) getSnapshot(c *gin.Context) {
	id, ok := snapshotID(c)
	if !ok {
		return
	}

	saved, err := m.SnapshotService.Get(c, id)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, saved)
}

func (m ApiHandler) updateSnapshot(c *gin.Context) {
	id, ok := snapshotID(c)
	if !ok {
		return
	}

	var requestBody saveSnapshotRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	saved, err := m.SnapshotService.Update(c, id, requestBody.Name, requestBody.Document)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, saved)
}

func (m ApiHandler) deleteSnapshot(c *gin.Context) {
	id, ok := snapshotID(c)
	if !ok {
		return
	}

	if err := m.SnapshotService.Delete(c, id); err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, map[string]string{"message": "ok"})
}
