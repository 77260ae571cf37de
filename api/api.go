package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"portfoliocalc/internal/domain"
	"portfoliocalc/internal/logger"
	"portfoliocalc/internal/repository"
	"portfoliocalc/internal/service"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ApiHandler struct {
	// nil when no database is configured
	Db *sql.DB

	CalculationService service.CalculationService
	PortfolioIOService service.PortfolioIOService
	// nil when no database is configured
	SnapshotService           service.SnapshotService
	LatencyTrackingRepository repository.LatencyTrackingRepository

	Logger         *zap.SugaredLogger
	AllowedOrigins []string
}

func (m ApiHandler) InitializeRouterEngine() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(m.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = m.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddExposeHeaders("X-Request-ID", "Content-Disposition")
	router.Use(cors.New(corsConfig))
	router.Use(m.logRequestMiddleware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to portfoliocalc"})
	})
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"status": "ok"})
	})

	router.POST("/calc/scenario", m.scenario)
	router.POST("/calc/targets", m.targets)
	router.POST("/calc/blended", m.blended)
	router.POST("/calc/rebalance", m.rebalance)
	router.POST("/calc/evaluate", m.evaluate)
	router.POST("/calc/weights/normalize", m.normalizeWeights)
	router.POST("/calc/weights/equal", m.equalWeights)
	router.POST("/calc/allocation", m.allocation)
	router.GET("/presets", m.presets)

	router.POST("/import/csv", m.importCsv)
	router.POST("/export/csv", m.exportCsv)
	router.GET("/export/csv/template", m.exportCsvTemplate)
	router.POST("/import/json", m.importJson)
	router.POST("/export/json", m.exportJson)

	if m.SnapshotService != nil {
		router.POST("/snapshots", m.saveSnapshot)
		router.GET("/snapshots", m.listSnapshots)
		router.GET("/snapshots/:id", m.getSnapshot)
		router.PUT("/snapshots/:id", m.updateSnapshot)
		router.DELETE("/snapshots/:id", m.deleteSnapshot)
	}

	return router
}

func (m ApiHandler) StartApi(port int) error {
	return m.InitializeRouterEngine().Run(fmt.Sprintf(":%d", port))
}

// returnErrorJson picks the status from the error: validation and
// document errors are the caller's fault, unknown snapshots are 404 and
// anything else is a 500
func returnErrorJson(err error, c *gin.Context) {
	lg := logger.FromContext(c)

	var ve domain.ValidationError
	switch {
	case errors.As(err, &ve):
		lg.Warnw("request rejected", "code", ve.Code, "field", ve.Field, "error", ve.Message)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": ve.Error(),
			"code":  ve.Code,
			"field": ve.Field,
		})
	case errors.Is(err, service.ErrInvalidDocument):
		lg.Warnw("request rejected", "error", err.Error())
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
			"code":  "INVALID_DOCUMENT",
		})
	case errors.Is(err, service.ErrSnapshotNotFound):
		returnErrorJsonCode(err, c, http.StatusNotFound)
	default:
		returnErrorJsonCode(err, c, http.StatusInternalServerError)
	}
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	lg := logger.FromContext(c)
	if code >= 500 {
		lg.Errorw("request failed", "status", code, "error", err.Error())
	} else {
		lg.Warnw("request rejected", "status", code, "error", err.Error())
	}
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

// logRequestMiddleware gives each request an ID, a request-scoped
// logger and a timing profile, and logs the outcome once handled
func (m ApiHandler) logRequestMiddleware(c *gin.Context) {
	requestID := uuid.New()
	start := time.Now().UTC()

	base := m.Logger
	if base == nil {
		base = zap.S()
	}
	lg := base.With(
		"requestID", requestID.String(),
		"method", c.Request.Method,
		"route", c.Request.URL.Path,
	)
	profile, endProfile := domain.NewProfile()

	c.Set(logger.ContextKey, lg)
	c.Set(domain.ContextProfileKey, profile)
	c.Header("X-Request-ID", requestID.String())

	c.Next()

	endProfile()
	spans, err := profile.ToJsonBytes()
	if err != nil {
		lg.Warnw("failed to encode profile", "error", err.Error())
	}
	lg.Infow(
		"request complete",
		"status", c.Writer.Status(),
		"durationMs", time.Since(start).Milliseconds(),
		"spans", string(spans),
	)

	if m.LatencyTrackingRepository != nil {
		err = m.LatencyTrackingRepository.Add(profile, requestID, c.Request.URL.Path, c.Writer.Status())
		if err != nil {
			lg.Warnw("failed to record latency", "error", err.Error())
		}
	}
}
