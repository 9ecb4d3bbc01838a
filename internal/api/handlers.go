package api

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"propsearch/server/internal/catalog"
	"propsearch/server/internal/models"
	"propsearch/server/internal/search"
)

// Searcher runs validated searches.
type Searcher interface {
	Search(ctx context.Context, c search.Criteria) (*models.SearchResult, error)
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	engine  Searcher
	parser  *search.Parser
	regions *catalog.Regions
	store   Pinger
	logger  *logrus.Logger
}

func NewHandler(engine Searcher, parser *search.Parser, regions *catalog.Regions, store Pinger, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		engine:  engine,
		parser:  parser,
		regions: regions,
		store:   store,
		logger:  logger,
	}
}

// SearchProperties serves the query string form of a search.
func (h *Handler) SearchProperties(c *gin.Context) {
	var raw search.RawCriteria
	if err := c.ShouldBindQuery(&raw); err != nil {
		h.requestLogger(c).WithError(err).Error("Failed to parse search query")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}
	h.runSearch(c, raw)
}

// SearchPropertiesTool serves the chat tool call. Arguments arrive as a JSON
// object with the same field names as the query string.
func (h *Handler) SearchPropertiesTool(c *gin.Context) {
	var raw search.RawCriteria
	if err := c.ShouldBindJSON(&raw); err != nil {
		h.requestLogger(c).WithError(err).Error("Failed to parse tool arguments")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	h.runSearch(c, raw)
}

func (h *Handler) runSearch(c *gin.Context, raw search.RawCriteria) {
	logger := h.requestLogger(c)

	criteria, err := h.parser.Parse(raw)
	if err != nil {
		h.rejectCriteria(c, logger, err)
		return
	}

	result, err := h.engine.Search(c.Request.Context(), criteria)
	if err != nil {
		if errors.Is(err, search.ErrInvalidCriteria) {
			h.rejectCriteria(c, logger, err)
			return
		}
		logger.WithError(err).Error("Failed to search properties")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "try again",
			"count":   0,
			"results": []models.PricedListing{},
		})
		return
	}

	logger.WithFields(logrus.Fields{
		"operation": string(criteria.Operation),
		"period":    string(criteria.Period),
		"count":     result.Count,
	}).Info("Search served")
	c.JSON(http.StatusOK, result)
}

func (h *Handler) rejectCriteria(c *gin.Context, logger *logrus.Entry, err error) {
	logger.WithError(err).Warn("Rejected search criteria")

	var verr *search.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// GetCatalog returns the closed vocabulary accepted by the search endpoints.
func (h *Handler) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"operations":     catalog.Operations(),
		"property_types": catalog.PropertyTypes(),
		"periods":        catalog.Periods(),
		"sort":           catalog.SortModes(),
		"regions":        h.regions.List(),
	})
}

// Health reports whether the service can reach its store.
func (h *Handler) Health(c *gin.Context) {
	if h.store != nil {
		if err := h.store.Ping(c.Request.Context()); err != nil {
			h.requestLogger(c).WithError(err).Error("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) requestLogger(c *gin.Context) *logrus.Entry {
	return h.logger.WithField("request_id", c.GetString(requestIDKey))
}
