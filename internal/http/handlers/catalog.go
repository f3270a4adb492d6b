package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/shopgraph/internal/data/graph"
	"github.com/yungbote/shopgraph/internal/http/response"
	pkgerrors "github.com/yungbote/shopgraph/internal/pkg/errors"
	"github.com/yungbote/shopgraph/internal/platform/logger"
)

type CatalogHandler struct {
	log   *logger.Logger
	store graph.Reader
}

func NewCatalogHandler(log *logger.Logger, store graph.Reader) *CatalogHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &CatalogHandler{log: log.With("handler", "CatalogHandler"), store: store}
}

// GET /customers
func (h *CatalogHandler) ListCustomers(c *gin.Context) {
	customers, err := h.store.ListCustomers(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"customers": customers})
}

// GET /products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.store.ListProducts(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"products": products})
}

// GET /analytics/customer-journey/:customer_id
func (h *CatalogHandler) CustomerJourney(c *gin.Context) {
	customerID := strings.TrimSpace(c.Param("customer_id"))
	journey, err := h.store.CustomerJourney(c.Request.Context(), customerID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if journey == nil {
		response.RespondErr(c, pkgerrors.Newf(pkgerrors.KindNotFound, "customer_journey", "customer %q not found", customerID))
		return
	}
	response.RespondOK(c, gin.H{"customer_id": customerID, "journey": journey})
}

// GET /stats
func (h *CatalogHandler) Stats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"stats": stats})
}
