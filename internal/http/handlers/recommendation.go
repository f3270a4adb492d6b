package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/shopgraph/internal/http/response"
	pkgerrors "github.com/yungbote/shopgraph/internal/pkg/errors"
	"github.com/yungbote/shopgraph/internal/platform/logger"
	"github.com/yungbote/shopgraph/internal/recommend"
)

type RecommendationHandler struct {
	log    *logger.Logger
	engine *recommend.Engine
}

func NewRecommendationHandler(log *logger.Logger, engine *recommend.Engine) *RecommendationHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &RecommendationHandler{log: log.With("handler", "RecommendationHandler"), engine: engine}
}

// parseLimit reads ?limit=; absent means the engine default.
func parseLimit(c *gin.Context) (int, error) {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.Newf(pkgerrors.KindInvalidArgument, "parse_limit", "limit must be an integer, got %q", raw)
	}
	return n, nil
}

// GET /recommendations/collaborative/:customer_id
func (h *RecommendationHandler) Collaborative(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	customerID := c.Param("customer_id")
	items, err := h.engine.Collaborative(c.Request.Context(), customerID, limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"customer_id":     customerID,
		"strategy":        recommend.StrategyCollaborative,
		"recommendations": items,
	})
}

// GET /recommendations/for-customer/:customer_id
func (h *RecommendationHandler) ForCustomer(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	customerID := c.Param("customer_id")
	res, err := h.engine.ForCustomer(c.Request.Context(), customerID, limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"customer_id":     customerID,
		"strategy":        res.Strategy,
		"recommendations": res.Items,
	})
}

// GET /recommendations/content/:product_id
func (h *RecommendationHandler) ContentByProduct(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	productID := c.Param("product_id")
	items, err := h.engine.ContentBased(c.Request.Context(), recommend.ContentAnchor{ProductID: productID}, limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"product_id":      productID,
		"strategy":        recommend.StrategyContent,
		"recommendations": items,
	})
}

// GET /recommendations/content/category/:category_id
func (h *RecommendationHandler) ContentByCategory(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	categoryID := c.Param("category_id")
	items, err := h.engine.ContentBased(c.Request.Context(), recommend.ContentAnchor{CategoryID: categoryID}, limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"category_id":     categoryID,
		"strategy":        recommend.StrategyContent,
		"recommendations": items,
	})
}

// GET /recommendations/co-purchase/:product_id
func (h *RecommendationHandler) CoPurchase(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	productID := c.Param("product_id")
	items, err := h.engine.CoPurchase(c.Request.Context(), productID, limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"product_id":      productID,
		"strategy":        recommend.StrategyCoPurchase,
		"recommendations": items,
	})
}

// GET /recommendations/popular
func (h *RecommendationHandler) Popular(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	items, err := h.engine.Popular(c.Request.Context(), limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"strategy":        recommend.StrategyPopular,
		"recommendations": items,
	})
}
