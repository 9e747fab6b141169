package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hxuan190/nft-checkout/internal/checkout"
	"github.com/hxuan190/nft-checkout/internal/http/httputil"
)

type CollectionHandler struct {
	checkoutSvc *checkout.Service
}

func NewCollectionHandler(checkoutSvc *checkout.Service) *CollectionHandler {
	return &CollectionHandler{checkoutSvc: checkoutSvc}
}

func (h *CollectionHandler) Root() string {
	return "/collections"
}

func (h *CollectionHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.listCollections)
	pub.GET("/:symbol/stats", h.collectionStats)
	pub.GET("/:symbol/listings", h.collectionListings)
}

// listCollections godoc
// @Summary Browse collections
// @Description Passthrough to the marketplace collection index; the payload is presentational and returned untouched.
// @Tags collections
// @Produce json
// @Param offset query int false "Pagination offset" default(0)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} httputil.Response
// @Failure 502 {object} httputil.Response
// @Router /api/v1/collections [get]
func (h *CollectionHandler) listCollections(c *gin.Context) {
	offset, limit := pagination(c)
	out, err := h.checkoutSvc.Marketplace().Collections(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.FromError(c, err)
		return
	}
	httputil.Success(c, out)
}

// collectionStats godoc
// @Summary Collection stats
// @Tags collections
// @Produce json
// @Param symbol path string true "Collection symbol"
// @Success 200 {object} httputil.Response
// @Failure 502 {object} httputil.Response
// @Router /api/v1/collections/{symbol}/stats [get]
func (h *CollectionHandler) collectionStats(c *gin.Context) {
	out, err := h.checkoutSvc.Marketplace().CollectionStats(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		httputil.FromError(c, err)
		return
	}
	httputil.Success(c, out)
}

// collectionListings godoc
// @Summary Active listings in a collection
// @Tags collections
// @Produce json
// @Param symbol path string true "Collection symbol"
// @Param offset query int false "Pagination offset" default(0)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} httputil.Response
// @Failure 502 {object} httputil.Response
// @Router /api/v1/collections/{symbol}/listings [get]
func (h *CollectionHandler) collectionListings(c *gin.Context) {
	offset, limit := pagination(c)
	out, err := h.checkoutSvc.Marketplace().CollectionListings(c.Request.Context(), c.Param("symbol"), offset, limit)
	if err != nil {
		httputil.FromError(c, err)
		return
	}
	httputil.Success(c, out)
}

func pagination(c *gin.Context) (int, int) {
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	return offset, limit
}
