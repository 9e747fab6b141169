package http

import (
	"github.com/gin-gonic/gin"

	"github.com/hxuan190/nft-checkout/internal/checkout"
	"github.com/hxuan190/nft-checkout/internal/http/httputil"
)

type AttemptHandler struct {
	checkoutSvc *checkout.Service
}

func NewAttemptHandler(checkoutSvc *checkout.Service) *AttemptHandler {
	return &AttemptHandler{checkoutSvc: checkoutSvc}
}

func (h *AttemptHandler) Root() string {
	return "/attempts"
}

func (h *AttemptHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.listAttempts)
	pub.GET("/:id", h.getAttempt)
}

// listAttempts godoc
// @Summary List journaled purchase attempts
// @Description Terminal attempt records, most recent first. Ambiguous records carry the signature to verify manually.
// @Tags attempts
// @Produce json
// @Success 200 {object} httputil.Response{data=[]domain.AttemptRecord}
// @Failure 404 {object} httputil.Response "Journal disabled"
// @Router /api/v1/attempts [get]
func (h *AttemptHandler) listAttempts(c *gin.Context) {
	journal := h.checkoutSvc.Journal()
	if journal == nil {
		httputil.NotFound(c, "journal disabled")
		return
	}

	attempts, err := journal.List()
	if err != nil {
		httputil.InternalError(c, err.Error())
		return
	}
	httputil.Success(c, attempts)
}

// getAttempt godoc
// @Summary Fetch one journaled attempt
// @Tags attempts
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} httputil.Response{data=domain.AttemptRecord}
// @Failure 404 {object} httputil.Response
// @Router /api/v1/attempts/{id} [get]
func (h *AttemptHandler) getAttempt(c *gin.Context) {
	journal := h.checkoutSvc.Journal()
	if journal == nil {
		httputil.NotFound(c, "journal disabled")
		return
	}

	attempt, err := journal.Get(c.Param("id"))
	if err != nil {
		httputil.InternalError(c, err.Error())
		return
	}
	if attempt == nil {
		httputil.NotFound(c, "attempt not found")
		return
	}
	httputil.Success(c, attempt)
}
