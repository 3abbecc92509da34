package restapi

import (
	"net/http"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// AddressHandler handles address CRUD and refreshes.
type AddressHandler struct {
	addresses port.AddressService
	portfolio port.PortfolioService
}

func NewAddressHandler(addresses port.AddressService, portfolio port.PortfolioService) *AddressHandler {
	return &AddressHandler{addresses: addresses, portfolio: portfolio}
}

func invalidBody(err error) error {
	return apperrors.WrapWithCode(apperrors.CodeInvalidInput, "decode request", err)
}

// List returns every address.
// GET /api/addresses
func (h *AddressHandler) List(c *gin.Context) {
	addrs, err := h.addresses.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, addrs)
}

// Get returns one address.
// GET /api/addresses/:id
func (h *AddressHandler) Get(c *gin.Context) {
	addr, err := h.addresses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, addr)
}

// Create registers a new address.
// POST /api/addresses
func (h *AddressHandler) Create(c *gin.Context) {
	var in entity.AddressInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, invalidBody(err))
		return
	}
	addr, err := h.addresses.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, addr)
}

// Update changes address metadata.
// PUT /api/addresses/:id
func (h *AddressHandler) Update(c *gin.Context) {
	var patch entity.AddressPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, invalidBody(err))
		return
	}
	addr, err := h.addresses.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, addr)
}

// Delete removes an address.
// DELETE /api/addresses/:id
func (h *AddressHandler) Delete(c *gin.Context) {
	if err := h.addresses.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Refresh refetches one address from its chain provider.
// POST /api/addresses/:id/refresh
func (h *AddressHandler) Refresh(c *gin.Context) {
	addr, err := h.portfolio.RefreshAddress(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, addr)
}
