package restapi

import (
	"fmt"
	"net/http"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/pkg/apperrors"
	"portfolio_tracker/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

const pricesCacheControl = "public, s-maxage=300, stale-while-revalidate=60"

// PriceHandler serves USD quotes.
type PriceHandler struct {
	prices port.TokenPriceService
}

func NewPriceHandler(prices port.TokenPriceService) *PriceHandler {
	return &PriceHandler{prices: prices}
}

// GetPrices returns quotes for a comma-separated symbol list.
// GET /api/prices?symbols=BTC,ETH
func (h *PriceHandler) GetPrices(c *gin.Context) {
	raw := c.Query("symbols")
	if raw == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing symbols parameter"})
		return
	}

	symbols := utils.UniqueStrings(utils.SplitCSV(raw))
	if len(symbols) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing symbols parameter"})
		return
	}

	quotes, err := h.prices.GetPrices(c.Request.Context(), symbols)
	if err != nil {
		code := apperrors.CodeOf(err)
		if code == apperrors.CodeRateLimited {
			respondError(c, &apperrors.AppError{
				Code:       code,
				Op:         "GetPrices",
				Message:    "Rate limit exceeded. Please wait a moment before refreshing prices again.",
				RetryAfter: apperrors.RetryAfterOf(err),
				Err:        err,
			})
			return
		}

		_ = c.Error(err)
		switch {
		case code == apperrors.CodeUnavailable:
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{
				Error: "CoinGecko service is temporarily unavailable. Please try again later.",
				Code:  string(code),
			})
		case apperrors.StatusOf(err) >= 400:
			status := apperrors.StatusOf(err)
			c.JSON(status, ErrorResponse{Error: fmt.Sprintf("Failed to fetch prices (%d)", status), Code: string(code)})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		}
		return
	}

	c.Header("Cache-Control", pricesCacheControl)
	c.JSON(http.StatusOK, quotes)
}
