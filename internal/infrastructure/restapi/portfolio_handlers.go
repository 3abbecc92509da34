package restapi

import (
	"net/http"
	"strconv"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/app/service"
	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// APIPortfolioResponse wraps the summary with the state of the price lookup.
type APIPortfolioResponse struct {
	Data          entity.PortfolioSummary `json:"data"`
	PriceError    string                  `json:"priceError,omitempty"`
	StatusMessage string                  `json:"statusMessage"`
}

// LastReporter returns the report of the latest refresh-all.
type LastReporter interface {
	Last() (entity.RefreshReport, bool)
}

// PortfolioHandler serves the aggregated portfolio views and refresh-all.
type PortfolioHandler struct {
	portfolio port.PortfolioService
	reports   LastReporter
	txLimit   int
}

// NewPortfolioHandler creates the handler. txLimit is the default page size of
// /api/transactions; zero selects service.DefaultRecentTransactions.
func NewPortfolioHandler(portfolio port.PortfolioService, reports LastReporter, txLimit int) *PortfolioHandler {
	if txLimit <= 0 {
		txLimit = service.DefaultRecentTransactions
	}
	return &PortfolioHandler{portfolio: portfolio, reports: reports, txLimit: txLimit}
}

func statusMessage(summary entity.PortfolioSummary) string {
	switch {
	case summary.PricesOK():
		return "Prices up to date"
	case summary.PricesRateLimited:
		return "Price provider rate limit reached, values shown as $0 until prices can be fetched again"
	default:
		return "Prices unavailable, values shown as $0"
	}
}

// GetPortfolio returns the portfolio summary.
// GET /api/portfolio
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	summary, err := h.portfolio.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, APIPortfolioResponse{
		Data:          summary,
		PriceError:    summary.PriceError,
		StatusMessage: statusMessage(summary),
	})
}

// GetTransactions returns the most recent transactions across all addresses.
// GET /api/transactions?limit=10
func (h *PortfolioHandler) GetTransactions(c *gin.Context) {
	limit := h.txLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(c, apperrors.New(apperrors.CodeInvalidInput, "GetTransactions", "limit must be a positive integer"))
			return
		}
		limit = n
	}
	txs, err := h.portfolio.RecentTransactions(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

// RefreshAll refetches every address.
// POST /api/refresh
func (h *PortfolioHandler) RefreshAll(c *gin.Context) {
	report, err := h.portfolio.RefreshAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// LastRefresh returns the report of the latest refresh-all.
// GET /api/refresh/last
func (h *PortfolioHandler) LastRefresh(c *gin.Context) {
	report, ok := h.reports.Last()
	if !ok {
		respondError(c, apperrors.New(apperrors.CodeNotFound, "LastRefresh", "No refresh has completed yet"))
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetChains lists the supported chains.
// GET /api/chains
func GetChains(c *gin.Context) {
	c.JSON(http.StatusOK, entity.SupportedChains())
}

// Health reports liveness.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
