package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/khata-ledger/internal/api/middleware"
	"github.com/khata-ledger/internal/domain/ledger"
	"github.com/khata-ledger/internal/khata"
)

// IdempotencyKeyHeader lets clients retry a submission without recording it twice
const IdempotencyKeyHeader = "Idempotency-Key"

// EntryHandler handles HTTP requests for ledger entries
type EntryHandler struct {
	service KhataService
	logger  *slog.Logger
}

// NewEntryHandler creates a new entry handler
func NewEntryHandler(logger *slog.Logger, service KhataService) *EntryHandler {
	return &EntryHandler{
		service: service,
		logger:  logger,
	}
}

// Record adds a credit or payment to a contact. A replayed Idempotency-Key answers 200
// with the originally recorded entry instead of 201.
func (h *EntryHandler) Record(c *gin.Context) {
	logger := middleware.RequestLogger(c, h.logger)

	var req RecordEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	entryType, err := ledger.ParseEntryType(req.Type)
	if err != nil {
		RespondDomainError(c, logger, err)
		return
	}

	var date time.Time
	if req.Date != "" {
		if date, err = ledger.ParseDate(req.Date); err != nil {
			RespondDomainError(c, logger, err)
			return
		}
	}

	tx, err := h.service.Record(c.Request.Context(), khata.RecordParams{
		ContactID:      c.Param("id"),
		Amount:         req.Amount,
		Type:           entryType,
		Description:    req.Description,
		Date:           date,
		IdempotencyKey: strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader)),
	})
	if err != nil {
		RespondDomainError(c, logger, err)
		return
	}

	status := http.StatusCreated
	if tx.Replayed {
		status = http.StatusOK
	}
	RespondWithData(c, status, mapTransactionToResponse(tx, h.service.Currency()))
}

// List returns a page of a contact's entries in insertion or date order, optionally
// restricted to an inclusive date range
func (h *EntryHandler) List(c *gin.Context) {
	logger := middleware.RequestLogger(c, h.logger)

	var params EntryListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	query := khata.EntryQuery{Order: khata.EntryOrder(params.Order)}
	var err error
	if params.From != "" {
		if query.From, err = ledger.ParseDate(params.From); err != nil {
			RespondDomainError(c, logger, err)
			return
		}
	}
	if params.To != "" {
		if query.To, err = ledger.ParseDate(params.To); err != nil {
			RespondDomainError(c, logger, err)
			return
		}
	}

	entries, err := h.service.Entries(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		RespondDomainError(c, logger, err)
		return
	}

	total := len(entries)
	start, end := pageBounds(params.Page, params.PageSize, total)

	response := make([]EntryResponse, 0, end-start)
	for _, e := range entries[start:end] {
		response = append(response, mapEntryToResponse(e))
	}
	RespondWithPaginatedData(c, response, params.Page, params.PageSize, total)
}

// pageBounds returns the slice bounds of a 1-based page. Pages past the end are empty;
// the page number is compared before multiplying so huge values cannot overflow.
func pageBounds(page, pageSize, total int) (int, int) {
	if page < 1 || pageSize < 1 || page-1 > total/pageSize {
		return total, total
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return start, end
}
