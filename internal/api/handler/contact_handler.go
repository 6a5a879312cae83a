package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/khata-ledger/internal/api/middleware"
)

// ContactHandler handles HTTP requests for contacts
type ContactHandler struct {
	service KhataService
	logger  *slog.Logger
}

// NewContactHandler creates a new contact handler
func NewContactHandler(logger *slog.Logger, service KhataService) *ContactHandler {
	return &ContactHandler{
		service: service,
		logger:  logger,
	}
}

// Create registers a new contact with a zero balance
func (h *ContactHandler) Create(c *gin.Context) {
	logger := middleware.RequestLogger(c, h.logger)

	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.service.CreateContact(c.Request.Context(), req.Name, req.Phone)
	if err != nil {
		RespondDomainError(c, logger, err)
		return
	}

	RespondCreated(c, mapContactToResponse(created, h.service.Currency()))
}

// List returns every contact, optionally filtered by ?q= on name or phone
func (h *ContactHandler) List(c *gin.Context) {
	contacts := h.service.ListContacts(c.Request.Context(), c.Query("q"))

	currency := h.service.Currency()
	response := make([]ContactResponse, 0, len(contacts))
	for _, ct := range contacts {
		response = append(response, mapContactToResponse(ct, currency))
	}
	RespondOK(c, response)
}

// GetByID returns a contact with its balance label
func (h *ContactHandler) GetByID(c *gin.Context) {
	ct, err := h.service.GetContact(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, middleware.RequestLogger(c, h.logger), err)
		return
	}

	RespondOK(c, mapContactToResponse(ct, h.service.Currency()))
}

// Verify recomputes the contact's balance from its entries and compares it with the cached one
func (h *ContactHandler) Verify(c *gin.Context) {
	logger := middleware.RequestLogger(c, h.logger)

	result, err := h.service.Verify(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, logger, err)
		return
	}

	if !result.Consistent {
		logger.Warn("Cached balance diverged from entries",
			"contact_id", result.ContactID.String(),
			"cached", result.Cached.String(),
			"recomputed", result.Recomputed.String(),
		)
	}

	RespondOK(c, VerifyResponse{
		ContactID:  result.ContactID.String(),
		Cached:     result.Cached.String(),
		Recomputed: result.Recomputed.String(),
		Consistent: result.Consistent,
	})
}
