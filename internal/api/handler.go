package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/RafaelEmery/payments-engine/internal/payment"
	"github.com/RafaelEmery/payments-engine/pkg/log"
	pkghttp "github.com/RafaelEmery/payments-engine/pkg/net/http"
)

// Handler serves the payments HTTP API.
type Handler struct {
	onboarding *payment.OnboardingService
	processor  *payment.Processor
	logger     log.Logger
}

// NewHandler creates the API handler. logger may be nil.
func NewHandler(onboarding *payment.OnboardingService, processor *payment.Processor, logger log.Logger) *Handler {
	if logger == nil {
		logger = log.NewNop()
	}

	return &Handler{onboarding: onboarding, processor: processor, logger: logger}
}

// CreateCustomer handles POST /v1/customers.
func (h *Handler) CreateCustomer(c *fiber.Ctx) error {
	var req CreateCustomerRequest
	if err := pkghttp.ParseBodyAndValidate(c, &req); err != nil {
		return pkghttp.RenderError(c, badRequest(err))
	}

	customer, err := h.onboarding.CreateCustomer(c.UserContext(), payment.CreateCustomerInput{
		Name:           req.Name,
		Type:           payment.CustomerType(req.Type),
		DocumentNumber: req.DocumentNumber,
	})
	if err != nil {
		return pkghttp.RenderError(c, toTransportError(err))
	}

	return pkghttp.Created(c, toCustomerResponse(customer))
}

// GetCustomer handles GET /v1/customers/:id.
func (h *Handler) GetCustomer(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return pkghttp.RenderError(c, err)
	}

	customer, err := h.onboarding.GetCustomer(c.UserContext(), id)
	if err != nil {
		return pkghttp.RenderError(c, toTransportError(err))
	}

	return pkghttp.OK(c, toCustomerResponse(customer))
}

// GetBalance handles GET /v1/customers/:id/balance.
func (h *Handler) GetBalance(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return pkghttp.RenderError(c, err)
	}

	balance, err := h.onboarding.GetBalance(c.UserContext(), id)
	if err != nil {
		return pkghttp.RenderError(c, toTransportError(err))
	}

	return pkghttp.OK(c, toBalanceResponse(balance))
}

// SetCustomerActive handles PATCH /v1/customers/:id/active. Deactivated
// customers keep their funds but are skipped by daily settlement.
func (h *Handler) SetCustomerActive(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return pkghttp.RenderError(c, err)
	}

	var req SetCustomerActiveRequest
	if err := pkghttp.ParseBodyAndValidate(c, &req); err != nil {
		return pkghttp.RenderError(c, badRequest(err))
	}

	if err := h.onboarding.SetCustomerActive(c.UserContext(), id, *req.Active); err != nil {
		return pkghttp.RenderError(c, toTransportError(err))
	}

	return pkghttp.NoContent(c)
}

// CreateTransaction handles POST /v1/transactions. A failed transaction is
// an error response; the transaction row still exists in failed status.
func (h *Handler) CreateTransaction(c *fiber.Ctx) error {
	var req CreateTransactionRequest
	if err := pkghttp.ParseBodyAndValidate(c, &req); err != nil {
		return pkghttp.RenderError(c, badRequest(err))
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return pkghttp.RenderError(c, badRequest(pkghttp.ErrFieldUUID))
	}

	result, err := h.processor.Process(c.UserContext(), payment.ProcessRequest{
		CustomerID:           customerID,
		Value:                req.Value,
		Currency:             payment.Currency(req.Currency),
		Description:          req.Description,
		Method:               payment.TransactionMethod(req.Method),
		CardNumber:           req.CardNumber,
		CardOwner:            req.CardOwner,
		CardExpirationYear:   req.CardExpirationYear,
		CardVerificationCode: req.CardVerificationCode,
	})
	if err != nil {
		return pkghttp.RenderError(c, toTransportError(err))
	}

	return pkghttp.Created(c, result)
}

// Health handles GET /health.
func (h *Handler) Health(c *fiber.Ctx) error {
	return pkghttp.OK(c, fiber.Map{"status": "ok"})
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, badRequest(pkghttp.ErrFieldUUID)
	}

	return id, nil
}
