package api

import (
	"github.com/gofiber/fiber/v2"
)

// NewApp builds the fiber application with all payment routes registered.
// middlewares apply to the transaction route only; reads stay unguarded.
func NewApp(handler *Handler, middlewares ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "payments-engine",
		DisableStartupMessage: true,
	})

	app.Get("/health", handler.Health)

	v1 := app.Group("/v1")
	v1.Post("/customers", handler.CreateCustomer)
	v1.Get("/customers/:id", handler.GetCustomer)
	v1.Get("/customers/:id/balance", handler.GetBalance)
	v1.Patch("/customers/:id/active", handler.SetCustomerActive)

	transactionHandlers := make([]fiber.Handler, 0, len(middlewares)+1)
	transactionHandlers = append(transactionHandlers, middlewares...)
	transactionHandlers = append(transactionHandlers, handler.CreateTransaction)
	v1.Post("/transactions", transactionHandlers...)

	return app
}
