// Package http contains fiber response and request-validation helpers shared
// by every handler, keeping the transport error contract in one place.
package http

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse provides a consistent error structure for API responses.
type ErrorResponse struct {
	// HTTP status code
	Code int `json:"code"`
	// Error type identifier
	Title string `json:"title"`
	// Human-readable error message
	Message string `json:"message"`
}

// Error allows ErrorResponse to satisfy the error interface.
func (e ErrorResponse) Error() string {
	return e.Message
}

// OK sends an HTTP 200 OK response with the given body.
func OK(c *fiber.Ctx, body any) error {
	return c.Status(http.StatusOK).JSON(body)
}

// Created sends an HTTP 201 Created response with the given body.
func Created(c *fiber.Ctx, body any) error {
	return c.Status(http.StatusCreated).JSON(body)
}

// NoContent sends an HTTP 204 No Content response without a body.
func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(http.StatusNoContent)
}

// RenderError writes all transport errors through a single, stable contract.
// ErrorResponse values pass through with their own status; anything else is
// rendered as a 500 without leaking internal details.
func RenderError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	var resp ErrorResponse
	if errors.As(err, &resp) {
		status := http.StatusInternalServerError
		if resp.Code >= http.StatusContinue && resp.Code <= 599 {
			status = resp.Code
		}

		return c.Status(status).JSON(resp)
	}

	return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
		Code:    http.StatusInternalServerError,
		Title:   "internal_error",
		Message: "An unexpected error occurred. Please try again later.",
	})
}
