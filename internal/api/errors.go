package api

import (
	"errors"
	"net/http"

	"github.com/RafaelEmery/payments-engine/internal/payment"
	pkghttp "github.com/RafaelEmery/payments-engine/pkg/net/http"
)

// statusByCode maps domain error codes to HTTP statuses. Codes outside the
// map render as 500.
var statusByCode = map[payment.ErrorCode]int{
	payment.ErrorNotFound:          http.StatusNotFound,
	payment.ErrorInvalidDocument:   http.StatusBadRequest,
	payment.ErrorDocumentTaken:     http.StatusConflict,
	payment.ErrorInvalidMethod:     http.StatusBadRequest,
	payment.ErrorInvalidInput:      http.StatusBadRequest,
	payment.ErrorTransactionFailed: http.StatusUnprocessableEntity,
	payment.ErrorInvalidBalance:    http.StatusUnprocessableEntity,
}

var titleByStatus = map[int]string{
	http.StatusBadRequest:          "bad_request",
	http.StatusNotFound:            "not_found",
	http.StatusConflict:            "conflict",
	http.StatusUnprocessableEntity: "unprocessable_entity",
}

// toTransportError converts a domain or validation error into the transport
// error contract. Unknown errors pass through and render as 500.
func toTransportError(err error) error {
	var domainErr payment.Error
	if errors.As(err, &domainErr) {
		status, ok := statusByCode[domainErr.Code]
		if !ok {
			return err
		}

		return pkghttp.ErrorResponse{
			Code:    status,
			Title:   titleByStatus[status],
			Message: domainErr.Message,
		}
	}

	return err
}

// badRequest wraps a boundary validation failure as a 400.
func badRequest(err error) error {
	return pkghttp.ErrorResponse{
		Code:    http.StatusBadRequest,
		Title:   "bad_request",
		Message: err.Error(),
	}
}
