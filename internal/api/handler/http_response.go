package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/revenue-collection-core/internal/api/middleware"
	"github.com/revenue-collection-core/internal/domain/invoice"
	"github.com/revenue-collection-core/internal/domain/ledger"
	"github.com/revenue-collection-core/internal/domain/paymenttype"
	"github.com/revenue-collection-core/internal/domain/registry"
	"github.com/revenue-collection-core/internal/domain/shared"
	"github.com/revenue-collection-core/internal/domain/wallet"
	"github.com/revenue-collection-core/internal/domain/withdrawal"
)

func isNotFound(err error) bool {
	return errors.As(err, &wallet.ErrWalletNotFound{}) ||
		errors.As(err, &invoice.ErrInvoiceNotFound{}) ||
		errors.As(err, &ledger.ErrEntryNotFound{}) ||
		errors.As(err, &withdrawal.ErrWithdrawalNotFound{}) ||
		errors.As(err, &registry.ErrVehicleNotFound{}) ||
		errors.As(err, &registry.ErrDriverNotFound{}) ||
		errors.As(err, &paymenttype.ErrPaymentTypeNotFound{})
}

// Response represents a standard API response
type Response struct {
	Data          interface{} `json:"data,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	Meta          *MetaInfo   `json:"meta,omitempty"`
}

// ErrorInfo represents error information in a response
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MetaInfo represents pagination metadata in a response
type MetaInfo struct {
	Limit      int   `json:"limit,omitempty"`
	Offset     int   `json:"offset,omitempty"`
	TotalItems int64 `json:"total_items,omitempty"`
}

// RespondWithData sends a JSON response with data
func RespondWithData(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, &Response{
		Data:          data,
		CorrelationID: middleware.GetCorrelationID(c),
	})
}

// RespondWithError sends a JSON response with an error
func RespondWithError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, &Response{
		Error:         &ErrorInfo{Code: code, Message: message},
		CorrelationID: middleware.GetCorrelationID(c),
	})
}

// RespondWithPaginatedData sends a JSON response with data and pagination meta
func RespondWithPaginatedData(c *gin.Context, statusCode int, data interface{}, limit, offset int, totalItems int64) {
	c.JSON(statusCode, &Response{
		Data:          data,
		CorrelationID: middleware.GetCorrelationID(c),
		Meta:          &MetaInfo{Limit: limit, Offset: offset, TotalItems: totalItems},
	})
}

// RespondOK sends a 200 OK response with data
func RespondOK(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusOK, data)
}

// RespondCreated sends a 201 Created response with data
func RespondCreated(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusCreated, data)
}

// RespondBadRequest sends a 400 Bad Request response with an error
func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

// RespondUnauthorized sends a 401 Unauthorized response with an error
func RespondUnauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// RespondNotFound sends a 404 Not Found response with an error
func RespondNotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, "NOT_FOUND", message)
}

// RespondConflict sends a 409 Conflict response with an error
func RespondConflict(c *gin.Context, message string) {
	RespondWithError(c, http.StatusConflict, "CONFLICT", message)
}

// RespondUnprocessable sends a 422 Unprocessable Entity response with an error
func RespondUnprocessable(c *gin.Context, code, message string) {
	RespondWithError(c, http.StatusUnprocessableEntity, code, message)
}

// RespondInternalError sends a 500 Internal Server Error response
func RespondInternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An internal server error occurred")
}

// RespondDomainError maps tagged service errors to transport status codes.
// Status codes exist only here; nothing below the HTTP layer produces them.
func RespondDomainError(c *gin.Context, err error) {
	if isNotFound(err) {
		RespondNotFound(c, err.Error())
		return
	}
	if errors.As(err, &invoice.ErrInvalidTransition{}) {
		RespondConflict(c, err.Error())
		return
	}

	var tagged *shared.Error
	if !errors.As(err, &tagged) {
		RespondInternalError(c)
		return
	}

	switch tagged.Kind {
	case shared.KindValidation:
		RespondBadRequest(c, tagged.Message)
	case shared.KindNotFound:
		RespondNotFound(c, tagged.Message)
	case shared.KindInsufficientFunds:
		RespondUnprocessable(c, string(shared.KindInsufficientFunds), tagged.Message)
	case shared.KindBeneficiaryConfig:
		RespondUnprocessable(c, string(shared.KindBeneficiaryConfig), tagged.Message)
	case shared.KindDuplicateEvent:
		RespondConflict(c, tagged.Message)
	case shared.KindInvalidSignature:
		RespondUnauthorized(c, tagged.Message)
	case shared.KindExternalService:
		RespondWithError(c, http.StatusBadGateway, string(shared.KindExternalService), tagged.Message)
	default:
		RespondInternalError(c)
	}
}
