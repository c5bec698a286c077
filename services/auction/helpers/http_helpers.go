package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-house/internal/auctionerrors"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// errInternal is what unmapped failures echo to the client.
var errInternal = errors.New("internal server error")

// MapErrorToHTTP maps domain/service errors to an HTTP status, a message, and
// the client-facing error to serialize. Responses carry only the bare
// sentinel: the wrapped chain can hold store or filesystem detail and stays
// in the server logs.
func MapErrorToHTTP(err error) (int, string, error) {
	switch {
	case errors.Is(err, auctionerrors.ErrMissingField):
		return http.StatusBadRequest, "please provide all details", auctionerrors.ErrMissingField
	case errors.Is(err, auctionerrors.ErrInvalidWindow):
		return http.StatusBadRequest, "invalid auction time window", auctionerrors.ErrInvalidWindow
	case errors.Is(err, auctionerrors.ErrInvalidID):
		return http.StatusBadRequest, "invalid id format", auctionerrors.ErrInvalidID
	case errors.Is(err, auctionerrors.ErrInvalidState):
		return http.StatusBadRequest, "auction is not open for bidding", auctionerrors.ErrInvalidState
	case errors.Is(err, auctionerrors.ErrConflictingAuction):
		return http.StatusConflict, "you already have one active auction", auctionerrors.ErrConflictingAuction
	case errors.Is(err, auctionerrors.ErrStillActive):
		return http.StatusConflict, "auction is still active, cannot republish", auctionerrors.ErrStillActive
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low", auctionerrors.ErrBidTooLow
	case errors.Is(err, auctionerrors.ErrNotFound):
		return http.StatusNotFound, "auction not found", auctionerrors.ErrNotFound
	case errors.Is(err, auctionerrors.ErrTimeout):
		return http.StatusGatewayTimeout, "operation timed out", auctionerrors.ErrTimeout
	case errors.Is(err, auctionerrors.ErrAssetUploadFailed):
		return http.StatusInternalServerError, "failed to upload auction image", auctionerrors.ErrAssetUploadFailed
	default:
		return http.StatusInternalServerError, "internal server error", errInternal
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
