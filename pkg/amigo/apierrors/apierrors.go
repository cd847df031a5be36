// Package apierrors defines the machine-checkable error kinds shared by
// every handler. Responses carry both a human-readable message and a stable
// code clients can branch on.
package apierrors

import "github.com/gin-gonic/gin"

const (
	KindValidation               = "validation_error"
	KindNotFound                 = "not_found"
	KindForbidden                = "forbidden"
	KindInsufficientParticipants = "insufficient_participants"
	KindGenerationFailed         = "assignment_generation_failed"
	KindInvalidState             = "invalid_state"
	KindNotYetGenerated          = "not_yet_generated"
	KindRevealNotAllowed         = "reveal_not_allowed"
	KindInternal                 = "internal_error"
)

// JSON writes an error response with the given status, kind and message.
func JSON(c *gin.Context, status int, kind, message string) {
	c.JSON(status, gin.H{"error": message, "code": kind})
}

// Abort writes the error response and stops the handler chain.
func Abort(c *gin.Context, status int, kind, message string) {
	JSON(c, status, kind, message)
	c.Abort()
}
