// Package auth gates group operations behind the two bearer credentials:
// the group admin code and each participant's access code. Both are opaque
// secrets presented as "Authorization: Bearer <code>" and compared against
// the bcrypt hash stored on the aggregate.
package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/amigo-app/amigo/pkg/amigo/apierrors"
	"github.com/amigo-app/amigo/pkg/amigo/codes"
	"github.com/amigo-app/amigo/pkg/amigo/models"
)

const (
	// ContextKeyGroup is the key for the authenticated group in gin context
	ContextKeyGroup = "group"
	// ContextKeyParticipant is the key for the authenticated participant in gin context
	ContextKeyParticipant = "participant"
)

// credential mismatches and missing headers share one message so the
// response shape never reveals which check failed.
const forbiddenMessage = "Invalid or missing credential"

// bearerToken extracts the credential from the Authorization header.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// NormalizeJoinCode upper-cases a join code as entered by a user.
func NormalizeJoinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// AdminAuth resolves the group from the :code route param and requires the
// group's admin code. Join codes are public, so an unknown code is a plain
// 404; a bad credential against an existing group is a 403.
func AdminAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		joinCode := NormalizeJoinCode(c.Param("code"))

		var group models.Group
		if err := db.Where("join_code = ?", joinCode).First(&group).Error; err != nil {
			apierrors.Abort(c, http.StatusNotFound, apierrors.KindNotFound, "Group not found")
			return
		}

		token := bearerToken(c)
		if token == "" || !codes.Verify(group.AdminCodeHash, token) {
			apierrors.Abort(c, http.StatusForbidden, apierrors.KindForbidden, forbiddenMessage)
			return
		}

		c.Set(ContextKeyGroup, &group)
		c.Next()
	}
}

// ParticipantAuth resolves the group and the :participantId route param and
// requires that exact participant's access code. Another participant's valid
// code is rejected the same way as a bogus one.
func ParticipantAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		joinCode := NormalizeJoinCode(c.Param("code"))

		var group models.Group
		if err := db.Where("join_code = ?", joinCode).First(&group).Error; err != nil {
			apierrors.Abort(c, http.StatusNotFound, apierrors.KindNotFound, "Group not found")
			return
		}

		var participant models.Participant
		if err := db.Where("group_id = ? AND id = ?", group.ID, c.Param("participantId")).First(&participant).Error; err != nil {
			apierrors.Abort(c, http.StatusNotFound, apierrors.KindNotFound, "Participant not found")
			return
		}

		token := bearerToken(c)
		if token == "" || !codes.Verify(participant.AccessCodeHash, token) {
			apierrors.Abort(c, http.StatusForbidden, apierrors.KindForbidden, forbiddenMessage)
			return
		}

		c.Set(ContextKeyGroup, &group)
		c.Set(ContextKeyParticipant, &participant)
		c.Next()
	}
}

// GetGroup returns the group set by AdminAuth or ParticipantAuth.
func GetGroup(c *gin.Context) (*models.Group, bool) {
	v, ok := c.Get(ContextKeyGroup)
	if !ok {
		return nil, false
	}
	group, ok := v.(*models.Group)
	return group, ok
}

// GetParticipant returns the participant set by ParticipantAuth.
func GetParticipant(c *gin.Context) (*models.Participant, bool) {
	v, ok := c.Get(ContextKeyParticipant)
	if !ok {
		return nil, false
	}
	participant, ok := v.(*models.Participant)
	return participant, ok
}
