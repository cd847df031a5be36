// Package groups implements the host-facing lifecycle of a gift exchange:
// creating a group, enrolling participants, generating assignments, gating
// the reveal, and deleting the whole thing.
package groups

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/amigo-app/amigo/pkg/amigo/apierrors"
	"github.com/amigo-app/amigo/pkg/amigo/assignment"
	"github.com/amigo-app/amigo/pkg/amigo/auth"
	"github.com/amigo-app/amigo/pkg/amigo/codes"
	"github.com/amigo-app/amigo/pkg/amigo/locking"
	"github.com/amigo-app/amigo/pkg/amigo/metrics"
	"github.com/amigo-app/amigo/pkg/amigo/models"
	"github.com/amigo-app/amigo/pkg/amigo/realtime"
)

// Handler handles group lifecycle requests
type Handler struct {
	db        *gorm.DB
	publisher realtime.Publisher
	locks     *locking.GroupLocks
}

// NewHandler creates a new groups handler
func NewHandler(db *gorm.DB, publisher realtime.Publisher, locks *locking.GroupLocks) *Handler {
	return &Handler{db: db, publisher: publisher, locks: locks}
}

// RegisterRoutes mounts the group routes. Creating and joining are public;
// everything else requires the group's admin code.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	adminAuth := auth.AdminAuth(h.db)

	rg.POST("", h.Create)
	rg.POST("/:code/participants", h.Join)
	rg.GET("/:code", adminAuth, h.GetAsAdmin)
	rg.PATCH("/:code/settings", adminAuth, h.UpdateSettings)
	rg.POST("/:code/assignments", adminAuth, h.GenerateAssignments)
	rg.DELETE("/:code", adminAuth, h.Delete)
}

// CreateGroupRequest represents the request to create a group
type CreateGroupRequest struct {
	Name       string `json:"name" binding:"required,min=3,max=120"`
	OwnerName  string `json:"ownerName" binding:"required,min=2,max=120"`
	OwnerEmail string `json:"ownerEmail" binding:"omitempty,email"`
}

// JoinGroupRequest represents the request to join a group
type JoinGroupRequest struct {
	Name  string `json:"name" binding:"required,min=2,max=120"`
	Email string `json:"email" binding:"omitempty,email"`
}

// UpdateSettingsRequest represents the request to change the reveal gate
type UpdateSettingsRequest struct {
	AllowReveal *bool `json:"allowReveal" binding:"required"`
}

// HostParticipantResponse is the host's enrollment, access code included.
type HostParticipantResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AccessCode string `json:"accessCode"`
}

// CreateGroupResponse carries the three secrets exactly once; none of them
// can be recovered later.
type CreateGroupResponse struct {
	ID                   string                  `json:"id"`
	Name                 string                  `json:"name"`
	JoinCode             string                  `json:"joinCode"`
	AdminCode            string                  `json:"adminCode"`
	OwnerName            string                  `json:"ownerName"`
	OwnerEmail           string                  `json:"ownerEmail,omitempty"`
	AssignmentsGenerated bool                    `json:"assignmentsGenerated"`
	AllowReveal          bool                    `json:"allowReveal"`
	HostParticipant      HostParticipantResponse `json:"hostParticipant"`
}

// JoinedParticipantResponse is the newly enrolled participant plus their
// access code, shown once.
type JoinedParticipantResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	IsOwner    bool   `json:"isOwner"`
	AccessCode string `json:"accessCode"`
}

// WishlistItemResponse represents a wishlist item in admin views
type WishlistItemResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	ImageURL string `json:"imageUrl,omitempty"`
	Note     string `json:"note,omitempty"`
}

// ParticipantAdminResponse is one roster entry as the admin sees it:
// profile and wishlist, never credentials, never assignment links.
type ParticipantAdminResponse struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Email         string                 `json:"email,omitempty"`
	IsOwner       bool                   `json:"isOwner"`
	Wishlist      []WishlistItemResponse `json:"wishlist"`
	WishlistCount int                    `json:"wishlistCount"`
}

// GroupAdminResponse is the full group snapshot for the admin
type GroupAdminResponse struct {
	ID                   string                     `json:"id"`
	Name                 string                     `json:"name"`
	JoinCode             string                     `json:"joinCode"`
	OwnerName            string                     `json:"ownerName"`
	OwnerEmail           string                     `json:"ownerEmail,omitempty"`
	AssignmentsGenerated bool                       `json:"assignmentsGenerated"`
	AllowReveal          bool                       `json:"allowReveal"`
	Participants         []ParticipantAdminResponse `json:"participants"`
	CreatedAt            string                     `json:"createdAt"`
	UpdatedAt            string                     `json:"updatedAt"`
}

// SettingsResponse reports the two gates after a state change
type SettingsResponse struct {
	AssignmentsGenerated bool `json:"assignmentsGenerated"`
	AllowReveal          bool `json:"allowReveal"`
}

func wishlistToResponse(items []models.WishlistItem) []WishlistItemResponse {
	responses := make([]WishlistItemResponse, len(items))
	for i, item := range items {
		responses[i] = WishlistItemResponse{
			ID:       item.ID,
			Title:    item.Title,
			URL:      item.URL,
			ImageURL: item.ImageURL,
			Note:     item.Note,
		}
	}
	return responses
}

// uniqueJoinCode draws join codes until one is free. Collisions are rare at
// this alphabet size, so a small retry budget is plenty.
func (h *Handler) uniqueJoinCode() (string, error) {
	for attempts := 0; attempts < 10; attempts++ {
		code, err := codes.NewJoinCode()
		if err != nil {
			return "", err
		}
		var existing models.Group
		if err := h.db.Where("join_code = ?", code).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			return code, nil
		}
	}
	return "", errors.New("could not allocate a unique join code")
}

// loadGroupForUpdate re-reads the group inside the caller's lock so the
// mutation operates on current state, not on whatever the middleware saw.
func (h *Handler) loadGroupForUpdate(joinCode string) (*models.Group, error) {
	var group models.Group
	if err := h.db.Where("join_code = ?", joinCode).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// orderedParticipants returns the group's roster in enrollment order.
func (h *Handler) orderedParticipants(groupID string) ([]models.Participant, error) {
	var participants []models.Participant
	err := h.db.Where("group_id = ?", groupID).Order("created_at, id").Find(&participants).Error
	return participants, err
}

// Create creates a group and enrolls the owner as its first participant.
// The join code, admin code, and the host's access code are all minted here
// and returned exactly once.
func (h *Handler) Create(c *gin.Context) {
	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.JSON(c, http.StatusBadRequest, apierrors.KindValidation, "Invalid group details: "+err.Error())
		return
	}

	joinCode, err := h.uniqueJoinCode()
	if err != nil {
		apierrors.JSON(c, http.StatusInternalServerError, apierrors.KindInternal, "Failed to create group")
		return
	}

	adminCode, err := codes.NewSecret()
	if err != nil {
		apierrors.JSON(c, http.StatusInternalServerError, apierrors.KindInternal, "Failed to create group")
		return
	}
	adminHash, err := codes.Hash(adminCode)
	if err != nil {
		apierrors.JSON(c, http.StatusInternalServerError, apierrors.KindInternal, "Failed to create group")
		return
	}

	accessCode, err := codes.NewSecret()
	if err != nil {
		apierrors.JSON(c, http.StatusInternalServerError, apierrors.KindInternal, "Failed to create group")
		return
	}
	accessHash, err := codes.Hash(accessCode)
	if err != nil {
		apierrors.JSON(c, http.StatusInternalServerError, apierrors.KindInternal, "Failed to create group")
		return
	}

	group := models.Group{
		Name:          req.Name,
		JoinCode:      joinCode,
		OwnerName:     req.OwnerName,
		OwnerEmail:    req.OwnerEmail,
		AdminCodeHash: adminHash,
	}
	host := models.Participant{
		Name:           req.OwnerName,
		Email:          req.OwnerEmail,
		IsOwner:        true,
		AccessCodeHash: accessHash,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		host.GroupID = group.ID
		return tx.Create(&host).Error
	})
	if err != nil {
		apierrors.JSON(c, http.StatusInternalServerError, apierrors.KindInternal, "Failed to create group")
		return
	}

	metrics.GroupsCreated.Inc()
	metrics.ParticipantsJoined.Inc()
	slog.Info("Group created", "group_id", group.ID, "join_code", group.JoinCode)

	c.JSON(http.StatusCreated, CreateGroupResponse{
		ID:                   group.ID,
		Name:                 group.Name,
		JoinCode:             group.JoinCode,
		AdminCode:            adminCode,
		OwnerName:            group.OwnerName,
		OwnerEmail:           group.OwnerEmail,
		AssignmentsGenerated: group.AssignmentsGenerated,
		AllowReveal:          group.AllowReveal,
		HostParticipant: HostParticipantResponse{
			ID:         host.ID,
			Name:       host.Name,
			AccessCode: accessCode,
		},
	})
}

// Join enrolls a new participant by join code. Joining after assignments
// were generated invalidates them: the roster changed, so the pairing is no
// longer well-formed, the gates reset, and stale recipient links are
// cleared.
func (h *Handler) Join(c *gin.Context) {
	joinCode := auth.NormalizeJoinCode(c.Param("code"))

	var req JoinGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.JSON(c, http.StatusBadRequest, apierrors.KindValidation, "Invalid participant details: "+err.Error())
		return
	}

	h.locks.Lock(joinCode)
	defer h.locks.Unlock(joinCode)

	group, err := h.loadGroupForUpdate(joinCode)
	if err != nil {
		apierrors.JSON(c, http.StatusNotFound, apierrors.KindNotFound, "Group not found")
		return
	}

	accessCode, err := codes.NewSecret()
	if err != nil {
		apierrors.JSON(c, http.StatusInternalServerError, apierrors.KindInternal, "Failed to join group")
		return
	}
	accessHash, err := codes.Hash(accessCode)
	if err != nil {
		apierrors.JSON(c, http.StatusInternalServerError, apierrors.KindInternal, "Failed to join group")
		return
	}

	participant := models.Participant{
		GroupID:        group.ID,
		Name:           req.Name,
		Email:          req.Email,
		AccessCodeHash: accessHash,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&participant).Error; err != nil {
			return err
		}
		if !group.AssignmentsGenerated {
			return nil
		}
		// Roster grew under an existing pairing: reset both gates and
		// clear every stale recipient link in the same commit.
		if err := tx.Model(&models.Participant{}).Where("group_id = ?", group.ID).
			Update("assigned_participant_id", nil).Error; err != nil {
			return err
		}
		return tx.Model(group).Updates(map[string]interface{}{
			"assignments_generated": false,
			"allow_reveal":          false,
		}).Error
	})
	if err != nil {
		apierrors.JSON(c, http.StatusInternalServerError, apierrors.KindInternal, "Failed to join group")
		return
	}

	metrics.ParticipantsJoined.Inc()
	h.publisher.Publish(group.JoinCode, realtime.EventParticipantsAdded, gin.H{
		"participantId": participant.ID,
		"name":          participant.Name,
	})

	c.JSON(http.StatusCreated, JoinedParticipantResponse{
		ID:         participant.ID,
		Name:       participant.Name,
		Email:      participant.Email,
		IsOwner:    participant.IsOwner,
		AccessCode: accessCode,
	})
}

// GetAsAdmin returns the full roster with wishlists. Credentials and
// assignment links are never part of this view.
func (h *Handler) GetAsAdmin(c *gin.Context) {
	authGroup, _ := auth.GetGroup(c)

	var group models.Group
	err := h.db.
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("participants.created_at, participants.id")
		}).
		Preload("Participants.Wishlist", func(db *gorm.DB) *gorm.DB {
			return db.Order("wishlist_items.created_at, wishlist_items.id")
		}).
		First(&group, "id = ?", authGroup.ID).Error
	if err != nil {
		apierrors.JSON(c, http.StatusInternalServerError, apierrors.KindInternal, "Failed to fetch group")
		return
	}

	participants := make([]ParticipantAdminResponse, len(group.Participants))
	for i, p := range group.Participants {
		participants[i] = ParticipantAdminResponse{
			ID:            p.ID,
			Name:          p.Name,
			Email:         p.Email,
			IsOwner:       p.IsOwner,
			Wishlist:      wishlistToResponse(p.Wishlist),
			WishlistCount: len(p.Wishlist),
		}
	}

	c.JSON(http.StatusOK, GroupAdminResponse{
		ID:                   group.ID,
		Name:                 group.Name,
		JoinCode:             group.JoinCode,
		OwnerName:            group.OwnerName,
		OwnerEmail:           group.OwnerEmail,
		AssignmentsGenerated: group.AssignmentsGenerated,
		AllowReveal:          group.AllowReveal,
		Participants:         participants,
		CreatedAt:            group.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:            group.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	})
}

// UpdateSettings flips the reveal gate. Turning it on requires an existing
// assignment; turning it off is always allowed.
func (h *Handler) UpdateSettings(c *gin.Context) {
	authGroup, _ := auth.GetGroup(c)

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.JSON(c, http.StatusBadRequest, apierrors.KindValidation, "Invalid settings: "+err.Error())
		return
	}

	h.locks.Lock(authGroup.JoinCode)
	defer h.locks.Unlock(authGroup.JoinCode)

	group, err := h.loadGroupForUpdate(authGroup.JoinCode)
	if err != nil {
		apierrors.JSON(c, http.StatusNotFound, apierrors.KindNotFound, "Group not found")
		return
	}

	if *req.AllowReveal && !group.AssignmentsGenerated {
		apierrors.JSON(c, http.StatusConflict, apierrors.KindInvalidState, "Assignments must be generated before the reveal can be enabled")
		return
	}

	if err := h.db.Model(group).Update("allow_reveal", *req.AllowReveal).Error; err != nil {
		apierrors.JSON(c, http.StatusInternalServerError, apierrors.KindInternal, "Failed to update settings")
		return
	}

	h.publisher.Publish(group.JoinCode, realtime.EventSettingsUpdated, gin.H{
		"allowReveal": *req.AllowReveal,
	})

	c.JSON(http.StatusOK, SettingsResponse{
		AssignmentsGenerated: group.AssignmentsGenerated,
		AllowReveal:          *req.AllowReveal,
	})
}

// GenerateAssignments draws the pairing for the current roster and fixes
// it. The reveal stays off until the admin enables it separately.
func (h *Handler) GenerateAssignments(c *gin.Context) {
	authGroup, _ := auth.GetGroup(c)

	h.locks.Lock(authGroup.JoinCode)
	defer h.locks.Unlock(authGroup.JoinCode)

	group, err := h.loadGroupForUpdate(authGroup.JoinCode)
	if err != nil {
		apierrors.JSON(c, http.StatusNotFound, apierrors.KindNotFound, "Group not found")
		return
	}

	participants, err := h.orderedParticipants(group.ID)
	if err != nil {
		apierrors.JSON(c, http.StatusInternalServerError, apierrors.KindInternal, "Failed to fetch participants")
		return
	}

	ids := make([]string, len(participants))
	for i, p := range participants {
		ids[i] = p.ID
	}

	pairing, err := assignment.Generate(ids)
	if errors.Is(err, assignment.ErrInsufficientParticipants) {
		apierrors.JSON(c, http.StatusBadRequest, apierrors.KindInsufficientParticipants, "At least two participants are required")
		return
	}
	if err != nil {
		metrics.AssignmentRetriesExhausted.Inc()
		slog.Error("Assignment generation failed", "group_id", group.ID, "participants", len(ids), "error", err)
		apierrors.JSON(c, http.StatusInternalServerError, apierrors.KindGenerationFailed, "Could not generate assignments, try again")
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		for giver, recipient := range pairing {
			if err := tx.Model(&models.Participant{}).Where("id = ?", giver).
				Update("assigned_participant_id", recipient).Error; err != nil {
				return err
			}
		}
		return tx.Model(group).Updates(map[string]interface{}{
			"assignments_generated": true,
			"allow_reveal":          false,
		}).Error
	})
	if err != nil {
		apierrors.JSON(c, http.StatusInternalServerError, apierrors.KindInternal, "Failed to store assignments")
		return
	}

	metrics.AssignmentsGenerated.Inc()
	slog.Info("Assignments generated", "group_id", group.ID, "participants", len(ids))
	h.publisher.Publish(group.JoinCode, realtime.EventAssignmentsGenerated, gin.H{})

	c.JSON(http.StatusOK, SettingsResponse{
		AssignmentsGenerated: true,
		AllowReveal:          false,
	})
}

// Delete removes the group and everything it owns. A final event lets
// connected clients evict their local state before the topic goes dark.
func (h *Handler) Delete(c *gin.Context) {
	authGroup, _ := auth.GetGroup(c)

	h.locks.Lock(authGroup.JoinCode)
	defer h.locks.Unlock(authGroup.JoinCode)

	group, err := h.loadGroupForUpdate(authGroup.JoinCode)
	if err != nil {
		apierrors.JSON(c, http.StatusNotFound, apierrors.KindNotFound, "Group not found")
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("participant_id IN (?)",
			tx.Model(&models.Participant{}).Select("id").Where("group_id = ?", group.ID),
		).Delete(&models.WishlistItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", group.ID).Delete(&models.Participant{}).Error; err != nil {
			return err
		}
		return tx.Delete(group).Error
	})
	if err != nil {
		apierrors.JSON(c, http.StatusInternalServerError, apierrors.KindInternal, "Failed to delete group")
		return
	}

	slog.Info("Group deleted", "group_id", group.ID, "join_code", group.JoinCode)
	h.publisher.Publish(group.JoinCode, realtime.EventGroupDeleted, gin.H{})

	c.Status(http.StatusNoContent)
}
