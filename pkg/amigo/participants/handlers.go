// Package participants serves the participant-facing read views: one's own
// profile with the peer roster, and — once the admin opens the reveal — the
// recipient one is giving to.
package participants

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/amigo-app/amigo/pkg/amigo/apierrors"
	"github.com/amigo-app/amigo/pkg/amigo/auth"
	"github.com/amigo-app/amigo/pkg/amigo/models"
)

// Handler handles participant view requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new participants handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// RegisterRoutes mounts the participant routes, all gated by the
// participant's own access code.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	participantAuth := auth.ParticipantAuth(h.db)

	rg.GET("/:code/participants/:participantId", participantAuth, h.Get)
	rg.GET("/:code/participants/:participantId/assignment", participantAuth, h.GetOwnAssignment)
}

// WishlistItemResponse represents a wishlist item in participant views
type WishlistItemResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	ImageURL string `json:"imageUrl,omitempty"`
	Note     string `json:"note,omitempty"`
}

// GroupSummaryResponse is the slice of group state a participant may see
type GroupSummaryResponse struct {
	Name                 string `json:"name"`
	JoinCode             string `json:"joinCode"`
	AssignmentsGenerated bool   `json:"assignmentsGenerated"`
	AllowReveal          bool   `json:"allowReveal"`
}

// SelfResponse is the participant's own profile, email included
type SelfResponse struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Email    string                 `json:"email,omitempty"`
	IsOwner  bool                   `json:"isOwner"`
	Wishlist []WishlistItemResponse `json:"wishlist"`
}

// PeerResponse is the public view of another participant: name, owner
// flag, and wishlist. No email, no credentials, no assignment.
type PeerResponse struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	IsOwner  bool                   `json:"isOwner"`
	Wishlist []WishlistItemResponse `json:"wishlist"`
}

// GetParticipantResponse bundles the participant's view of the group
type GetParticipantResponse struct {
	Group       GroupSummaryResponse `json:"group"`
	Participant SelfResponse         `json:"participant"`
	Peers       []PeerResponse       `json:"peers"`
}

// AssignmentResponse reveals who the caller is giving to
type AssignmentResponse struct {
	Participant PeerResponse `json:"participant"`
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

// loadRoster returns the group's participants with wishlists in enrollment
// order.
func (h *Handler) loadRoster(groupID string) ([]models.Participant, error) {
	var roster []models.Participant
	err := h.db.
		Preload("Wishlist", func(db *gorm.DB) *gorm.DB {
			return db.Order("wishlist_items.created_at, wishlist_items.id")
		}).
		Where("group_id = ?", groupID).
		Order("created_at, id").
		Find(&roster).Error
	return roster, err
}

// Get returns the caller's own profile plus the public view of every peer.
func (h *Handler) Get(c *gin.Context) {
	group, _ := auth.GetGroup(c)
	self, _ := auth.GetParticipant(c)

	roster, err := h.loadRoster(group.ID)
	if err != nil {
		apierrors.JSON(c, http.StatusInternalServerError, apierrors.KindInternal, "Failed to fetch participants")
		return
	}

	resp := GetParticipantResponse{
		Group: GroupSummaryResponse{
			Name:                 group.Name,
			JoinCode:             group.JoinCode,
			AssignmentsGenerated: group.AssignmentsGenerated,
			AllowReveal:          group.AllowReveal,
		},
		Peers: []PeerResponse{},
	}

	for _, p := range roster {
		if p.ID == self.ID {
			resp.Participant = SelfResponse{
				ID:       p.ID,
				Name:     p.Name,
				Email:    p.Email,
				IsOwner:  p.IsOwner,
				Wishlist: wishlistToResponse(p.Wishlist),
			}
			continue
		}
		resp.Peers = append(resp.Peers, PeerResponse{
			ID:       p.ID,
			Name:     p.Name,
			IsOwner:  p.IsOwner,
			Wishlist: wishlistToResponse(p.Wishlist),
		})
	}

	c.JSON(http.StatusOK, resp)
}

// GetOwnAssignment reveals the caller's recipient. It refuses while no
// assignment exists and while the admin keeps the reveal closed.
func (h *Handler) GetOwnAssignment(c *gin.Context) {
	group, _ := auth.GetGroup(c)
	self, _ := auth.GetParticipant(c)

	if !group.AssignmentsGenerated {
		apierrors.JSON(c, http.StatusConflict, apierrors.KindNotYetGenerated, "Assignments have not been generated yet")
		return
	}
	if !group.AllowReveal {
		apierrors.JSON(c, http.StatusForbidden, apierrors.KindRevealNotAllowed, "The admin has not enabled the reveal yet")
		return
	}

	if self.AssignedParticipantID == nil {
		apierrors.JSON(c, http.StatusNotFound, apierrors.KindNotFound, "Assignment not available")
		return
	}

	var recipient models.Participant
	err := h.db.
		Preload("Wishlist", func(db *gorm.DB) *gorm.DB {
			return db.Order("wishlist_items.created_at, wishlist_items.id")
		}).
		Where("group_id = ? AND id = ?", group.ID, *self.AssignedParticipantID).
		First(&recipient).Error
	if err != nil {
		apierrors.JSON(c, http.StatusNotFound, apierrors.KindNotFound, "Assignment not available")
		return
	}

	c.JSON(http.StatusOK, AssignmentResponse{
		Participant: PeerResponse{
			ID:       recipient.ID,
			Name:     recipient.Name,
			IsOwner:  recipient.IsOwner,
			Wishlist: wishlistToResponse(recipient.Wishlist),
		},
	})
}
