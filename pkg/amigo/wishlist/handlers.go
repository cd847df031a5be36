// Package wishlist lets a participant manage their own gift ideas. Items
// belong to exactly one participant and only that participant's access code
// can change them; everyone else in the group just reads.
package wishlist

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/amigo-app/amigo/pkg/amigo/apierrors"
	"github.com/amigo-app/amigo/pkg/amigo/auth"
	"github.com/amigo-app/amigo/pkg/amigo/locking"
	"github.com/amigo-app/amigo/pkg/amigo/models"
	"github.com/amigo-app/amigo/pkg/amigo/realtime"
)

// Handler handles wishlist mutation requests
type Handler struct {
	db        *gorm.DB
	publisher realtime.Publisher
	locks     *locking.GroupLocks
}

// NewHandler creates a new wishlist handler
func NewHandler(db *gorm.DB, publisher realtime.Publisher, locks *locking.GroupLocks) *Handler {
	return &Handler{db: db, publisher: publisher, locks: locks}
}

// RegisterRoutes mounts the wishlist routes behind the participant's own
// access code.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	participantAuth := auth.ParticipantAuth(h.db)

	rg.POST("/:code/participants/:participantId/wishlist", participantAuth, h.Add)
	rg.DELETE("/:code/participants/:participantId/wishlist/:itemId", participantAuth, h.Remove)
}

// AddItemRequest represents the request to add a wishlist item
type AddItemRequest struct {
	Title    string `json:"title" binding:"required,min=2,max=200"`
	URL      string `json:"url" binding:"required,url"`
	ImageURL string `json:"imageUrl" binding:"omitempty,url"`
	Note     string `json:"note" binding:"omitempty,max=300"`
}

// ItemResponse represents a wishlist item in API responses
type ItemResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	ImageURL string `json:"imageUrl,omitempty"`
	Note     string `json:"note,omitempty"`
}

// WishlistResponse returns the participant's full wishlist after a change
type WishlistResponse struct {
	Wishlist []ItemResponse `json:"wishlist"`
}

func itemsToResponse(items []models.WishlistItem) []ItemResponse {
	responses := make([]ItemResponse, len(items))
	for i, item := range items {
		responses[i] = ItemResponse{
			ID:       item.ID,
			Title:    item.Title,
			URL:      item.URL,
			ImageURL: item.ImageURL,
			Note:     item.Note,
		}
	}
	return responses
}

// currentWishlist returns the participant's items in creation order.
func (h *Handler) currentWishlist(participantID string) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := h.db.Where("participant_id = ?", participantID).Order("created_at, id").Find(&items).Error
	return items, err
}

// Add appends an item to the caller's wishlist. Amazon product links
// without an explicit image get one derived from the product id.
func (h *Handler) Add(c *gin.Context) {
	group, _ := auth.GetGroup(c)
	participant, _ := auth.GetParticipant(c)

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.JSON(c, http.StatusBadRequest, apierrors.KindValidation, "Invalid wishlist item: "+err.Error())
		return
	}

	imageURL := req.ImageURL
	if imageURL == "" {
		imageURL = deriveImageURL(req.URL)
	}

	item := models.WishlistItem{
		ParticipantID: participant.ID,
		Title:         req.Title,
		URL:           req.URL,
		ImageURL:      imageURL,
		Note:          req.Note,
	}

	h.locks.Lock(group.JoinCode)
	defer h.locks.Unlock(group.JoinCode)

	if err := h.db.Create(&item).Error; err != nil {
		apierrors.JSON(c, http.StatusInternalServerError, apierrors.KindInternal, "Failed to add wishlist item")
		return
	}

	items, err := h.currentWishlist(participant.ID)
	if err != nil {
		apierrors.JSON(c, http.StatusInternalServerError, apierrors.KindInternal, "Failed to fetch wishlist")
		return
	}

	h.publisher.Publish(group.JoinCode, realtime.EventWishlistUpdated, gin.H{
		"participantId": participant.ID,
	})

	c.JSON(http.StatusCreated, WishlistResponse{Wishlist: itemsToResponse(items)})
}

// Remove deletes one of the caller's items.
func (h *Handler) Remove(c *gin.Context) {
	group, _ := auth.GetGroup(c)
	participant, _ := auth.GetParticipant(c)

	h.locks.Lock(group.JoinCode)
	defer h.locks.Unlock(group.JoinCode)

	var item models.WishlistItem
	if err := h.db.Where("participant_id = ? AND id = ?", participant.ID, c.Param("itemId")).First(&item).Error; err != nil {
		apierrors.JSON(c, http.StatusNotFound, apierrors.KindNotFound, "Wishlist item not found")
		return
	}

	if err := h.db.Delete(&item).Error; err != nil {
		apierrors.JSON(c, http.StatusInternalServerError, apierrors.KindInternal, "Failed to remove wishlist item")
		return
	}

	items, err := h.currentWishlist(participant.ID)
	if err != nil {
		apierrors.JSON(c, http.StatusInternalServerError, apierrors.KindInternal, "Failed to fetch wishlist")
		return
	}

	h.publisher.Publish(group.JoinCode, realtime.EventWishlistUpdated, gin.H{
		"participantId": participant.ID,
	})

	c.JSON(http.StatusOK, WishlistResponse{Wishlist: itemsToResponse(items)})
}
