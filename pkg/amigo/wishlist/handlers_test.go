package wishlist

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/amigo-app/amigo/pkg/amigo/codes"
	"github.com/amigo-app/amigo/pkg/amigo/locking"
	"github.com/amigo-app/amigo/pkg/amigo/models"
	"github.com/amigo-app/amigo/pkg/amigo/realtime"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	models.AutoMigrate(db)
	return db
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(db, realtime.NoopPublisher{}, locking.New())
	handler.RegisterRoutes(r.Group("/api/groups"))
	return r
}

func seedGroup(t *testing.T, db *gorm.DB) (models.Group, models.Participant, models.Participant) {
	adminHash, _ := codes.Hash("admin-secret")
	group := models.Group{
		Name:          "Office Exchange",
		JoinCode:      "ABCD2345",
		OwnerName:     "Ana",
		AdminCodeHash: adminHash,
	}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("Failed to create test group: %v", err)
	}

	anaHash, _ := codes.Hash("ana-secret")
	ana := models.Participant{GroupID: group.ID, Name: "Ana", IsOwner: true, AccessCodeHash: anaHash}
	if err := db.Create(&ana).Error; err != nil {
		t.Fatalf("Failed to create Ana: %v", err)
	}

	bobHash, _ := codes.Hash("bob-secret")
	bob := models.Participant{GroupID: group.ID, Name: "Bob", AccessCodeHash: bobHash}
	if err := db.Create(&bob).Error; err != nil {
		t.Fatalf("Failed to create Bob: %v", err)
	}

	return group, ana, bob
}

func postItem(t *testing.T, router *gin.Engine, participantID, bearer string, body AddItemRequest) *httptest.ResponseRecorder {
	t.Helper()
	jsonBody, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", "/api/groups/ABCD2345/participants/"+participantID+"/wishlist", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestAddItem(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	_, _, bob := seedGroup(t, db)

	resp := postItem(t, router, bob.ID, "bob-secret", AddItemRequest{
		Title: "Book",
		URL:   "https://example.com/b",
		Note:  "paperback please",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var updated WishlistResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &updated); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(updated.Wishlist) != 1 || updated.Wishlist[0].Title != "Book" {
		t.Errorf("wishlist = %+v, want the book", updated.Wishlist)
	}

	var count int64
	db.Model(&models.WishlistItem{}).Where("participant_id = ?", bob.ID).Count(&count)
	if count != 1 {
		t.Errorf("persisted items = %d, want 1", count)
	}
}

func TestAddItemWrongCredentialIsForbidden(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	_, _, bob := seedGroup(t, db)

	// Ana's code cannot write Bob's wishlist.
	resp := postItem(t, router, bob.ID, "ana-secret", AddItemRequest{
		Title: "Book",
		URL:   "https://example.com/b",
	})
	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", resp.Code)
	}

	var count int64
	db.Model(&models.WishlistItem{}).Count(&count)
	if count != 0 {
		t.Error("item was persisted despite the forbidden credential")
	}
}

func TestAddItemValidation(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	_, _, bob := seedGroup(t, db)

	tests := []struct {
		name string
		body AddItemRequest
	}{
		{"missing title", AddItemRequest{URL: "https://example.com/b"}},
		{"title too short", AddItemRequest{Title: "x", URL: "https://example.com/b"}},
		{"bad url", AddItemRequest{Title: "Book", URL: "not-a-url"}},
		{"note too long", AddItemRequest{Title: "Book", URL: "https://example.com/b", Note: strings.Repeat("n", 301)}},
	}
	for _, tt := range tests {
		resp := postItem(t, router, bob.ID, "bob-secret", tt.body)
		if resp.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", tt.name, resp.Code)
		}
	}
}

func TestAddItemDerivesAmazonImage(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	_, _, bob := seedGroup(t, db)

	resp := postItem(t, router, bob.ID, "bob-secret", AddItemRequest{
		Title: "Mechanical Keyboard",
		URL:   "https://www.amazon.com/dp/B09HK4XVWT",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var updated WishlistResponse
	json.Unmarshal(resp.Body.Bytes(), &updated)
	if len(updated.Wishlist) != 1 {
		t.Fatalf("wishlist = %+v", updated.Wishlist)
	}
	if !strings.Contains(updated.Wishlist[0].ImageURL, "B09HK4XVWT") {
		t.Errorf("imageUrl = %q, want one derived from the product id", updated.Wishlist[0].ImageURL)
	}
}

func TestAddItemKeepsExplicitImage(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	_, _, bob := seedGroup(t, db)

	resp := postItem(t, router, bob.ID, "bob-secret", AddItemRequest{
		Title:    "Mechanical Keyboard",
		URL:      "https://www.amazon.com/dp/B09HK4XVWT",
		ImageURL: "https://example.com/custom.jpg",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var updated WishlistResponse
	json.Unmarshal(resp.Body.Bytes(), &updated)
	if updated.Wishlist[0].ImageURL != "https://example.com/custom.jpg" {
		t.Errorf("imageUrl = %q, explicit image should win", updated.Wishlist[0].ImageURL)
	}
}

func TestRemoveItem(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	_, _, bob := seedGroup(t, db)

	item := models.WishlistItem{ParticipantID: bob.ID, Title: "Book", URL: "https://example.com/b"}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("Failed to create item: %v", err)
	}

	req, _ := http.NewRequest("DELETE", "/api/groups/ABCD2345/participants/"+bob.ID+"/wishlist/"+item.ID, nil)
	req.Header.Set("Authorization", "Bearer bob-secret")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var updated WishlistResponse
	json.Unmarshal(resp.Body.Bytes(), &updated)
	if len(updated.Wishlist) != 0 {
		t.Errorf("wishlist = %+v, want empty", updated.Wishlist)
	}
}

func TestRemovePeersItemNotFound(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	_, ana, bob := seedGroup(t, db)

	item := models.WishlistItem{ParticipantID: ana.ID, Title: "Socks", URL: "https://example.com/s"}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("Failed to create item: %v", err)
	}

	// Bob, acting as himself, cannot reach Ana's item.
	req, _ := http.NewRequest("DELETE", "/api/groups/ABCD2345/participants/"+bob.ID+"/wishlist/"+item.ID, nil)
	req.Header.Set("Authorization", "Bearer bob-secret")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}

	var count int64
	db.Model(&models.WishlistItem{}).Count(&count)
	if count != 1 {
		t.Error("Ana's item should survive")
	}
}
