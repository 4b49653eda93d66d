package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/weddingwrangle/weddingwrangle/database"
	"github.com/weddingwrangle/weddingwrangle/models"
	"github.com/weddingwrangle/weddingwrangle/services"
)

type stubMailer struct{}

func (stubMailer) Send(subject, textBody, htmlBody, from, to string) error { return nil }

// setupRouter points the handlers at a fresh in-memory database and mounts
// the routes under test.
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Seed(db))

	database.DB = db
	Setup(stubMailer{}, "http://localhost:8080", "couple@example.com")

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/rsvp/:rsvp_link", GetRSVP)
	router.PUT("/rsvp/:rsvp_link", SubmitRSVP)
	router.GET("/qr/:rsvp_link", GetQRCode)
	router.POST("/api/guests/import", UploadGuests)
	return router
}

func createRouterGuest(t *testing.T) *models.Guest {
	t.Helper()

	var title models.Title
	require.NoError(t, database.DB.Where("name = ?", "Mr").First(&title).Error)
	var position models.Position
	require.NoError(t, database.DB.Where("name = ?", models.PositionGuest).First(&position).Error)

	guest, err := services.CreateGuest(database.DB, services.GuestEdit{
		TitleID:      title.ID,
		FirstName:    "Alice",
		Surname:      "Archer",
		PositionID:   position.ID,
		RSVPStatus:   models.RSVPPending,
		EmailAddress: "alice@example.com",
	})
	require.NoError(t, err)
	return guest
}

func TestGetRSVP(t *testing.T) {
	router := setupRouter(t)
	guest := createRouterGuest(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rsvp/"+guest.RSVPLink, nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Guest    models.Guest `json:"guest"`
		Statuses []struct {
			Name  string `json:"name"`
			Label string `json:"label"`
		} `json:"statuses"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Alice", body.Guest.FirstName)
	assert.NotEmpty(t, body.Statuses)
}

func TestGetRSVPUnknownLink(t *testing.T) {
	router := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rsvp/nosuchlink", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitRSVPEndpoint(t *testing.T) {
	router := setupRouter(t)
	guest := createRouterGuest(t)

	payload := `{"email_address":"alice@new.example.com","rsvp_status":"accepted"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/rsvp/"+guest.RSVPLink, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var stored models.Guest
	require.NoError(t, database.DB.First(&stored, guest.ID).Error)
	assert.Equal(t, models.RSVPAccepted, stored.RSVPStatus)
	assert.Equal(t, "alice@new.example.com", stored.EmailAddress)
	assert.NotNil(t, stored.RSVPAt)
}

func TestGetQRCode(t *testing.T) {
	router := setupRouter(t)
	guest := createRouterGuest(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/qr/"+guest.RSVPLink, nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestUploadGuestsRejectsOversizedFile(t *testing.T) {
	router := setupRouter(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("csv", "guests.csv")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("a"), services.MaxUploadBytes+1))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/guests/import", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "2 MiB")
}

func TestUploadGuestsImportsFile(t *testing.T) {
	router := setupRouter(t)

	csv := "ID,Title,First name,Surname,Email address,Position,RSVP,RSVP at,Partner first name,Partner surname,Dietaries\n" +
		"1,Mr,Adam,Smith,adam@example.com,Guest,,,,,\n"

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("csv", "guests.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/guests/import", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, database.DB.Model(&models.Guest{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
