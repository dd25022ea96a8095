package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/franciscosanchezn/freshbite-api/internal/auth"
	"github.com/franciscosanchezn/freshbite-api/internal/database"
	"github.com/franciscosanchezn/freshbite-api/internal/models"
	"github.com/franciscosanchezn/freshbite-api/internal/payment"
	"github.com/franciscosanchezn/freshbite-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "controller-test-secret"

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(database.Models()...))
	return db
}

func setupAuthRouter(t *testing.T) (*gin.Engine, string) {
	uploadDir := t.TempDir()
	ac := NewAuthController(services.NewUserService(setupTestDB(t)), testSecret, time.Hour, uploadDir)

	router := gin.New()
	router.POST("/register", ac.Register)
	router.POST("/login", ac.Login)
	return router, uploadDir
}

func multipartBody(t *testing.T, fields map[string]string, fileField, fileName string) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestRegisterMultipart(t *testing.T) {
	router, uploadDir := setupAuthRouter(t)

	body, contentType := multipartBody(t, map[string]string{
		"username":        "nila",
		"email":           "nila@example.com",
		"password":        "secret123",
		"primary_address": `{"address_line":"4 Beach Road","latitude":13.05,"longitude":80.28}`,
	}, "profile_picture", "me.png")

	req := httptest.NewRequest(http.MethodPost, "/register", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		User UserResponse `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "nila", resp.User.Username)
	assert.Equal(t, models.RoleUser, resp.User.Role)
	require.NotNil(t, resp.User.ProfilePicture)
	assert.True(t, strings.HasPrefix(*resp.User.ProfilePicture, "/uploads/"))
	assert.True(t, strings.HasSuffix(*resp.User.ProfilePicture, ".png"))

	_, err := os.Stat(filepath.Join(uploadDir, strings.TrimPrefix(*resp.User.ProfilePicture, "/uploads/")))
	assert.NoError(t, err)
}

func TestRegisterConflictRemovesUpload(t *testing.T) {
	router, uploadDir := setupAuthRouter(t)

	register := func(username, picture string) *httptest.ResponseRecorder {
		body, contentType := multipartBody(t, map[string]string{
			"username": username,
			"email":    "mira@example.com",
			"password": "secret123",
		}, "profile_picture", picture)
		req := httptest.NewRequest(http.MethodPost, "/register", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := register("mira", "first.png")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	entries, err := os.ReadDir(uploadDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	kept := entries[0].Name()

	w = register("mira2", "second.png")
	assert.Equal(t, http.StatusConflict, w.Code)

	entries, err = os.ReadDir(uploadDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, kept, entries[0].Name())
}

func TestRegisterRejectsNonImageUpload(t *testing.T) {
	router, _ := setupAuthRouter(t)

	body, contentType := multipartBody(t, map[string]string{
		"username": "arun",
		"email":    "arun@example.com",
		"password": "secret123",
	}, "profile_picture", "script.sh")

	req := httptest.NewRequest(http.MethodPost, "/register", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	router, _ := setupAuthRouter(t)

	post := func(path string, payload interface{}) *httptest.ResponseRecorder {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := post("/register", gin.H{"username": "vel", "email": "vel@example.com", "password": "secret123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = post("/register", gin.H{"username": "vel2", "email": "vel@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = post("/register", gin.H{"username": "short", "email": "short@example.com", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post("/login", gin.H{"email": "vel@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = post("/login", gin.H{"email": "vel@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Token     string `json:"token"`
		ExpiresIn int64  `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := auth.ParseToken([]byte(testSecret), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, claims.Role)
}

func TestPaymentController(t *testing.T) {
	pc := NewPaymentController(payment.NewMockProvider(""))
	router := gin.New()
	router.GET("/key", pc.Key)
	router.POST("/create-order", pc.CreateOrder)
	router.POST("/verify", pc.Verify)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/key", nil))
	assert.JSONEq(t, `{"key":"`+payment.DefaultPublicKey+`"}`, w.Body.String())

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid", `{"amount":99.5,"currency":"inr"}`, http.StatusOK},
		{"zero amount", `{"amount":0}`, http.StatusBadRequest},
		{"negative amount", `{"amount":-5}`, http.StatusBadRequest},
		{"malformed", `{"amount":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/create-order", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/verify", strings.NewReader(`{"razorpay_order_id":"order_mock_1","razorpay_payment_id":"pay_1"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var verify map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verify))
	assert.Equal(t, true, verify["success"])
	assert.Equal(t, payment.ModeMock, verify["mode"])
}
