package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tastebook/backend/internal/model"
	"github.com/tastebook/backend/internal/service"
)

// stubObjectStore is a controllable in-memory object store for handler tests.
type stubObjectStore struct {
	failUpload bool
	failDelete bool
	deleted    []string
}

func (s *stubObjectStore) Upload(ctx context.Context, data []byte, suggestedName string) (string, error) {
	if s.failUpload {
		return "", fmt.Errorf("%w: bucket unreachable", service.ErrUploadFailed)
	}
	return "https://bucket.s3.amazonaws.com/recipe-images/" + suggestedName, nil
}

func (s *stubObjectStore) Delete(ctx context.Context, url string) error {
	s.deleted = append(s.deleted, url)
	if s.failDelete {
		return errors.New("object storage unavailable")
	}
	return nil
}

func setupRecipeTestRouter(t *testing.T, store *stubObjectStore) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Recipe{}))

	recipeService := service.NewRecipeService(db, store, nil)
	handler := NewRecipeHandler(recipeService)

	router := gin.New()
	handler.RegisterRoutes(router.Group("/api/v1"))
	return router, db
}

// multipartRecipe builds a multipart creation request from form fields.
func multipartRecipe(t *testing.T, fields map[string]string, imageName string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if imageName != "" {
		part, err := writer.CreateFormFile("image", imageName)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req, err := http.NewRequest("POST", "/api/v1/recipes", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func validRecipeFields() map[string]string {
	return map[string]string{
		"title":        "Banana Bread",
		"category":     "Bread",
		"cookingTime":  "45",
		"difficulty":   "easy",
		"tags":         `["baking", "sweet"]`,
		"ingredients":  `[{"name": "banana", "amount": "3"}, {"name": "flour", "amount": "250g"}]`,
		"instructions": `["Mash the bananas.", "Bake for 45 minutes."]`,
	}
}
