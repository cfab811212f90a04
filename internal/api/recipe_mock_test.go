package api

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/tastebook/backend/internal/mocks"
	"github.com/tastebook/backend/internal/service"
)

func TestListRecipesStorageFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	recipes := new(mocks.MockRecipeService)
	recipes.On("ListRecipes", mock.Anything, service.ListFilter{}).
		Return(nil, errors.New("connection refused"))

	router := gin.New()
	NewRecipeHandler(recipes).RegisterRoutes(router.Group("/api/v1"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/recipes", nil))

	assert.Equal(t, 500, w.Code)
	recipes.AssertExpectations(t)
}

func TestDistinctTagsStorageFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	recipes := new(mocks.MockRecipeService)
	recipes.On("DistinctTags", mock.Anything).
		Return(nil, errors.New("connection refused"))

	router := gin.New()
	NewRecipeHandler(recipes).RegisterRoutes(router.Group("/api/v1"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/recipes/tags", nil))

	assert.Equal(t, 500, w.Code)
	recipes.AssertExpectations(t)
}
