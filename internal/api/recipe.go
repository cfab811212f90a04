package api

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tastebook/backend/config"
	"github.com/tastebook/backend/internal/service"
	"github.com/tastebook/backend/internal/validate"
)

type RecipeHandler struct {
	recipes service.IRecipeService
}

func NewRecipeHandler(recipes service.IRecipeService) *RecipeHandler {
	return &RecipeHandler{recipes: recipes}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, writeMiddleware ...gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/tags", h.ListTags)
		recipes.GET("/categories", h.CountByCategory)
		recipes.GET("/:id", h.GetRecipe)

		writes := recipes.Group("")
		writes.Use(writeMiddleware...)
		{
			writes.POST("", h.CreateRecipe)
			writes.DELETE("/:id", h.DeleteRecipe)
			writes.POST("/:id/ratings", h.RateRecipe)
			writes.POST("/:id/comments", h.CommentRecipe)
		}
	}
}

// CreateRecipe handles the multipart creation form. Validation runs before
// any upload or persistence side effect.
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	raw := validate.RawRecipeForm{
		Title:        c.PostForm("title"),
		Category:     c.PostForm("category"),
		CookingTime:  c.PostForm("cookingTime"),
		Difficulty:   c.PostForm("difficulty"),
		Tags:         c.PostForm("tags"),
		Ingredients:  c.PostForm("ingredients"),
		Instructions: c.PostForm("instructions"),
	}

	input, err := validate.ParseNewRecipe(raw)
	if err != nil {
		respondError(c, err)
		return
	}

	var imageData []byte
	var imageName string
	if file, err := c.FormFile("image"); err == nil {
		f, err := file.Open()
		if err != nil {
			respondError(c, service.ErrUploadFailed)
			return
		}
		defer func() { _ = f.Close() }()

		imageData, err = io.ReadAll(f)
		if err != nil {
			respondError(c, service.ErrUploadFailed)
			return
		}
		imageName = file.Filename
	}

	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), input, imageData, imageName)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter := service.ListFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
	if tags := strings.TrimSpace(c.Query("tags")); tags != "" {
		filter.Tags = strings.Split(tags, ",")
	}

	recipes, err := h.recipes.ListRecipes(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	if err := h.recipes.DeleteRecipe(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Recipe deleted successfully",
		"id":      id.String(),
	})
}

func (h *RecipeHandler) RateRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	var req RateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Non-integer rating values fail JSON binding.
		respondError(c, &validate.Error{
			Kind:    validate.KindInvalidRating,
			Fields:  []string{"rating"},
			Message: "rating must be an integer between 1 and 5",
		})
		return
	}

	stats, err := h.recipes.AppendRating(c.Request.Context(), id, req.Rating)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *RecipeHandler) CommentRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	var req CommentRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &validate.Error{
			Kind:    validate.KindEmptyComment,
			Fields:  []string{"text"},
			Message: "comment text must not be empty",
		})
		return
	}

	comment, err := h.recipes.AppendComment(c.Request.Context(), id, req.Text, req.Author)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

func (h *RecipeHandler) ListTags(c *gin.Context) {
	tags, err := h.recipes.DistinctTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

func (h *RecipeHandler) CountByCategory(c *gin.Context) {
	counts, err := h.recipes.CountByCategory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": counts})
}

// recipeID parses the :id path parameter. A malformed id is reported as
// not found, matching the lookup semantics.
func recipeID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps service and validation errors onto HTTP statuses.
// Unexpected storage errors leak no detail in production.
func respondError(c *gin.Context, err error) {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  verr.Message,
			"kind":   string(verr.Kind),
			"fields": verr.Fields,
		})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
	case errors.Is(err, service.ErrUploadFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Image upload failed, try again later"})
	default:
		log.Printf("[RecipeHandler] unexpected error: %v", err)
		msg := "Internal server error"
		if !config.IsProduction() {
			msg = err.Error()
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
