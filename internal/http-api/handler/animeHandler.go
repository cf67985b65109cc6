package handler

import (
	"errors"
	"net/http"
	"strconv"

	"animehub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type AnimeHandler struct {
	animeService service.AnimeService
}

func NewAnimeHandler(animeService service.AnimeService) *AnimeHandler {
	return &AnimeHandler{
		animeService: animeService,
	}
}

// RegisterRoutes registers catalog browse routes
func (h *AnimeHandler) RegisterRoutes(public *gin.RouterGroup) {
	public.GET("/anime", h.List)
	public.GET("/anime/:anime_id", h.Get)
}

// List retrieves the catalog with pagination
// GET /api/anime?page=1&page_size=20
func (h *AnimeHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	anime, err := h.animeService.GetAll(c.Request.Context(), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, anime)
}

// Get retrieves one catalog entry
// GET /api/anime/:anime_id
func (h *AnimeHandler) Get(c *gin.Context) {
	animeID, err := strconv.ParseInt(c.Param("anime_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid anime ID"})
		return
	}

	anime, err := h.animeService.GetByID(c.Request.Context(), animeID)
	if err != nil {
		if errors.Is(err, service.ErrAnimeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, anime)
}
