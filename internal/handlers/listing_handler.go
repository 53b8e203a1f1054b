package handlers

import (
	"net/http"

	"rentshare_backend/internal/middleware"
	"rentshare_backend/internal/services"
	"rentshare_backend/internal/services/dto"
	"rentshare_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type ListingHandler struct {
	*BaseHandler
	listingService services.ListingService
}

func NewListingHandler(base *BaseHandler, listingService services.ListingService) *ListingHandler {
	return &ListingHandler{
		BaseHandler:    base,
		listingService: listingService,
	}
}

func (h *ListingHandler) RegisterRoutes(r *gin.RouterGroup) {
	public := r.Group("/listings")
	{
		public.GET("", h.ListListings)
		public.GET("/nearby", h.FindNearby)
		public.GET("/:id", h.GetListing)
	}

	listings := r.Group("/listings")
	listings.Use(middleware.AuthMiddleware())
	{
		listings.POST("", h.CreateListing)
		listings.PUT("/:id", h.UpdateListing)
		listings.DELETE("/:id", h.DeleteListing)
	}

	// kept for clients that delete with ?id=
	legacy := r.Group("/listing")
	legacy.Use(middleware.AuthMiddleware())
	{
		legacy.DELETE("", h.DeleteListingByQuery)
	}
}

func (h *ListingHandler) ListListings(c *gin.Context) {
	var filter dto.ListingFilter
	if !h.BindAndValidate_Query(c, &filter) {
		return
	}
	page, pageSize := ParsePagination(c)

	listings, err := h.listingService.ListListings(h.GetDB(c), &filter, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, listings)
}

func (h *ListingHandler) FindNearby(c *gin.Context) {
	var q dto.NearbyQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}

	listings, err := h.listingService.FindNearby(c.Request.Context(), h.GetDB(c), &q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(listings), "results": listings})
}

func (h *ListingHandler) GetListing(c *gin.Context) {
	listing, err := h.listingService.GetListing(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// CreateListing expects multipart/form-data; rates and locations are JSON array strings.
func (h *ListingHandler) CreateListing(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateListingRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	listing, err := h.listingService.CreateListing(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, listing)
}

func (h *ListingHandler) UpdateListing(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateListingRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	listing, err := h.listingService.UpdateListing(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

func (h *ListingHandler) DeleteListing(c *gin.Context) {
	h.deleteListing(c, c.Param("id"))
}

func (h *ListingHandler) DeleteListingByQuery(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		apperrors.HandleError(c, apperrors.FieldError("id", "This field is required"))
		return
	}
	h.deleteListing(c, id)
}

func (h *ListingHandler) deleteListing(c *gin.Context, listingID string) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	err := h.listingService.DeleteListing(c.Request.Context(), h.GetDB(c), userID, middleware.GetRole(c), listingID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
