package controllers

import (
	"net/http"

	"caravan-share/services"
	"caravan-share/utils"

	"github.com/gin-gonic/gin"
)

type ListingController struct {
	Reader *services.ListingReader
}

func NewListingController(reader *services.ListingReader) *ListingController {
	return &ListingController{Reader: reader}
}

// GetListings serves the browse view; ?location= narrows by location.
func (ctrl *ListingController) GetListings(c *gin.Context) {
	listings, err := ctrl.Reader.SearchListings(c.Request.Context(), c.Query("location"))
	if err != nil {
		respondError(c, err, "Failed to load caravans.")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, listings)
}

// GetListingPage serves the detail page. Facility failures degrade the page
// instead of failing it.
func (ctrl *ListingController) GetListingPage(c *gin.Context) {
	page, err := ctrl.Reader.GetListingPage(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to load caravan.")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, page)
}
