package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/checkin-api/internal/constants"
)

// PaginationParams is the page window requested by the client.
type PaginationParams struct {
	Page  int
	Limit int
}

// GetPaginationParams reads page and limit from the query string. Missing,
// malformed, or out-of-range values fall back to the defaults.
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize)))
	if err != nil || limit < 1 || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	return PaginationParams{Page: page, Limit: limit}
}
