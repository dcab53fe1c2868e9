package httpx

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps Offset within an int32 for any allowed limit.
	MaxPage = math.MaxInt32 / MaxLimit
)

// Page is a 1-indexed page request.
type Page struct {
	Number int
	Limit  int
}

// ParsePage reads ?page and ?limit, falling back to page 1 and DefaultLimit
// on missing or malformed values. Page numbers past MaxPage are clamped to it.
func ParsePage(c *gin.Context) Page {
	p := Page{Number: 1, Limit: DefaultLimit}
	if n, err := strconv.Atoi(c.Query("page")); err == nil && n > 0 {
		p.Number = n
	}
	if n, err := strconv.Atoi(c.Query("limit")); err == nil && n > 0 {
		p.Limit = n
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Number > MaxPage {
		p.Number = MaxPage
	}
	return p
}

func (p Page) Offset() int { return (p.Number - 1) * p.Limit }

// Pages is ceil(total / limit).
func (p Page) Pages(total int) int {
	if p.Limit <= 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}
