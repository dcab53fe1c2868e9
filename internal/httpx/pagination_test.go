package httpx

import (
	"math"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() { gin.SetMode(gin.TestMode) }

func pageOf(query string) Page {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/orders?"+query, nil)
	return ParsePage(c)
}

func TestParsePage(t *testing.T) {
	t.Parallel()
	cases := []struct {
		query  string
		number int
		limit  int
	}{
		{"", 1, DefaultLimit},
		{"page=3&limit=5", 3, 5},
		{"page=0&limit=-2", 1, DefaultLimit},
		{"page=abc&limit=1e3", 1, DefaultLimit},
		{"limit=500", 1, MaxLimit},
		{"page=9223372036854775807&limit=100", MaxPage, MaxLimit},
		{"page=99999999999999999999", 1, DefaultLimit},
	}
	for _, tc := range cases {
		got := pageOf(tc.query)
		assert.Equal(t, tc.number, got.Number, tc.query)
		assert.Equal(t, tc.limit, got.Limit, tc.query)
	}
}

func TestPage_OffsetNeverWraps(t *testing.T) {
	t.Parallel()
	p := pageOf("page=9223372036854775807&limit=100")
	assert.Positive(t, p.Offset())
	assert.LessOrEqual(t, p.Offset(), math.MaxInt32)
	assert.Equal(t, 0, Page{Number: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, Page{Number: 3, Limit: 10}.Offset())
	assert.Equal(t, 3, Page{Limit: 5}.Pages(12))
}
