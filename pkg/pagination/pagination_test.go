package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func ctxWithQuery(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected Params
	}{
		{"defaults", "", Params{Page: 1, Limit: 20, Offset: 0}},
		{"explicit values", "page=3&limit=50", Params{Page: 3, Limit: 50, Offset: 100}},
		{"page below one falls back", "page=0&limit=10", Params{Page: 1, Limit: 10, Offset: 0}},
		{"limit below minimum falls back", "page=2&limit=0", Params{Page: 2, Limit: 20, Offset: 20}},
		{"limit capped at maximum", "page=1&limit=500", Params{Page: 1, Limit: 100, Offset: 0}},
		{"non-numeric input falls back", "page=abc&limit=xyz", Params{Page: 1, Limit: 20, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Parse(ctxWithQuery(tt.query)))
		})
	}
}
