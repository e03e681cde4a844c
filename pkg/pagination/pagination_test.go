package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query     string
		wantPage  int
		wantLimit int
	}{
		{"", DefaultPage, DefaultLimit},
		{"?page=3&limit=10", 3, 10},
		{"?page=-1&limit=0", DefaultPage, DefaultLimit},
		{"?limit=1000", DefaultPage, MaxLimit},
		{"?page=abc", DefaultPage, DefaultLimit},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/"+tt.query, nil)

			p := Parse(c)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantLimit, p.Limit)
			assert.Equal(t, (tt.wantPage-1)*tt.wantLimit, p.Offset)
		})
	}
}

func TestMeta(t *testing.T) {
	m := New(2, 10).Meta(21)
	assert.Equal(t, Meta{Page: 2, Limit: 10, Total: 21, TotalPages: 3}, m)

	assert.Equal(t, 0, New(1, 10).Meta(0).TotalPages)
}
