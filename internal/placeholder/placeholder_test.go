package placeholder

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDims(t *testing.T) {
	tests := []struct {
		path  string
		wantW int
		wantH int
	}{
		{"", 600, 400},
		{"/", 600, 400},
		{"/800", 800, 400},
		{"/800/500", 800, 500},
		{"/800/500/extra", 800, 500},
		{"/99999/5000", 4096, 4096},
		{"/0/-20", 1, 1},
		{"/abc/xyz", 600, 400},
		{"/12px/34.9", 12, 34},
		{"/abc/300", 600, 300},
	}
	for _, tt := range tests {
		w, h := ParseDims(tt.path)
		assert.Equal(t, tt.wantW, w, tt.path)
		assert.Equal(t, tt.wantH, h, tt.path)
	}
}

func TestSVG(t *testing.T) {
	svg := SVG(800, 500)
	assert.Contains(t, svg, `width="800" height="500" viewBox="0 0 800 500"`)
	assert.Contains(t, svg, `<rect x="16" y="16" width="768" height="468" rx="12"`)
	assert.Contains(t, svg, `stroke-dasharray="6 6"`)
	assert.Contains(t, svg, `<stop offset="0%" stop-color="#ecfdf5"/>`)
	assert.Contains(t, svg, `font-size="28"`)
	assert.Contains(t, svg, "800×500")

	assert.Contains(t, SVG(100, 100), `font-size="12"`)
	assert.Contains(t, SVG(240, 600), `font-size="20"`)
}

func TestHandle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/api"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/placeholder/5000/abc", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=86400, immutable", w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Body.String(), "4096×400")
}
