// Package placeholder serves generated SVG placeholder images, used as the
// default article image when a story has none.
package placeholder

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	DefaultWidth  = 600
	DefaultHeight = 400
	MinSide       = 1
	MaxSide       = 4096

	cacheControl = "public, max-age=86400, immutable"
)

// RegisterRoutes mounts GET /placeholder/*dims on rg (normally /api).
func RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/placeholder/*dims", Handle)
}

// Handle answers /placeholder/{w}/{h}; both segments are optional.
func Handle(c *gin.Context) {
	w, h := ParseDims(c.Param("dims"))
	c.Header("Cache-Control", cacheControl)
	c.Data(http.StatusOK, "image/svg+xml", []byte(SVG(w, h)))
}

// ParseDims reads "/w/h" where each segment may be missing. Segments are read
// like a lenient integer parse (leading sign and digits, rest ignored); an
// unparsable segment falls back to its default and a parsed one is clamped
// to [MinSide, MaxSide].
func ParseDims(path string) (int, int) {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	seg := func(i int) string {
		if i < len(segs) {
			return segs[i]
		}
		return ""
	}
	return dim(seg(0), DefaultWidth), dim(seg(1), DefaultHeight)
}

func dim(s string, def int) int {
	n, ok := leadingInt(s)
	if !ok {
		return def
	}
	return max(MinSide, min(MaxSide, n))
}

// leadingInt parses an optional sign followed by digits at the start of s.
// Values that would overflow are capped well above MaxSide.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		digits++
		if n <= MaxSide {
			n = n*10 + int(r-'0')
		}
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// SVG renders a w x h placeholder: a green gradient, a dashed inset frame and
// the dimensions as a centred label.
func SVG(w, h int) string {
	fontSize := max(12, min(28, min(w, h)/12))
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%[1]d" height="%[2]d" viewBox="0 0 %[1]d %[2]d">
  <defs>
    <linearGradient id="g" x1="0" y1="0" x2="1" y2="1">
      <stop offset="0%%" stop-color="#ecfdf5"/>
      <stop offset="100%%" stop-color="#d1fae5"/>
    </linearGradient>
  </defs>
  <rect width="100%%" height="100%%" fill="url(#g)"/>
  <rect x="16" y="16" width="%[3]d" height="%[4]d" rx="12" fill="none" stroke="#10b981" stroke-width="2" stroke-dasharray="6 6"/>
  <g fill="#065f46">
    <text x="50%%" y="50%%" dominant-baseline="middle" text-anchor="middle" font-family="Inter, ui-sans-serif" font-size="%[5]d" opacity="0.9">
      %[1]d×%[2]d
    </text>
  </g>
</svg>`, w, h, w-32, h-32, fontSize)
}
