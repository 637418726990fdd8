package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestPageParams(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantPage int
		wantSize int
	}{
		{"defaults", "", 1, 20},
		{"explicit", "page=3&size=50", 3, 50},
		{"zero page", "page=0", 1, 20},
		{"negative size", "size=-5", 1, 20},
		{"oversized size clamped", "size=1000000", 1, 100},
		{"garbage ignored", "page=abc&size=xyz", 1, 20},
	}

	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			c := e.NewContext(req, httptest.NewRecorder())

			page, size := pageParams(c)
			if page != tt.wantPage || size != tt.wantSize {
				t.Errorf("pageParams(%q) = (%d, %d), want (%d, %d)",
					tt.query, page, size, tt.wantPage, tt.wantSize)
			}
		})
	}
}
