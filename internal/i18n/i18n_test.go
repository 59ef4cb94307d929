package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestResolveLocalePriority(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		url    string
		header map[string]string
		want   string
	}{
		{url: "/", want: LocaleZH},
		{url: "/", header: map[string]string{"Accept-Language": "en-GB,en;q=0.9"}, want: LocaleEN},
		{url: "/", header: map[string]string{"Accept-Language": "fr-FR"}, want: LocaleZH},
		{url: "/", header: map[string]string{"X-Locale": "en-US", "Accept-Language": "zh-CN"}, want: LocaleEN},
		{url: "/?lang=zh", header: map[string]string{"X-Locale": "en-US"}, want: LocaleZH},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		req := httptest.NewRequest(http.MethodGet, tc.url, nil)
		for k, v := range tc.header {
			req.Header.Set(k, v)
		}
		c.Request = req
		if got := ResolveLocale(c); got != tc.want {
			t.Fatalf("url=%s header=%v: want %s got %s", tc.url, tc.header, tc.want, got)
		}
	}
}

func TestTranslateFallsBackToKey(t *testing.T) {
	if got := T(LocaleEN, "error.not_a_real_key"); got != "error.not_a_real_key" {
		t.Fatalf("expected key fallback, got %s", got)
	}
	if got := T(LocaleEN, "error.bad_request"); got == "error.bad_request" || got == "" {
		t.Fatalf("expected translated message, got %s", got)
	}
	if T(LocaleZH, "error.bad_request") == T(LocaleEN, "error.bad_request") {
		t.Fatalf("expected distinct zh/en messages")
	}
}

func TestSprintfFormatsArgs(t *testing.T) {
	got := Sprintf(LocaleEN, "error.insufficient_stock", "Mug", 2)
	if got != "Insufficient stock for Mug (available: 2)" {
		t.Fatalf("unexpected message: %s", got)
	}
}
