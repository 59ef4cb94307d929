package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyByIPAndJSONField(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"login":" Ada.Lovelace "}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.RemoteAddr = "1.2.3.4:5678"

	key := KeyByIPAndJSONField("login")(c)
	assert.Equal(t, "ada.lovelace|1.2.3.4", key)

	body, err := io.ReadAll(c.Request.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Ada.Lovelace", "request body should be restored")
}

func TestRateLimitMiddlewareWithoutClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitMiddlewareFailsOpenOnRedisError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// 指向不可达地址，脚本执行失败时放行
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()

	r := gin.New()
	r.Use(RateLimitMiddleware(client, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitRuleHelpers(t *testing.T) {
	rule := RateLimitRule{Prefix: "sf:rate:login", WindowSeconds: 60, MaxRequests: 5}
	assert.True(t, rule.active())
	assert.Equal(t, "sf:rate:login:1.2.3.4", rule.key("1.2.3.4"))
	assert.Equal(t, "error.rate_limited", rule.messageKey())

	assert.False(t, RateLimitRule{WindowSeconds: 60}.active())
	assert.Equal(t, "x", RateLimitRule{}.key("x"))
	assert.Equal(t, "error.login_too_many", RateLimitRule{MessageKey: " error.login_too_many "}.messageKey())
}

func TestKeyByIPAndJSONFieldFallsBackToIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []string{``, `{`, `{"login":42}`, `{"other":"x"}`}
	for _, body := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		c.Request.RemoteAddr = "5.6.7.8:9000"
		assert.Equal(t, "5.6.7.8", KeyByIPAndJSONField("login")(c), "body %q", body)
	}
}
