package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestErrorUsesBusinessCodeAsHTTPStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-1")

	Error(c, CodeNotFound, "not found")

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected http 404, got %d", w.Code)
	}
	var body Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v", err)
	}
	if body.StatusCode != CodeNotFound || body.Msg != "not found" {
		t.Fatalf("unexpected body: %+v", body)
	}
	data, ok := body.Data.(map[string]interface{})
	if !ok || data["request_id"] != "req-1" {
		t.Fatalf("expected request id in data, got %#v", body.Data)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[int]int{
		CodeOK:              http.StatusOK,
		CodeBadRequest:      http.StatusBadRequest,
		CodeTooManyRequests: http.StatusTooManyRequests,
		CodeInternal:        http.StatusInternalServerError,
		12345:               http.StatusBadRequest,
	}
	for code, want := range cases {
		if got := HTTPStatus(code); got != want {
			t.Fatalf("code %d: want %d got %d", code, want, got)
		}
	}
}

func TestBuildPagination(t *testing.T) {
	p := BuildPagination(2, 12, 25)
	if p.TotalPage != 3 || p.Page != 2 || p.PageSize != 12 || p.Total != 25 {
		t.Fatalf("unexpected pagination: %+v", p)
	}
	if empty := BuildPagination(1, 0, 10); empty.TotalPage != 0 {
		t.Fatalf("expected zero pages for zero page size, got %+v", empty)
	}
}
