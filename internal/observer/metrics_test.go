package observer

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMetrics_ObservesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(HTTPMetrics())
	r.GET("/api/counts/:date", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.CollectAndCount(HTTPRequestDurationSeconds)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/counts/20190521", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d", w.Code)
	}
	after := testutil.CollectAndCount(HTTPRequestDurationSeconds)
	if after != before+1 {
		t.Errorf("期望新增 1 个序列，before=%d after=%d", before, after)
	}
}

func TestCountWritesTotal(t *testing.T) {
	c := CountWritesTotal.WithLabelValues("admin", "saved")
	before := testutil.ToFloat64(c)
	c.Inc()
	if got := testutil.ToFloat64(c); got != before+1 {
		t.Errorf("期望 %v，实际=%v", before+1, got)
	}
}
