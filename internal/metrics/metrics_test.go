package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHandlerExposesRegisteredCollectors(t *testing.T) {
	m := New()
	m.OrdersReceived.Inc()
	m.TradesExecuted.Inc()
	m.OrdersResting.Set(3)
	m.ObserveEventLatency(2 * time.Millisecond)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "marketsim_orders_received_total 1")
	assert.Contains(t, body, "marketsim_trades_executed_total 1")
	assert.Contains(t, body, "marketsim_orders_resting 3")
}
