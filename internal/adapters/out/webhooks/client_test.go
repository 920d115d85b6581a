package webhooks_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/adapters/out/webhooks"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

func TestHTTPPaymentClient_Refund(t *testing.T) {
	orderID := kernel.NewUUID()

	var gotPath string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := webhooks.NewHTTPPaymentClient(server.URL)
	err := client.Refund(t.Context(), orderID)

	require.NoError(t, err)
	assert.Equal(t, "/api/v1/refunds", gotPath)
	assert.Equal(t, orderID.String(), gotBody["order_id"])
}

func TestHTTPPaymentClient_Refund_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := webhooks.NewHTTPPaymentClient(server.URL)
	err := client.Refund(t.Context(), kernel.NewUUID())

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPPaymentClient_Refund_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := webhooks.NewHTTPPaymentClient(server.URL)
	err := client.Refund(t.Context(), kernel.NewUUID())

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPPaymentClient_Refund_InvalidOrderID(t *testing.T) {
	client := webhooks.NewHTTPPaymentClient("http://payments.invalid")

	err := client.Refund(t.Context(), kernel.UUID{})

	require.Error(t, err)
}

func TestHTTPNotificationClient_NotifyOrderRejected(t *testing.T) {
	orderID := kernel.NewUUID()

	var gotPath string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := webhooks.NewHTTPNotificationClient(server.URL)
	err := client.NotifyOrderRejected(t.Context(), orderID, order.RejectedByShipper)

	require.NoError(t, err)
	assert.Equal(t, "/api/v1/notifications/order-rejected", gotPath)
	assert.Equal(t, orderID.String(), gotBody["order_id"])
	assert.Equal(t, "RejectedByShipper", gotBody["reason"])
}

func TestHTTPNotificationClient_NotifyOrderRejected_InvalidStatus(t *testing.T) {
	client := webhooks.NewHTTPNotificationClient("http://notifications.invalid")

	err := client.NotifyOrderRejected(t.Context(), kernel.NewUUID(), order.Unknown)

	require.Error(t, err)
}
