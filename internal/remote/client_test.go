package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/washandgo/engagement-api/internal/config"
	"github.com/washandgo/engagement-api/internal/domain"
)

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c := NewClient(&config.RemoteConfig{
		Enabled:        true,
		BaseURL:        serverURL,
		APIKey:         "test-key",
		RequestTimeout: 2,
		MaxRetries:     0,
	}, zap.NewNop())
	require.NotNil(t, c)
	return c
}

func TestNewClientDisabled(t *testing.T) {
	assert.Nil(t, NewClient(&config.RemoteConfig{Enabled: false}, zap.NewNop()))
	assert.Nil(t, NewClient(&config.RemoteConfig{Enabled: true}, zap.NewNop()), "missing baseURL yields no client")
	assert.Nil(t, NewClient(nil, zap.NewNop()))

	var c *Client
	assert.False(t, c.IsEnabled())
	_, err := c.ListEngagements(context.Background())
	require.Error(t, err)
}

func TestListEngagementsNormalizesBothSpellings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/engagements", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"e1","clientId":"c1","serviceId":"s1","kind":"facture","status":"envoyé","invoiceNumber":"2024-0007","invoiceVatEnabled":false},
			{"id":"e2","client_id":"c2","service_id":"s2","kind":"service","status":"planifié","option_ids":["o1"],"additional_charge":5.5}
		]`))
	}))
	defer srv.Close()

	engagements, err := testClient(t, srv.URL).ListEngagements(context.Background())
	require.NoError(t, err)
	require.Len(t, engagements, 2)

	first := engagements[0]
	assert.Equal(t, "c1", first.ClientID)
	assert.Equal(t, domain.KindFacture, first.Kind)
	assert.Equal(t, domain.StatusEnvoye, first.Status)
	require.NotNil(t, first.InvoiceNumber)
	assert.Equal(t, "2024-0007", *first.InvoiceNumber)
	assert.Equal(t, domain.VatDisabled, first.InvoiceVat)

	second := engagements[1]
	assert.Equal(t, "c2", second.ClientID)
	assert.Equal(t, "s2", second.ServiceID)
	assert.Equal(t, domain.StringList{"o1"}, second.OptionIDs)
	assert.Equal(t, 5.5, second.AdditionalCharge)
	assert.Equal(t, domain.VatInherit, second.InvoiceVat)
}

func TestUpdateEngagementFallsBackToCreateOn404(t *testing.T) {
	var createdPayload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut:
			http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
		case r.Method == http.MethodPost:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&createdPayload))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"e1","client_id":"c1","service_id":"s1","kind":"service","status":"planifié"}`))
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	defer srv.Close()

	e := &domain.Engagement{
		BaseModel: domain.BaseModel{ID: "e1"},
		ClientID:  "c1",
		ServiceID: "s1",
		Kind:      domain.KindService,
		Status:    domain.StatusPlanifie,
	}

	got, err := testClient(t, srv.URL).UpdateEngagement(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, "e1", got.ID)
	assert.Equal(t, "e1", createdPayload["id"], "update was retried as create")
}

func TestUpdateEngagementSurfacesOtherErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"record locked"}`, http.StatusConflict)
	}))
	defer srv.Close()

	e := &domain.Engagement{BaseModel: domain.BaseModel{ID: "e1"}}
	_, err := testClient(t, srv.URL).UpdateEngagement(context.Background(), e)

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusConflict, upstream.StatusCode)
	assert.Contains(t, upstream.Message, "record locked")
}

func TestTimeoutYieldsTypedFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(&config.RemoteConfig{
		Enabled:        true,
		BaseURL:        srv.URL,
		RequestTimeout: 1,
		MaxRetries:     0,
	}, zap.NewNop())
	require.NotNil(t, c)
	c.httpClient.Timeout = 50 * time.Millisecond

	_, err := c.ListEngagements(context.Background())
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Zero(t, upstream.StatusCode, "transport failure carries no HTTP status")
	assert.NotEmpty(t, upstream.Message)
}

func TestServerErrorRetried(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(&config.RemoteConfig{
		Enabled:        true,
		BaseURL:        srv.URL,
		RequestTimeout: 2,
		MaxRetries:     1,
	}, zap.NewNop())
	require.NotNil(t, c)

	engagements, err := c.ListEngagements(context.Background())
	require.NoError(t, err)
	assert.Empty(t, engagements)
	assert.Equal(t, 2, attempts)
}

func TestDeleteEngagementTolerates404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	err := testClient(t, srv.URL).DeleteEngagement(context.Background(), "gone")
	assert.NoError(t, err)
}

func TestMalformedListResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).ListEngagements(context.Background())
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Contains(t, upstream.Message, "malformed")
}
