package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeWire(t *testing.T, payload string) Engagement {
	t.Helper()
	var w EngagementWire
	require.NoError(t, json.Unmarshal([]byte(payload), &w))
	return w.Normalize()
}

func TestNormalizeAcceptsBothFieldSpellings(t *testing.T) {
	camel := decodeWire(t, `{
		"id": "eng-1",
		"clientId": "cli-1",
		"serviceId": "svc-1",
		"optionIds": ["opt-a"],
		"additionalCharge": 12.5,
		"kind": "devis",
		"status": "envoyé",
		"scheduledAt": "2024-06-10T09:00:00Z",
		"quoteNumber": "2024-0007"
	}`)
	snake := decodeWire(t, `{
		"id": "eng-1",
		"client_id": "cli-1",
		"service_id": "svc-1",
		"option_ids": ["opt-a"],
		"additional_charge": 12.5,
		"kind": "devis",
		"status": "envoyé",
		"scheduled_at": "2024-06-10T09:00:00Z",
		"quote_number": "2024-0007"
	}`)

	assert.Equal(t, camel, snake, "both spellings normalize to the same record")
	assert.Equal(t, "cli-1", camel.ClientID)
	assert.Equal(t, KindDevis, camel.Kind)
	assert.Equal(t, StatusEnvoye, camel.Status)
	assert.Equal(t, 12.5, camel.AdditionalCharge)
	require.NotNil(t, camel.QuoteNumber)
	assert.Equal(t, "2024-0007", *camel.QuoteNumber)
	assert.Equal(t, time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC), camel.ScheduledAt)
}

func TestNormalizeCamelWinsWhenBothPresent(t *testing.T) {
	e := decodeWire(t, `{
		"id": "eng-2",
		"clientId": "cli-camel",
		"client_id": "cli-snake",
		"serviceId": "svc-1"
	}`)
	assert.Equal(t, "cli-camel", e.ClientID)
}

func TestNormalizeDefaultsAndVat(t *testing.T) {
	e := decodeWire(t, `{
		"id": "eng-3",
		"client_id": "cli-1",
		"service_id": "svc-1",
		"kind": "bizarre",
		"status": "unknown"
	}`)

	assert.Equal(t, KindService, e.Kind, "unrecognized kinds fall back to service")
	assert.Equal(t, StatusPlanifie, e.Status)
	assert.Equal(t, VatInherit, e.InvoiceVat, "absent VAT flag means inherit")
	assert.NotNil(t, e.OptionIDs, "collections are never nil after normalization")
	assert.NotNil(t, e.ContactIDs)
	assert.NotNil(t, e.SendHistory)

	forced := decodeWire(t, `{
		"id": "eng-4",
		"client_id": "cli-1",
		"service_id": "svc-1",
		"invoice_vat_enabled": false
	}`)
	assert.Equal(t, VatDisabled, forced.InvoiceVat)
}

func TestToWireRoundTrip(t *testing.T) {
	num := "2024-0003"
	vat := false
	e := Engagement{
		BaseModel:        BaseModel{ID: "eng-5"},
		ClientID:         "cli-1",
		ServiceID:        "svc-1",
		OptionIDs:        StringList{"opt-a", "opt-b"},
		OptionOverrides:  OverrideMap{},
		AdditionalCharge: 5,
		Kind:             KindFacture,
		Status:           StatusEnvoye,
		ScheduledAt:      time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC),
		InvoiceNumber:    &num,
		InvoiceVat:       VatOverrideFromBool(&vat),
		ContactIDs:       StringList{},
		SendHistory:      SendHistoryList{},
	}

	data, err := json.Marshal(e.ToWire())
	require.NoError(t, err)

	back := decodeWire(t, string(data))
	assert.Equal(t, e.ID, back.ID)
	assert.Equal(t, e.Kind, back.Kind)
	assert.Equal(t, e.OptionIDs, back.OptionIDs)
	require.NotNil(t, back.InvoiceNumber)
	assert.Equal(t, num, *back.InvoiceNumber)
	assert.Equal(t, VatDisabled, back.InvoiceVat)
	assert.Equal(t, e.ScheduledAt, back.ScheduledAt)
}
