package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{in: "pending", want: StatusPending},
		{in: " PAID ", want: StatusPaid},
		{in: "Cancelled", want: StatusCancelled},
		{in: "canceled", want: StatusCancelled},
		{in: "refunded", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusUnmarshalDegradesToPending(t *testing.T) {
	var rec struct {
		Status Status `json:"status"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"status":"paid"}`), &rec))
	assert.Equal(t, StatusPaid, rec.Status)

	require.NoError(t, json.Unmarshal([]byte(`{"status":"weird"}`), &rec))
	assert.Equal(t, StatusPending, rec.Status)

	require.NoError(t, json.Unmarshal([]byte(`{"status":3}`), &rec))
	assert.Equal(t, StatusPending, rec.Status)
}

func TestLineTotal(t *testing.T) {
	item := LineItem{Quantity: 50, UnitPrice: mustDecimal(t, "9000")}
	assert.Equal(t, "450000", item.LineTotal().String())

	assert.True(t, LineItem{}.LineTotal().IsZero())
}

func mustDecimal(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	require.NoError(t, err)
	return d
}
