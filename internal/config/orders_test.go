package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agbru/ordersim/internal/errors"
	"github.com/agbru/ordersim/internal/order"
)

func TestParseOrders_Sequence(t *testing.T) {
	t.Parallel()
	orders, err := ParseOrders([]byte(`
- id: F1
  type: food
  priority: medium
- id: E1
  type: Electronics
  quantity: 2
  priority: HIGH
- id: G1
  type: garden
`))
	require.NoError(t, err)
	assert.Equal(t, []order.Order{
		{ID: "F1", Type: order.TypeFood, Quantity: 1, Priority: order.PriorityMedium},
		{ID: "E1", Type: order.TypeElectronics, Quantity: 2, Priority: order.PriorityHigh},
		{ID: "G1", Type: order.TypeOther, Quantity: 1, Priority: order.PriorityOther},
	}, orders)
}

func TestParseOrders_Mapping(t *testing.T) {
	t.Parallel()
	orders, err := ParseOrders([]byte(`
orders:
  - id: C1
    type: clothing
    priority: low
    quantity: 0
`))
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 0, orders[0].Quantity, "an explicit zero quantity is kept")
	assert.Equal(t, order.PriorityLow, orders[0].Priority)
}

func TestParseOrders_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty document", ``, "empty"},
		{"scalar document", `hello`, "must be a list"},
		{"empty list", `orders: []`, "at least one order"},
		{"missing id", "- type: food\n", "order_id"},
		{"duplicate id", "- id: A\n- id: A\n", "duplicate"},
		{"negative quantity", "- id: A\n  quantity: -3\n", "quantity"},
		{"unknown field", "- id: A\n  colour: red\n", "colour"},
		{"malformed", "- id: [", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseOrders([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadOrders(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- id: X1\n  type: food\n  priority: high\n"), 0o600))

	orders, err := LoadOrders(path)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "X1", orders[0].ID)

	_, err = LoadOrders(filepath.Join(dir, "missing.yaml"))
	var cfgErr apperrors.ConfigError
	require.True(t, errors.As(err, &cfgErr))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("- id: A\n- id: A\n"), 0o600))
	_, err = LoadOrders(bad)
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, err.Error(), bad)
}
