package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/ordersim/internal/errors"
	"github.com/agbru/ordersim/internal/order"
)

// orderEntry is one order as written in a batch file. Quantity defaults to 1.
type orderEntry struct {
	ID       string `yaml:"id"`
	Type     string `yaml:"type"`
	Quantity *int   `yaml:"quantity"`
	Priority string `yaml:"priority"`
}

// batchFile is the mapping form of a batch file. A bare sequence of orders
// is accepted too.
type batchFile struct {
	Orders []orderEntry `yaml:"orders"`
}

// LoadOrders reads a YAML batch file. Types and priorities are normalized;
// IDs must be non-empty and unique. Every problem is a ConfigError.
func LoadOrders(path string) ([]order.Order, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigError("cannot read batch file: %v", err)
	}
	orders, err := ParseOrders(data)
	if err != nil {
		return nil, apperrors.NewConfigError("%s: %v", path, err)
	}
	return orders, nil
}

// ParseOrders decodes a batch document.
func ParseOrders(data []byte) ([]order.Order, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, errors.New("batch file is empty")
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var entries []orderEntry
	var err error
	switch root.Content[0].Kind {
	case yaml.SequenceNode:
		err = dec.Decode(&entries)
	case yaml.MappingNode:
		var file batchFile
		err = dec.Decode(&file)
		entries = file.Orders
	default:
		return nil, errors.New("batch file must be a list of orders or a mapping with an orders key")
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	orders := make([]order.Order, len(entries))
	for i, e := range entries {
		qty := 1
		if e.Quantity != nil {
			qty = *e.Quantity
		}
		if qty < 0 {
			return nil, apperrors.WrapError(apperrors.ValidationError{Field: "quantity", Message: "must not be negative"}, "order #%d", i+1)
		}
		orders[i] = order.Order{
			ID:       strings.TrimSpace(e.ID),
			Type:     order.NormalizeType(e.Type),
			Quantity: qty,
			Priority: order.NormalizePriority(e.Priority),
		}
	}
	if err := order.ValidateBatch(orders); err != nil {
		return nil, err
	}
	return orders, nil
}
