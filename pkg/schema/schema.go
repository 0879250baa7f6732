// Package schema describes the identity and value columns of a reconciled
// batch, using the same compact "name:kind" column-spec convention this
// codebase's SCD2 and fact-table loaders use for SQL column definitions.
package schema

import (
	"fmt"
	"strings"

	"github.com/gingermike/bitemporal-timeseries/pkg/value"
)

// Column is one named, typed column.
type Column struct {
	Name string
	Kind value.Kind
}

// Schema describes the ordered identity and value columns of a batch. The
// four temporal columns (effective_from, effective_to, as_of_from, as_of_to)
// are not part of Schema: every row carries them directly as typed fields
// (see pkg/row.Row), since their kind and meaning never vary across callers.
type Schema struct {
	Identity []Column
	Values   []Column
}

// ParseColumn splits a "name:kind" spec into a Column. kind must be one of
// bool, int64, float64, string, bytes, date, timestamp.
func ParseColumn(spec string) (Column, error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return Column{}, fmt.Errorf("schema: invalid column spec %q: expected \"name:kind\"", spec)
	}
	name := strings.TrimSpace(parts[0])
	kindStr := strings.TrimSpace(parts[1])
	if name == "" {
		return Column{}, fmt.Errorf("schema: invalid column spec %q: empty name", spec)
	}
	kind, err := parseKind(kindStr)
	if err != nil {
		return Column{}, fmt.Errorf("schema: invalid column spec %q: %w", spec, err)
	}
	return Column{Name: name, Kind: kind}, nil
}

func parseKind(s string) (value.Kind, error) {
	switch strings.ToLower(s) {
	case "bool":
		return value.KindBool, nil
	case "int64":
		return value.KindInt64, nil
	case "float64":
		return value.KindFloat64, nil
	case "string":
		return value.KindString, nil
	case "bytes":
		return value.KindBytes, nil
	case "date":
		return value.KindDate, nil
	case "timestamp":
		return value.KindTimestamp, nil
	default:
		return 0, fmt.Errorf("unknown kind %q", s)
	}
}

// ParseColumns parses a list of "name:kind" specs in order.
func ParseColumns(specs []string) ([]Column, error) {
	cols := make([]Column, 0, len(specs))
	for _, spec := range specs {
		c, err := ParseColumn(spec)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, nil
}

// Validate enforces that both column groups are non-empty and that no name
// is reused between identity and value columns.
func (s Schema) Validate() error {
	if len(s.Identity) == 0 {
		return fmt.Errorf("schema: identity columns must not be empty")
	}
	if len(s.Values) == 0 {
		return fmt.Errorf("schema: value columns must not be empty")
	}
	seen := make(map[string]struct{}, len(s.Identity)+len(s.Values))
	for _, c := range s.Identity {
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("schema: duplicate column name %q", c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	for _, c := range s.Values {
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("schema: duplicate column name %q", c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}

// IdentityNames returns the identity column names in order.
func (s Schema) IdentityNames() []string {
	names := make([]string, len(s.Identity))
	for i, c := range s.Identity {
		names[i] = c.Name
	}
	return names
}

// ValueNames returns the value column names in order.
func (s Schema) ValueNames() []string {
	names := make([]string, len(s.Values))
	for i, c := range s.Values {
		names[i] = c.Name
	}
	return names
}
