package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gingermike/bitemporal-timeseries/pkg/row"
	"github.com/gingermike/bitemporal-timeseries/pkg/schema"
	"github.com/gingermike/bitemporal-timeseries/pkg/value"
)

const (
	csvDateLayout = "2006-01-02"
	csvTSLayout   = "2006-01-02T15:04:05.000000"
)

// readBatch reads a CSV file whose columns are, in order: the schema's
// identity columns, its value columns, then effective_from, effective_to,
// as_of_from, as_of_to. The as_of columns may be left empty, meaning the
// zero time; the engine accepts that only on the updates batch (where it
// uses the run's system time instead) and rejects it on current rows.
func readBatch(sch schema.Schema, path string) (row.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return row.Batch{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return row.Batch{}, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return row.Batch{Schema: sch}, nil
	}

	wantCols := len(sch.Identity) + len(sch.Values) + 4
	rows := make([]row.Row, 0, len(records)-1)
	for i, rec := range records[1:] { // skip header
		if len(rec) != wantCols {
			return row.Batch{}, fmt.Errorf("row %d: expected %d columns, got %d", i, wantCols, len(rec))
		}

		identity := make([]value.Value, len(sch.Identity))
		for j, col := range sch.Identity {
			v, err := parseValue(col.Kind, rec[j])
			if err != nil {
				return row.Batch{}, fmt.Errorf("row %d: identity column %s: %w", i, col.Name, err)
			}
			identity[j] = v
		}
		values := make([]value.Value, len(sch.Values))
		offset := len(sch.Identity)
		for j, col := range sch.Values {
			v, err := parseValue(col.Kind, rec[offset+j])
			if err != nil {
				return row.Batch{}, fmt.Errorf("row %d: value column %s: %w", i, col.Name, err)
			}
			values[j] = v
		}

		tOffset := offset + len(sch.Values)
		effFrom, err := time.Parse(csvDateLayout, rec[tOffset])
		if err != nil {
			return row.Batch{}, fmt.Errorf("row %d: effective_from: %w", i, err)
		}
		effTo, err := time.Parse(csvDateLayout, rec[tOffset+1])
		if err != nil {
			return row.Batch{}, fmt.Errorf("row %d: effective_to: %w", i, err)
		}
		asOfFrom, err := parseOptionalTimestamp(rec[tOffset+2])
		if err != nil {
			return row.Batch{}, fmt.Errorf("row %d: as_of_from: %w", i, err)
		}
		asOfTo, err := parseOptionalTimestamp(rec[tOffset+3])
		if err != nil {
			return row.Batch{}, fmt.Errorf("row %d: as_of_to: %w", i, err)
		}

		rows = append(rows, row.Row{
			Identity:      identity,
			Values:        values,
			EffectiveFrom: effFrom.UTC(),
			EffectiveTo:   effTo.UTC(),
			AsOfFrom:      asOfFrom,
			AsOfTo:        asOfTo,
			OriginalIndex: i,
		})
	}

	return row.Batch{Schema: sch, Rows: rows}, nil
}

func writeBatch(b row.Batch, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := make([]string, 0, len(b.Schema.Identity)+len(b.Schema.Values)+5)
	header = append(header, b.Schema.IdentityNames()...)
	header = append(header, b.Schema.ValueNames()...)
	header = append(header, "effective_from", "effective_to", "as_of_from", "as_of_to", "fingerprint")
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range b.Rows {
		rec := make([]string, 0, len(header))
		for _, v := range r.Identity {
			rec = append(rec, formatValue(v))
		}
		for _, v := range r.Values {
			rec = append(rec, formatValue(v))
		}
		rec = append(rec,
			r.EffectiveFrom.UTC().Format(csvDateLayout),
			r.EffectiveTo.UTC().Format(csvDateLayout),
			r.AsOfFrom.UTC().Format(csvTSLayout),
			r.AsOfTo.UTC().Format(csvTSLayout),
			r.Fingerprint,
		)
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func parseOptionalTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(csvTSLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func parseValue(kind value.Kind, s string) (value.Value, error) {
	switch kind {
	case value.KindBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(b), nil
	case value.KindInt64:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return value.Value{}, err
		}
		return value.Int64(i), nil
	case value.KindFloat64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return value.Value{}, err
		}
		return value.Float64(f), nil
	case value.KindString:
		return value.String(s), nil
	case value.KindBytes:
		return value.Bytes([]byte(s)), nil
	case value.KindDate:
		t, err := time.Parse(csvDateLayout, s)
		if err != nil {
			return value.Value{}, err
		}
		return value.Date(t.UTC()), nil
	case value.KindTimestamp:
		t, err := time.Parse(csvTSLayout, s)
		if err != nil {
			return value.Value{}, err
		}
		return value.Timestamp(t.UTC()), nil
	default:
		return value.Value{}, fmt.Errorf("unsupported kind %d", kind)
	}
}

func formatValue(v value.Value) string {
	switch v.Kind() {
	case value.KindNull:
		return ""
	case value.KindBool:
		b, _ := v.AsBool()
		return strconv.FormatBool(b)
	case value.KindInt64:
		i, _ := v.AsInt64()
		return strconv.FormatInt(i, 10)
	case value.KindFloat64:
		f, _ := v.AsFloat64()
		return strconv.FormatFloat(f, 'f', -1, 64)
	case value.KindString:
		s, _ := v.AsString()
		return s
	case value.KindBytes:
		b, _ := v.AsBytes()
		return string(b)
	case value.KindDate:
		t, _ := v.AsTime()
		return t.UTC().Format(csvDateLayout)
	case value.KindTimestamp:
		t, _ := v.AsTime()
		return t.UTC().Format(csvTSLayout)
	default:
		return ""
	}
}
