package datagov

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// PriceRecord is one row of the mandi price resource, kept as raw JSON.
type PriceRecord struct {
	raw gjson.Result
}

// ParseRecord wraps a single JSON object as a PriceRecord.
func ParseRecord(data string) PriceRecord {
	return PriceRecord{raw: gjson.Parse(data)}
}

// Field returns the named field as text. Strings and numbers are accepted.
func (r PriceRecord) Field(name string) (string, error) {
	if !r.raw.IsObject() {
		return "", &RecordError{Field: name, Reason: "record is not an object"}
	}
	v := r.raw.Get(gjson.Escape(name))
	switch v.Type {
	case gjson.String, gjson.Number:
		return v.String(), nil
	case gjson.Null:
		if v.Exists() {
			return "", &RecordError{Field: name, Reason: "null value"}
		}
	}
	if !v.Exists() {
		return "", &RecordError{Field: name, Reason: "missing"}
	}
	return "", &RecordError{Field: name, Reason: "unexpected " + jsonKind(v) + " value"}
}

// Quote is the subset of a record used in the price summary.
type Quote struct {
	Commodity   string
	Variety     string
	Market      string
	ArrivalDate string
	ModalPrice  string
}

// Quote resolves the summary fields of r, failing on the first one that is absent.
func (r PriceRecord) Quote() (Quote, error) {
	var q Quote
	fields := []struct {
		name string
		dst  *string
	}{
		{"commodity", &q.Commodity},
		{"variety", &q.Variety},
		{"market", &q.Market},
		{"arrival_date", &q.ArrivalDate},
		{"modal_price", &q.ModalPrice},
	}
	for _, f := range fields {
		v, err := r.Field(f.name)
		if err != nil {
			return Quote{}, err
		}
		*f.dst = v
	}
	return q, nil
}

func (q Quote) String() string {
	return fmt.Sprintf("Latest price for %s (%s) in %s market on %s: Modal Price is ₹%s per Quintal.",
		q.Commodity, q.Variety, q.Market, q.ArrivalDate, q.ModalPrice)
}
