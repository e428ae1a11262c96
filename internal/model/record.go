package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Record returns the store field map for f. Absent fields are omitted so an
// update only touches what is set.
func (f Fields) Record() map[string]any {
	out := make(map[string]any)
	put := func(key string, v *string) {
		if v != nil {
			out[key] = *v
		}
	}
	put(KeyUUID, f.UUID)
	put(KeyDNI, f.DNI)
	put(KeyFirstNames, f.FirstNames)
	put(KeyLastNames, f.LastNames)
	put(KeyInstitution, f.Institution)
	put(KeyPosition, f.Position)
	put(KeyEmail, f.Email)
	put(KeyCountry, f.Country)
	put(KeyDescription, f.Description)
	put(KeyPaymentMethod, f.PaymentMethod)
	put(KeySite, f.Site)
	if f.PaymentStatus != nil {
		out[KeyPaymentStatus] = string(*f.PaymentStatus)
	}
	if f.PrintedAt != nil {
		out[KeyPrintedAt] = FormatTime(*f.PrintedAt)
	}
	return out
}

// Changes returns the store field map holding only the keys of next whose
// value differs from prev, including keys prev does not have at all
func Changes(prev, next Fields) map[string]any {
	before := prev.Record()
	out := next.Record()
	for key, v := range out {
		if old, ok := before[key]; ok && old == v {
			delete(out, key)
		}
	}
	return out
}

// FieldsFromRecord reads the attendee schema out of a store field map.
// Unknown keys are dropped.
func FieldsFromRecord(m map[string]any) Fields {
	var f Fields
	get := func(key string) *string {
		v, ok := m[key]
		if !ok || v == nil {
			return nil
		}
		s := stringValue(v)
		return &s
	}
	f.UUID = get(KeyUUID)
	f.DNI = get(KeyDNI)
	f.FirstNames = get(KeyFirstNames)
	f.LastNames = get(KeyLastNames)
	f.Institution = get(KeyInstitution)
	f.Position = get(KeyPosition)
	f.Email = get(KeyEmail)
	f.Country = get(KeyCountry)
	f.Description = get(KeyDescription)
	f.PaymentMethod = get(KeyPaymentMethod)
	f.Site = get(KeySite)
	if s := get(KeyPaymentStatus); s != nil {
		f.PaymentStatus = Status(*s)
	}
	f.PrintedAt = timeValue(m[KeyPrintedAt])
	return f
}

// Record returns the store field map for an access event
func (e AccessEvent) Record() map[string]any {
	return map[string]any{
		KeyUUID:       e.UUID,
		KeySessionID:  e.SessionID,
		KeyAccessSite: e.Site,
		KeyTimestamp:  FormatTime(e.At),
	}
}

// AccessEventFromRecord reads an access event out of a store field map
func AccessEventFromRecord(m map[string]any) AccessEvent {
	e := AccessEvent{
		UUID:      stringValue(m[KeyUUID]),
		SessionID: stringValue(m[KeySessionID]),
		Site:      stringValue(m[KeyAccessSite]),
	}
	if ts := timeValue(m[KeyTimestamp]); ts != nil {
		e.At = *ts
	}
	return e
}

// FormatTime renders a timestamp the way it is stored: UTC ISO-8601
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func stringValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func timeValue(v any) *time.Time {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return nil
		}
		ts := x.UTC()
		return &ts
	case string:
		if strings.TrimSpace(x) == "" {
			return nil
		}
		ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(x))
		if err != nil {
			return nil
		}
		ts = ts.UTC()
		return &ts
	default:
		return nil
	}
}
