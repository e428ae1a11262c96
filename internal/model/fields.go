package model

import (
	"strings"
	"time"
)

// Record keys for attendee and access-event fields in the store
const (
	KeyUUID          = "uuid"
	KeyDNI           = "dni"
	KeyFirstNames    = "nombres"
	KeyLastNames     = "apellidos"
	KeyInstitution   = "institucion"
	KeyPosition      = "puesto"
	KeyEmail         = "correo"
	KeyCountry       = "pais"
	KeyDescription   = "descripcion"
	KeyPaymentStatus = "estado_pago"
	KeyPaymentMethod = "medio_pago"
	KeyPrintedAt     = "se_imprimio_at"
	KeySite          = "sede_alta"

	KeySessionID  = "session_id"
	KeyAccessSite = "sede"
	KeyTimestamp  = "ts"
)

// Fields is the attendee schema with every field optional.
// A nil pointer means the field is absent and must not overwrite anything.
type Fields struct {
	UUID          *string
	DNI           *string
	FirstNames    *string
	LastNames     *string
	Institution   *string
	Position      *string
	Email         *string
	Country       *string
	Description   *string
	PaymentStatus *PaymentStatus
	PaymentMethod *string
	PrintedAt     *time.Time
	Site          *string
}

// Text returns a pointer to the trimmed value, or nil when it is blank.
// Blank input is treated as absent so it never erases stored data.
func Text(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Status returns a pointer to the parsed payment status, or nil when blank
func Status(s string) *PaymentStatus {
	st, ok := ParsePaymentStatus(s)
	if !ok {
		return nil
	}
	return &st
}

// MergeKeepDefined is a shallow, field-wise, right-biased merge: every field
// set in next replaces the one in prev; fields absent from next are kept.
func MergeKeepDefined(prev, next Fields) Fields {
	return Fields{
		UUID:          keep(prev.UUID, next.UUID),
		DNI:           keep(prev.DNI, next.DNI),
		FirstNames:    keep(prev.FirstNames, next.FirstNames),
		LastNames:     keep(prev.LastNames, next.LastNames),
		Institution:   keep(prev.Institution, next.Institution),
		Position:      keep(prev.Position, next.Position),
		Email:         keep(prev.Email, next.Email),
		Country:       keep(prev.Country, next.Country),
		Description:   keep(prev.Description, next.Description),
		PaymentStatus: keep(prev.PaymentStatus, next.PaymentStatus),
		PaymentMethod: keep(prev.PaymentMethod, next.PaymentMethod),
		PrintedAt:     keep(prev.PrintedAt, next.PrintedAt),
		Site:          keep(prev.Site, next.Site),
	}
}

func keep[T any](prev, next *T) *T {
	if next != nil {
		return next
	}
	return prev
}

// Normalize projects f onto the attendee schema: string values are trimmed,
// the payment status is canonicalized and operational fields get defaults.
// Normalize(Normalize(f)) == Normalize(f).
func Normalize(f Fields) Fields {
	out := Fields{
		UUID:          trimmed(f.UUID),
		DNI:           trimmed(f.DNI),
		FirstNames:    trimmed(f.FirstNames),
		LastNames:     trimmed(f.LastNames),
		Institution:   trimmed(f.Institution),
		Position:      trimmed(f.Position),
		Email:         orEmpty(f.Email),
		Country:       orEmpty(f.Country),
		Description:   trimmed(f.Description),
		PaymentMethod: orEmpty(f.PaymentMethod),
		Site:          orDefault(f.Site, DefaultSite),
	}

	status := PaymentUnpaid
	if f.PaymentStatus != nil {
		if st, ok := ParsePaymentStatus(string(*f.PaymentStatus)); ok {
			status = st
		}
	}
	out.PaymentStatus = &status

	if f.PrintedAt != nil && !f.PrintedAt.IsZero() {
		ts := f.PrintedAt.UTC()
		out.PrintedAt = &ts
	}

	// A blank uuid is no identifier at all
	if out.UUID != nil && *out.UUID == "" {
		out.UUID = nil
	}

	return out
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func orEmpty(s *string) *string {
	return orDefault(s, "")
}

func orDefault(s *string, def string) *string {
	v := def
	if s != nil {
		if t := strings.TrimSpace(*s); t != "" {
			v = t
		}
	}
	return &v
}

// Attendee returns the read view of f with absent fields zeroed
func (f Fields) Attendee() Attendee {
	a := Attendee{
		UUID:          deref(f.UUID),
		DNI:           deref(f.DNI),
		FirstNames:    deref(f.FirstNames),
		LastNames:     deref(f.LastNames),
		Institution:   deref(f.Institution),
		Position:      deref(f.Position),
		Email:         deref(f.Email),
		Country:       deref(f.Country),
		Description:   deref(f.Description),
		PaymentStatus: PaymentUnpaid,
		PaymentMethod: deref(f.PaymentMethod),
		Site:          deref(f.Site),
	}
	if f.PaymentStatus != nil {
		if st, ok := ParsePaymentStatus(string(*f.PaymentStatus)); ok {
			a.PaymentStatus = st
		}
	}
	if f.PrintedAt != nil {
		ts := *f.PrintedAt
		a.PrintedAt = &ts
	}
	return a
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
