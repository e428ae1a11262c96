package model

import (
	"strings"
	"time"
)

// Logical collection names in the record store
const (
	CollectionAttendees = "asistentes"
	CollectionAccess    = "accesos"
)

// DefaultSite is the registration-site tag used when none is supplied
const DefaultSite = "sede_principal"

// DefaultPaymentMethod is recorded when a payment is marked without a method
const DefaultPaymentMethod = "efectivo"

// PaymentStatus is the payment state of an attendee
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "NO_PAGADO"
	PaymentPaid   PaymentStatus = "PAGADO"
)

// ParsePaymentStatus canonicalizes a payment status value. Blank input reports
// ok=false; anything that is not a recognised "paid" spelling is unpaid.
func ParsePaymentStatus(raw string) (status PaymentStatus, ok bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	switch s {
	case "":
		return "", false
	case string(PaymentPaid), "PAID":
		return PaymentPaid, true
	default:
		return PaymentUnpaid, true
	}
}

// Attendee is the fully-populated read view of an attendee record
type Attendee struct {
	UUID          string
	DNI           string
	FirstNames    string
	LastNames     string
	Institution   string
	Position      string
	Email         string
	Country       string
	Description   string
	PaymentStatus PaymentStatus
	PaymentMethod string
	PrintedAt     *time.Time
	Site          string
}

// IsPaid reports whether the attendee has paid
func (a Attendee) IsPaid() bool {
	return a.PaymentStatus == PaymentPaid
}

// IsPrinted reports whether a badge has been printed
func (a Attendee) IsPrinted() bool {
	return a.PrintedAt != nil
}

// FullName returns "nombres apellidos"
func (a Attendee) FullName() string {
	return strings.TrimSpace(a.FirstNames + " " + a.LastNames)
}

// AccessEvent records one talk check-in. Append-only.
type AccessEvent struct {
	UUID      string
	SessionID string
	Site      string
	At        time.Time
}

// UnknownSession is the dashboard bucket for access events without a session
const UnknownSession = "desconocida"

// Station describes the kiosk issuing a request (site, role, talk session).
// It travels on the request context instead of living in global settings.
type Station struct {
	Site      string
	Role      string
	SessionID string
}

// Station roles
const (
	RoleAdmin   = "admin"
	RoleCashier = "cajero"
	RoleStaff   = "staff"
)

// CanTakePayments reports whether the station may mark payments. Stations
// that send no role are not restricted.
func (s Station) CanTakePayments() bool {
	switch strings.ToLower(s.Role) {
	case "", RoleAdmin, RoleCashier:
		return true
	default:
		return false
	}
}

// SiteOr returns the station's site, or fallback when the station has none
func (s Station) SiteOr(fallback string) string {
	if s.Site != "" {
		return s.Site
	}
	return fallback
}
