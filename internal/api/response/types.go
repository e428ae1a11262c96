package response

import (
	"github.com/klfajardo/registro-evento-chile/internal/model"
	"github.com/klfajardo/registro-evento-chile/internal/services/query"
)

// MessageOffline marks a write that went to the local fallback log
const MessageOffline = "offline"

// SuccessResponse is the body of a write with nothing else to report
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// OK is a plain success body
func OK() SuccessResponse {
	return SuccessResponse{Success: true}
}

// Offline is the success body of a write logged locally
func Offline() SuccessResponse {
	return SuccessResponse{Success: true, Message: MessageOffline}
}

// RegisterResponse is returned by a successful online registration
type RegisterResponse struct {
	Success bool   `json:"success"`
	UUID    string `json:"uuid"`
}

// ImportResponse summarizes a bulk import
type ImportResponse struct {
	Success  bool `json:"success"`
	Imported int  `json:"imported"`
	Skipped  int  `json:"skipped"`
}

// AttendeeJSON is the wire form of an attendee
type AttendeeJSON struct {
	UUID         string  `json:"uuid"`
	DNI          string  `json:"dni"`
	Nombres      string  `json:"nombres"`
	Apellidos    string  `json:"apellidos"`
	Institucion  string  `json:"institucion"`
	Puesto       string  `json:"puesto"`
	Correo       string  `json:"correo"`
	Pais         string  `json:"pais"`
	Descripcion  string  `json:"descripcion"`
	EstadoPago   string  `json:"estado_pago"`
	MedioPago    string  `json:"medio_pago"`
	SeImprimioAt *string `json:"se_imprimio_at"`
	SedeAlta     string  `json:"sede_alta"`
}

// AttendeeJSONFromModel converts a model.Attendee to its wire form
func AttendeeJSONFromModel(a model.Attendee) AttendeeJSON {
	out := AttendeeJSON{
		UUID:        a.UUID,
		DNI:         a.DNI,
		Nombres:     a.FirstNames,
		Apellidos:   a.LastNames,
		Institucion: a.Institution,
		Puesto:      a.Position,
		Correo:      a.Email,
		Pais:        a.Country,
		Descripcion: a.Description,
		EstadoPago:  string(a.PaymentStatus),
		MedioPago:   a.PaymentMethod,
		SedeAlta:    a.Site,
	}
	if a.PrintedAt != nil {
		ts := model.FormatTime(*a.PrintedAt)
		out.SeImprimioAt = &ts
	}
	return out
}

// AttendeeResponse is returned by a single attendee lookup
type AttendeeResponse struct {
	Success  bool         `json:"success"`
	Attendee AttendeeJSON `json:"attendee"`
}

// SearchResponse is returned by a search
type SearchResponse struct {
	Success bool           `json:"success"`
	Results []AttendeeJSON `json:"results"`
}

// SearchResponseFromModel converts search results to their wire form
func SearchResponseFromModel(results []model.Attendee) SearchResponse {
	out := SearchResponse{Success: true, Results: make([]AttendeeJSON, 0, len(results))}
	for _, a := range results {
		out.Results = append(out.Results, AttendeeJSONFromModel(a))
	}
	return out
}

// PrintResponse is returned by a successful online print
type PrintResponse struct {
	Success      bool   `json:"success"`
	SeImprimioAt string `json:"se_imprimio_at"`
}

// DashboardResponse is the event-wide aggregate
type DashboardResponse struct {
	Success   bool           `json:"success"`
	Total     int            `json:"total"`
	Pagados   int            `json:"pagados"`
	Impresos  int            `json:"impresos"`
	PorSesion map[string]int `json:"porSesion"`
}

// DashboardResponseFromModel converts a query.Dashboard to its wire form
func DashboardResponseFromModel(d *query.Dashboard) DashboardResponse {
	return DashboardResponse{
		Success:   true,
		Total:     d.Total,
		Pagados:   d.Paid,
		Impresos:  d.Printed,
		PorSesion: d.BySession,
	}
}
