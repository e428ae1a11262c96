package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
)

// Output handles formatting output based on the configured format
type Output struct {
	w      io.Writer
	format string
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(w io.Writer, format string) *Output {
	return &Output{w: w, format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case WriteResult:
		o.printWriteResult(v)
	case RegisterResult:
		o.printRegisterResult(v)
	case ImportResult:
		o.printImportResult(v)
	case AttendeeResult:
		o.printAttendee(v.Attendee)
	case SearchResult:
		o.printSearchResult(v)
	case PrintResult:
		o.printPrintResult(v)
	case Dashboard:
		o.printDashboard(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// WriteResult is the body of a write with nothing else to report
type WriteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Offline reports whether the write was logged locally by the server
func (r WriteResult) Offline() bool {
	return r.Message == "offline"
}

// RegisterResult response type
type RegisterResult struct {
	Success bool   `json:"success"`
	UUID    string `json:"uuid,omitempty"`
	Message string `json:"message,omitempty"`
}

// ImportResult response type
type ImportResult struct {
	Success  bool `json:"success"`
	Imported int  `json:"imported"`
	Skipped  int  `json:"skipped"`
}

// Attendee response type (matches API)
type Attendee struct {
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

// AttendeeResult response type
type AttendeeResult struct {
	Success  bool     `json:"success"`
	Attendee Attendee `json:"attendee"`
}

// SearchResult response type
type SearchResult struct {
	Success bool       `json:"success"`
	Results []Attendee `json:"results"`
}

// PrintResult response type
type PrintResult struct {
	Success      bool   `json:"success"`
	SeImprimioAt string `json:"se_imprimio_at,omitempty"`
	Message      string `json:"message,omitempty"`
}

// Dashboard response type
type Dashboard struct {
	Success   bool           `json:"success"`
	Total     int            `json:"total"`
	Pagados   int            `json:"pagados"`
	Impresos  int            `json:"impresos"`
	PorSesion map[string]int `json:"porSesion"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printWriteResult(r WriteResult) {
	if r.Offline() {
		_, _ = fmt.Fprintln(o.w, "Saved offline to the fallback log")
		return
	}
	_, _ = fmt.Fprintln(o.w, "OK")
}

func (o *Output) printRegisterResult(r RegisterResult) {
	if r.UUID == "" {
		o.printWriteResult(WriteResult{Success: r.Success, Message: r.Message})
		return
	}
	_, _ = fmt.Fprintf(o.w, "Registered: %s\n", r.UUID)
}

func (o *Output) printImportResult(r ImportResult) {
	_, _ = fmt.Fprintf(o.w, "Imported: %d\n", r.Imported)
	_, _ = fmt.Fprintf(o.w, "Skipped: %d\n", r.Skipped)
}

func (o *Output) printAttendee(a Attendee) {
	_, _ = fmt.Fprintf(o.w, "Attendee: %s %s (%s)\n", a.Nombres, a.Apellidos, a.UUID)
	_, _ = fmt.Fprintf(o.w, "DNI: %s\n", a.DNI)
	if a.Correo != "" {
		_, _ = fmt.Fprintf(o.w, "Email: %s\n", a.Correo)
	}
	if a.Institucion != "" {
		_, _ = fmt.Fprintf(o.w, "Institution: %s\n", a.Institucion)
	}
	payment := a.EstadoPago
	if a.MedioPago != "" {
		payment += " (" + a.MedioPago + ")"
	}
	_, _ = fmt.Fprintf(o.w, "Payment: %s\n", payment)
	if a.SeImprimioAt != nil {
		_, _ = fmt.Fprintf(o.w, "Printed: %s\n", *a.SeImprimioAt)
	} else {
		_, _ = fmt.Fprintln(o.w, "Printed: no")
	}
	_, _ = fmt.Fprintf(o.w, "Site: %s\n", a.SedeAlta)
}

func (o *Output) printSearchResult(r SearchResult) {
	if len(r.Results) == 0 {
		_, _ = fmt.Fprintln(o.w, "No matches")
		return
	}
	_, _ = fmt.Fprintf(o.w, "Matches (%d):\n", len(r.Results))
	for _, a := range r.Results {
		_, _ = fmt.Fprintf(o.w, "  - %s %s [%s] %s %s\n", a.Apellidos, a.Nombres, a.DNI, a.UUID, a.EstadoPago)
	}
}

func (o *Output) printPrintResult(r PrintResult) {
	if r.SeImprimioAt == "" {
		o.printWriteResult(WriteResult{Success: r.Success, Message: r.Message})
		return
	}
	_, _ = fmt.Fprintf(o.w, "Printed at: %s\n", r.SeImprimioAt)
}

func (o *Output) printDashboard(d Dashboard) {
	_, _ = fmt.Fprintf(o.w, "Total: %d\n", d.Total)
	_, _ = fmt.Fprintf(o.w, "Paid: %d\n", d.Pagados)
	_, _ = fmt.Fprintf(o.w, "Printed: %d\n", d.Impresos)
	if len(d.PorSesion) == 0 {
		return
	}
	_, _ = fmt.Fprintln(o.w, "Check-ins by session:")
	for _, session := range slices.Sorted(maps.Keys(d.PorSesion)) {
		_, _ = fmt.Fprintf(o.w, "  %s: %d\n", session, d.PorSesion[session])
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", h.Status)
}
