package request

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/klfajardo/registro-evento-chile/internal/model"
)

// Text is a JSON string field that also accepts numbers and null.
// Identity documents often arrive as numbers from spreadsheet-backed forms.
type Text string

// UnmarshalJSON implements json.Unmarshaler
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = Text(n.String())
	return nil
}

// String returns the trimmed value
func (t Text) String() string {
	return strings.TrimSpace(string(t))
}

// RegisterRequest is the request body for an on-site registration
type RegisterRequest struct {
	DNI         Text `json:"dni"`
	Nombres     Text `json:"nombres"`
	Apellidos   Text `json:"apellidos"`
	Institucion Text `json:"institucion"`
	Puesto      Text `json:"puesto"`
	Correo      Text `json:"correo"`
	Pais        Text `json:"pais"`
	Descripcion Text `json:"descripcion"`
	EstadoPago  Text `json:"estado_pago"`
	SedeAlta    Text `json:"sede_alta"`
}

// Fields converts the request into attendee fields. Blank values are absent,
// so a registration never erases data already on file. site is used when the
// body names no registration site.
func (r RegisterRequest) Fields(site string) model.Fields {
	f := model.Fields{
		DNI:           model.Text(r.DNI.String()),
		FirstNames:    model.Text(r.Nombres.String()),
		LastNames:     model.Text(r.Apellidos.String()),
		Institution:   model.Text(r.Institucion.String()),
		Position:      model.Text(r.Puesto.String()),
		Email:         model.Text(r.Correo.String()),
		Country:       model.Text(r.Pais.String()),
		Description:   model.Text(r.Descripcion.String()),
		PaymentStatus: model.Status(r.EstadoPago.String()),
		Site:          model.Text(r.SedeAlta.String()),
	}
	if f.Site == nil {
		f.Site = model.Text(site)
	}
	return f
}

// ImportRequest is the request body for a bulk import of parsed rows
type ImportRequest struct {
	Records []map[string]any `json:"records"`
}

// Rows returns the records as column → text maps. Nested values are dropped.
func (r ImportRequest) Rows() []map[string]string {
	rows := make([]map[string]string, 0, len(r.Records))
	for _, rec := range r.Records {
		row := make(map[string]string, len(rec))
		for k, v := range rec {
			switch x := v.(type) {
			case string:
				row[k] = x
			case float64:
				row[k] = strconv.FormatFloat(x, 'f', -1, 64)
			case bool:
				row[k] = strconv.FormatBool(x)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// PayRequest is the request body for marking a payment
type PayRequest struct {
	UUID  string `json:"uuid"`
	Medio string `json:"medio"`
}

// PrintRequest is the request body for marking a badge print
type PrintRequest struct {
	UUID string `json:"uuid"`
}

// CheckInRequest is the request body for a talk check-in
type CheckInRequest struct {
	UUID      string `json:"uuid"`
	SessionID string `json:"session_id"`
	Sede      string `json:"sede"`
}
