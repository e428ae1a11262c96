package model

import (
	"maps"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips diacritics ("José" -> "jose") for
// human-friendly matching.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// headerAliases maps folded spreadsheet column names to attendee record keys
var headerAliases = map[string]string{
	"uuid": KeyUUID, "id_unico": KeyUUID,

	"dni": KeyDNI, "documento": KeyDNI, "cedula": KeyDNI, "id": KeyDNI,

	"nombres": KeyFirstNames, "nombre": KeyFirstNames, "first_name": KeyFirstNames,

	"apellidos": KeyLastNames, "apellido": KeyLastNames, "last_name": KeyLastNames,

	"institucion": KeyInstitution, "institucion_o_empresa": KeyInstitution,
	"empresa": KeyInstitution, "organization": KeyInstitution,

	"puesto": KeyPosition, "profesion": KeyPosition, "cargo": KeyPosition,
	"role": KeyPosition, "ocupacion": KeyPosition,

	"correo": KeyEmail, "email": KeyEmail, "correo_electronico": KeyEmail, "mail": KeyEmail,

	"pais": KeyCountry, "country": KeyCountry,

	"estado_pago": KeyPaymentStatus, "pago": KeyPaymentStatus, "status_pago": KeyPaymentStatus,

	"medio_pago": KeyPaymentMethod, "metodo_pago": KeyPaymentMethod,

	"descripcion": KeyDescription, "description": KeyDescription, "detalle": KeyDescription,
	"detalles": KeyDescription, "nota": KeyDescription, "notas": KeyDescription,
	"observaciones": KeyDescription, "observacion": KeyDescription,

	"sede_alta": KeySite, "sede": KeySite,
}

// HeaderKey maps a spreadsheet column name to an attendee record key.
// Unknown columns return "".
func HeaderKey(header string) string {
	folded := strings.Join(strings.Fields(Fold(header)), "_")
	var b strings.Builder
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	return headerAliases[strings.Trim(b.String(), "_")]
}

// FieldsFromRow builds attendee fields from an imported row keyed by column
// header. Unknown columns and blank cells are dropped.
func FieldsFromRow(row map[string]string) Fields {
	m := make(map[string]any, len(row))
	for _, header := range slices.Sorted(maps.Keys(row)) {
		value := row[header]
		key := HeaderKey(header)
		if key == "" || strings.TrimSpace(value) == "" {
			continue
		}
		// Several columns may alias one key; the first in sorted header order wins
		if _, dup := m[key]; dup {
			continue
		}
		m[key] = strings.TrimSpace(value)
	}
	return FieldsFromRecord(m)
}
