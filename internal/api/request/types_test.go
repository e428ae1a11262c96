package request

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klfajardo/registro-evento-chile/internal/model"
)

func TestRegisterRequestAcceptsNumericDNI(t *testing.T) {
	var req RegisterRequest
	require.NoError(t, json.Unmarshal([]byte(`{"dni": 12345678, "nombres": " Ana ", "correo": null}`), &req))

	f := req.Fields("sede_norte")
	require.NotNil(t, f.DNI)
	assert.Equal(t, "12345678", *f.DNI)
	assert.Equal(t, "Ana", *f.FirstNames)
	assert.Nil(t, f.Email)
	assert.Nil(t, f.PaymentStatus)
	assert.Equal(t, "sede_norte", *f.Site)
}

func TestRegisterRequestKeepsBodySite(t *testing.T) {
	req := RegisterRequest{DNI: "1", SedeAlta: "sede_sur", EstadoPago: "paid"}

	f := req.Fields("sede_norte")
	assert.Equal(t, "sede_sur", *f.Site)
	assert.Equal(t, model.PaymentPaid, *f.PaymentStatus)
}

func TestRegisterRequestRejectsObjects(t *testing.T) {
	var req RegisterRequest
	assert.Error(t, json.Unmarshal([]byte(`{"dni": {"x": 1}}`), &req))
}

func TestImportRequestRows(t *testing.T) {
	var req ImportRequest
	require.NoError(t, json.Unmarshal([]byte(`{"records":[{"DNI": 123, "Nombres": "Ana", "extra": {"a": 1}, "vip": true}]}`), &req))

	rows := req.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, map[string]string{"DNI": "123", "Nombres": "Ana", "vip": "true"}, rows[0])
}
