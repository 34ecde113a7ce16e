package billing

import (
	"crypto/sha512"
	"encoding/hex"
	"strings"

	"github.com/jhoicas/sucursales-api/internal/application/sale"
)

// VerificationCode calcula el código de verificación del comprobante:
// SHA-384 en hex minúscula sobre los campos clave concatenados con pipe.
// El orden de los campos es parte del contrato y no debe cambiar.
func VerificationCode(d sale.DeclarationDocument) string {
	fields := []string{
		d.Series,
		d.Number,
		d.IssuedAt.Format("2006-01-02"),
		d.ClientDocument,
		d.TotalTaxed.StringFixed(2),
		d.TotalExempt.StringFixed(2),
		d.TotalTax.StringFixed(2),
		d.TotalAmount.StringFixed(2),
	}
	sum := sha512.Sum384([]byte(strings.Join(fields, "|")))
	return hex.EncodeToString(sum[:])
}
