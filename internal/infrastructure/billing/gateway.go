// Package billing implementa la pasarela de declaración de comprobantes ante
// la autoridad tributaria. Para el núcleo la pasarela es opaca: construye el
// resumen XML del comprobante, calcula el código de verificación y hace el
// POST; solo devuelve éxito/fracaso más el identificador externo.
package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/jhoicas/sucursales-api/internal/application/sale"
)

var _ sale.DeclarationGateway = (*Gateway)(nil)

// Config de la pasarela. Endpoint vacío = modo simulado: el comprobante se
// acepta localmente sin llamar al servicio remoto (útil en desarrollo).
type Config struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
}

// Gateway cliente HTTP de la autoridad tributaria.
type Gateway struct {
	cfg        Config
	httpClient *http.Client
}

// NewGateway construye la pasarela.
func NewGateway(cfg Config) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Gateway{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Submit declara el comprobante. En modo simulado devuelve un identificador
// local; contra el servicio real, el identificador que este responda.
func (g *Gateway) Submit(ctx context.Context, doc sale.DeclarationDocument) (*sale.DeclarationResult, error) {
	payload, err := buildDocumentXML(doc)
	if err != nil {
		return nil, err
	}

	if g.cfg.Endpoint == "" {
		// Modo simulado: aceptado sin llamada remota.
		return &sale.DeclarationResult{ExternalID: "SIM-" + uuid.New().String()}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("declaración: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")
	if g.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.cfg.Token)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("declaración: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("declaración: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // max 1 MB
	if err != nil {
		return nil, fmt.Errorf("declaración: leer respuesta: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("declaración: rechazada (HTTP %d): %s", resp.StatusCode, string(rawBody))
	}

	var parsed struct {
		ExternalID string   `json:"external_id"`
		Links      []string `json:"links"`
	}
	if err := json.Unmarshal(rawBody, &parsed); err != nil || parsed.ExternalID == "" {
		// Algunos entornos devuelven solo el identificador en texto plano.
		return &sale.DeclarationResult{ExternalID: string(bytes.TrimSpace(rawBody))}, nil
	}
	return &sale.DeclarationResult{ExternalID: parsed.ExternalID, Links: parsed.Links}, nil
}

// buildDocumentXML arma el resumen del comprobante con su código de verificación.
func buildDocumentXML(d sale.DeclarationDocument) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("Comprobante")
	root.CreateElement("Serie").SetText(d.Series)
	root.CreateElement("Numero").SetText(d.Number)
	root.CreateElement("FechaEmision").SetText(d.IssuedAt.Format("2006-01-02"))

	cliente := root.CreateElement("Cliente")
	cliente.CreateElement("Documento").SetText(d.ClientDocument)
	cliente.CreateElement("Nombre").SetText(d.ClientName)

	totales := root.CreateElement("Totales")
	totales.CreateElement("Gravado").SetText(d.TotalTaxed.StringFixed(2))
	totales.CreateElement("Exonerado").SetText(d.TotalExempt.StringFixed(2))
	totales.CreateElement("Impuesto").SetText(d.TotalTax.StringFixed(2))
	totales.CreateElement("Total").SetText(d.TotalAmount.StringFixed(2))

	items := root.CreateElement("Items")
	for _, l := range d.Lines {
		item := items.CreateElement("Item")
		item.CreateElement("SKU").SetText(l.SKU)
		item.CreateElement("Cantidad").SetText(fmt.Sprintf("%d", l.Quantity))
		item.CreateElement("Importe").SetText(l.LineTotal.StringFixed(2))
	}

	root.CreateElement("CodigoVerificacion").SetText(VerificationCode(d))

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("declaración: serializar XML: %w", err)
	}
	return out, nil
}
