// Package ticket emite el comprobante XML de una venta sellado con HMAC-SHA256.
//
// El sello se calcula sobre la forma canónica (C14N) del documento sin el elemento Seal,
// así reordenar atributos o cambiar comillas no invalida el comprobante, pero tocar
// cualquier dato sí.
package ticket

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	appticket "github.com/jhoicas/POS-api/internal/application/ticket"
	"github.com/ucarion/c14n"
)

var _ appticket.Sealer = (*HMACSealer)(nil)

const (
	TicketVersion = "1.0"
	SealAlgorithm = "HMAC-SHA256"
	sealTag       = "Seal"
)

// ErrNoSeal el documento no trae elemento Seal.
var ErrNoSeal = errors.New("ticket: comprobante sin sello")

// HMACSealer sella y verifica comprobantes con una llave compartida.
type HMACSealer struct {
	key []byte
}

// NewHMACSealer construye el sellador. La llave no puede ser vacía.
func NewHMACSealer(key string) (*HMACSealer, error) {
	if key == "" {
		return nil, errors.New("ticket: llave de sello vacía")
	}
	return &HMACSealer{key: []byte(key)}, nil
}

// Seal construye el XML del ticket, calcula el sello y lo agrega como último hijo de la raíz.
func (s *HMACSealer) Seal(data appticket.Data) ([]byte, error) {
	doc := etree.NewDocument()
	root := doc.CreateElement("Ticket")
	root.CreateAttr("version", TicketVersion)
	root.CreateAttr("id", data.SaleID)

	root.CreateElement("Store").SetText(data.StoreName)

	sale := root.CreateElement("Sale")
	sale.CreateAttr("date", data.Date.Format("2006-01-02"))
	sale.CreateAttr("time", data.Time)
	if data.Branch != "" {
		sale.CreateAttr("branch", data.Branch)
	}
	sale.CreateAttr("voided", strconv.FormatBool(data.Voided))
	sale.CreateElement("Operator").SetText(data.Operator)
	if data.Client != "" {
		sale.CreateElement("Client").SetText(data.Client)
	}

	lines := sale.CreateElement("Lines")
	for _, l := range data.Lines {
		e := lines.CreateElement("Line")
		e.CreateAttr("position", strconv.Itoa(l.Position))
		e.CreateAttr("product_id", l.ProductID)
		e.CreateAttr("quantity", l.Quantity.String())
		e.CreateAttr("unit_price", l.UnitPrice.StringFixed(2))
		e.CreateAttr("discount", l.DiscountPercent.String())
		e.CreateAttr("subtotal", l.Subtotal.StringFixed(2))
		e.SetText(l.ProductName)
	}

	totals := sale.CreateElement("Totals")
	totals.CreateAttr("tax_inclusive", strconv.FormatBool(data.TaxInclusive))
	totals.CreateElement("Subtotal").SetText(data.Subtotal.StringFixed(2))
	totals.CreateElement("Tax").SetText(data.Tax.StringFixed(2))
	totals.CreateElement("Total").SetText(data.Total.StringFixed(2))

	seal, err := s.compute(doc)
	if err != nil {
		return nil, err
	}
	sealEl := root.CreateElement(sealTag)
	sealEl.CreateAttr("algorithm", SealAlgorithm)
	sealEl.SetText(seal)

	final := etree.NewDocument()
	final.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	final.SetRoot(root)

	var out bytes.Buffer
	if _, err := final.WriteTo(&out); err != nil {
		return nil, fmt.Errorf("ticket: serializar xml: %w", err)
	}
	return out.Bytes(), nil
}

// Verify recalcula el sello del documento y lo compara en tiempo constante.
// Devuelve error solo si el XML no se puede leer o no trae sello.
func (s *HMACSealer) Verify(xmlDoc []byte) (bool, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlDoc); err != nil {
		return false, fmt.Errorf("ticket: parsear xml: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return false, errors.New("ticket: documento sin raíz")
	}
	sealEl := root.SelectElement(sealTag)
	if sealEl == nil {
		return false, ErrNoSeal
	}
	if sealEl.SelectAttrValue("algorithm", "") != SealAlgorithm {
		return false, nil
	}
	got, err := base64.StdEncoding.DecodeString(sealEl.Text())
	if err != nil {
		return false, nil
	}

	// Documento sin el sello ni la declaración XML: lo mismo que se selló
	unsealed := etree.NewDocument()
	unsealed.SetRoot(root.Copy())
	unsealed.Root().RemoveChild(unsealed.Root().SelectElement(sealTag))

	want, err := s.mac(unsealed)
	if err != nil {
		return false, err
	}
	return hmac.Equal(got, want), nil
}

func (s *HMACSealer) compute(doc *etree.Document) (string, error) {
	sum, err := s.mac(doc)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sum), nil
}

func (s *HMACSealer) mac(doc *etree.Document) ([]byte, error) {
	var raw bytes.Buffer
	if _, err := doc.WriteTo(&raw); err != nil {
		return nil, fmt.Errorf("ticket: serializar xml: %w", err)
	}
	canonical, err := canonicalize(raw.Bytes())
	if err != nil {
		return nil, fmt.Errorf("ticket: canonicalizar: %w", err)
	}
	h := hmac.New(sha256.New, s.key)
	h.Write(canonical)
	return h.Sum(nil), nil
}

func canonicalize(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}
