// seed_catalog genera un script SQL para cargar el catálogo inicial (categorías y productos)
// desde un CSV exportado de la caja anterior o de una hoja de cálculo.
//
// Uso: go run ./cmd/seed_catalog productos.csv [salida.sql]
//
// Columnas esperadas (con encabezado): nombre,categoria,precio,stock,stock_minimo
// El archivo puede venir en UTF-8 o en ISO-8859-1 (Excel en Windows); se detecta solo.
// Por defecto escribe seed_catalog.sql en el directorio actual.
package main

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Espacio de nombres para ids deterministas: correr el seed dos veces no duplica filas.
var seedNamespace = uuid.MustParse("6b1f3f0e-3c1d-4c55-9d0e-5f2b8a7c9e10")

type row struct {
	name     string
	category string
	price    decimal.Decimal
	stock    decimal.Decimal
	minStock decimal.Decimal
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Uso: seed_catalog productos.csv [salida.sql]")
		os.Exit(2)
	}
	outPath := "seed_catalog.sql"
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}
	rows, err := parseCSV(decodeLatin1IfNeeded(raw))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Parsear CSV: %v\n", err)
		os.Exit(1)
	}

	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	cats := writeSQL(w, rows, time.Now().UTC())
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d categorías, %d productos\n", outPath, cats, len(rows))
}

// decodeLatin1IfNeeded convierte ISO-8859-1 a UTF-8 cuando el archivo no es UTF-8 válido.
func decodeLatin1IfNeeded(raw []byte) io.Reader {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return bytes.NewReader(raw)
	}
	return transform.NewReader(bytes.NewReader(raw), charmap.ISO8859_1.NewDecoder())
}

func parseCSV(r io.Reader) ([]row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("el archivo no tiene productos")
	}
	var rows []row
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) < 5 {
			return nil, fmt.Errorf("línea %d: se esperaban 5 columnas, hay %d", line, len(rec))
		}
		name := strings.TrimSpace(rec[0])
		if name == "" {
			continue
		}
		r := row{name: name, category: strings.TrimSpace(rec[1])}
		for j, dst := range []*decimal.Decimal{&r.price, &r.stock, &r.minStock} {
			v := strings.TrimSpace(strings.ReplaceAll(rec[2+j], ",", ""))
			if v == "" {
				v = "0"
			}
			d, err := decimal.NewFromString(v)
			if err != nil || d.IsNegative() {
				return nil, fmt.Errorf("línea %d, columna %d: número inválido %q", line, 3+j, rec[2+j])
			}
			*dst = d
		}
		r.price = r.price.Round(2)
		rows = append(rows, r)
	}
	return rows, nil
}

// writeSQL emite categorías y productos; el stock inicial queda registrado como movimiento ENTRY.
// Los productos existentes no se tocan: el stock vivo solo cambia por movimientos.
func writeSQL(w io.Writer, rows []row, now time.Time) int {
	catIDs := make(map[string]string)
	catNames := make(map[string]string)
	for _, r := range rows {
		if r.category == "" {
			continue
		}
		key := strings.ToLower(r.category)
		if _, ok := catIDs[key]; !ok {
			catIDs[key] = uuid.NewSHA1(seedNamespace, []byte("category:"+key)).String()
			catNames[key] = r.category
		}
	}
	keys := make([]string, 0, len(catIDs))
	for k := range catIDs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ts := now.Format(time.RFC3339)
	fmt.Fprintf(w, "-- Catálogo inicial generado por seed_catalog (%s)\n\nBEGIN;\n\n", ts)

	fmt.Fprintln(w, "-- 1. Categorías")
	for _, k := range keys {
		fmt.Fprintf(w, "INSERT INTO categories (id, name) VALUES ('%s', '%s')\n", catIDs[k], escapeSQL(catNames[k]))
		fmt.Fprintln(w, "ON CONFLICT DO NOTHING;")
	}

	fmt.Fprintln(w, "\n-- 2. Productos y movimiento de stock inicial")
	for _, r := range rows {
		id := uuid.NewSHA1(seedNamespace, []byte("product:"+strings.ToLower(r.name))).String()
		cat := "NULL"
		if r.category != "" {
			// Si la categoría ya existía con otro id, se resuelve por nombre.
			cat = fmt.Sprintf("(SELECT id FROM categories WHERE lower(btrim(name)) = lower(btrim('%s')))", escapeSQL(r.category))
		}
		fmt.Fprintf(w, "WITH ins AS (\n")
		fmt.Fprintf(w, "  INSERT INTO products (id, name, price, stock, min_stock, active, category_id, created_at, updated_at)\n")
		fmt.Fprintf(w, "  VALUES ('%s', '%s', %s, %s, %s, TRUE, %s, '%s', '%s')\n",
			id, escapeSQL(r.name), r.price.StringFixed(2), r.stock.String(), r.minStock.String(), cat, ts, ts)
		fmt.Fprintf(w, "  ON CONFLICT (id) DO NOTHING\n  RETURNING id, stock\n)\n")
		fmt.Fprintf(w, "INSERT INTO stock_movements (id, product_id, kind, quantity, stock_before, stock_after, reason, created_at)\n")
		fmt.Fprintf(w, "SELECT '%s', id, 'ENTRY', stock, 0, stock, 'initial stock', '%s' FROM ins WHERE stock > 0;\n",
			uuid.NewSHA1(seedNamespace, []byte("initial:"+id)).String(), ts)
	}
	fmt.Fprintln(w, "\nCOMMIT;")
	return len(keys)
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
