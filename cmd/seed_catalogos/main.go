// seed_catalogos genera scripts SQL para poblar las tablas paramétricas
// (tipos de impuesto y series de documento) a partir del CSV legado
// catalogos.csv, exportado en ISO-8859-1.
//
// Formato del CSV (sin cabecera):
//
//	IMPUESTO;<id>;<nombre>;<porcentaje>
//	SERIE;<sucursal_id>;<tipo_doc_id>;<serie>;<ancho>
//
// Uso: go run ./cmd/seed_catalogos [ruta/catalogos.csv]
// Escribe: internal/infrastructure/postgres/migrations/002_seed_catalogos.sql
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type taxRow struct {
	id, name, percentage string
}

type seriesRow struct {
	branchID, docTypeID, series, width string
}

func main() {
	csvPath := "catalogos.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	// El export legado viene en ISO-8859-1; se decodifica a UTF-8 al vuelo.
	reader := csv.NewReader(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	var taxes []taxRow
	var series []seriesRow
	for i, rec := range records {
		if len(rec) == 0 {
			continue
		}
		switch strings.ToUpper(strings.TrimSpace(rec[0])) {
		case "IMPUESTO":
			if len(rec) < 4 {
				fmt.Fprintf(os.Stderr, "Línea %d: IMPUESTO requiere 4 campos\n", i+1)
				os.Exit(1)
			}
			taxes = append(taxes, taxRow{
				id:         strings.TrimSpace(rec[1]),
				name:       strings.TrimSpace(rec[2]),
				percentage: strings.TrimSpace(rec[3]),
			})
		case "SERIE":
			if len(rec) < 5 {
				fmt.Fprintf(os.Stderr, "Línea %d: SERIE requiere 5 campos\n", i+1)
				os.Exit(1)
			}
			series = append(series, seriesRow{
				branchID:  strings.TrimSpace(rec[1]),
				docTypeID: strings.TrimSpace(rec[2]),
				series:    strings.TrimSpace(rec[3]),
				width:     strings.TrimSpace(rec[4]),
			})
		default:
			// Líneas de comentario o tipos desconocidos se ignoran.
		}
	}

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "002_seed_catalogos.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	out.WriteString("-- Tipos de impuesto y series de documento por sucursal\n")
	out.WriteString("-- Generado desde catalogos.csv (export legado ISO-8859-1)\n\n")

	out.WriteString("-- 1. Tipos de impuesto\n")
	for _, t := range taxes {
		fmt.Fprintf(out, "INSERT INTO tax_types (id, name, percentage)\nVALUES ('%s', '%s', %s)\n",
			escapeSQL(t.id), escapeSQL(t.name), t.percentage)
		out.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, percentage = EXCLUDED.percentage;\n")
	}

	out.WriteString("\n-- 2. Series de documento (contador en cero)\n")
	for _, s := range series {
		fmt.Fprintf(out, "INSERT INTO document_series (branch_id, doc_type_id, series, last_number, width)\nVALUES ('%s', '%s', '%s', 0, %s)\n",
			escapeSQL(s.branchID), escapeSQL(s.docTypeID), escapeSQL(s.series), s.width)
		out.WriteString("ON CONFLICT (branch_id, doc_type_id) DO NOTHING;\n")
	}

	fmt.Printf("Generado %s: %d impuestos, %d series\n", outPath, len(taxes), len(series))
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
