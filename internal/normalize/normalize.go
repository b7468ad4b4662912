// Package normalize turns raw delimited text into canonical sales records.
// Source files arrive with wildly inconsistent headers, so every column is
// resolved through an alias table before it is typed.
package normalize

import (
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"hanami-dashboard/internal/models"
)

// columnAliases maps every known header spelling to its canonical field.
// Lookup happens twice: on the trimmed lower-cased header, then on the
// header with '_', '-' and spaces removed.
var columnAliases = map[string]string{
	"id_transacao":       "id_transacao",
	"idtransacao":        "id_transacao",
	"transacao_id":       "id_transacao",
	"cliente_id":         "cliente_id",
	"clienteid":          "cliente_id",
	"id_cliente":         "cliente_id",
	"nome_cliente":       "nome_cliente",
	"nomecliente":        "nome_cliente",
	"cliente":            "nome_cliente",
	"idade_cliente":      "idade_cliente",
	"idadecliente":       "idade_cliente",
	"idade":              "idade_cliente",
	"genero_cliente":     "genero_cliente",
	"generocliente":      "genero_cliente",
	"genero":             "genero_cliente",
	"sexo":               "genero_cliente",
	"cidade_cliente":     "cidade_cliente",
	"cidadecliente":      "cidade_cliente",
	"cidade":             "cidade_cliente",
	"estado_cliente":     "estado_cliente",
	"estadocliente":      "estado_cliente",
	"estado":             "estado_cliente",
	"uf":                 "estado_cliente",
	"renda_estimada":     "renda_estimada",
	"rendaestimada":      "renda_estimada",
	"renda":              "renda_estimada",
	"produto_id":         "produto_id",
	"produtoid":          "produto_id",
	"id_produto":         "produto_id",
	"nome_produto":       "nome_produto",
	"nomeproduto":        "nome_produto",
	"produto":            "nome_produto",
	"categoria_produto":  "categoria_produto",
	"categoriaproduto":   "categoria_produto",
	"categoria":          "categoria_produto",
	"preco_unitario":     "preco_unitario",
	"precounitario":      "preco_unitario",
	"preco":              "preco_unitario",
	"custo_produto":      "custo_produto",
	"custoproduto":       "custo_produto",
	"custo":              "custo_produto",
	"quantidade":         "quantidade",
	"qtd":                "quantidade",
	"data_venda":         "data_venda",
	"datavenda":          "data_venda",
	"data":               "data_venda",
	"valor_total":        "valor_total",
	"valortotal":         "valor_total",
	"total":              "valor_total",
	"valor":              "valor_total",
	"valor_final":        "valor_total",
	"valorfinal":         "valor_total",
	"subtotal":           "subtotal",
	"lucro":              "lucro",
	"margem":             "lucro",
	"margem_lucro":       "margem_lucro",
	"margemlucro":        "margem_lucro",
	"desconto_aplicado":  "desconto_aplicado",
	"descontoaplicado":   "desconto_aplicado",
	"desconto":           "desconto_aplicado",
	"desconto_valor":     "desconto_aplicado",
	"descontovalor":      "desconto_aplicado",
	"forma_pagamento":    "forma_pagamento",
	"formapagamento":     "forma_pagamento",
	"pagamento":          "forma_pagamento",
	"metodo_pagamento":   "forma_pagamento",
	"parcelas":           "parcelas",
	"num_parcelas":       "parcelas",
	"status_entrega":     "status_entrega",
	"statusentrega":      "status_entrega",
	"status":             "status_entrega",
	"regiao":             "regiao",
	"região":             "regiao",
	"region":             "regiao",
	"tempo_entrega_dias": "tempo_entrega_dias",
	"tempoentregadias":   "tempo_entrega_dias",
	"tempo_entrega":      "tempo_entrega_dias",
	"dias_entrega":       "tempo_entrega_dias",
	"avaliacao_produto":  "avaliacao_produto",
	"avaliacaoproduto":   "avaliacao_produto",
	"avaliacao":          "avaliacao_produto",
	"nota":               "avaliacao_produto",
	"rating":             "avaliacao_produto",
}

var numericFields = map[string]bool{
	"idade_cliente":      true,
	"renda_estimada":     true,
	"preco_unitario":     true,
	"custo_produto":      true,
	"quantidade":         true,
	"valor_total":        true,
	"subtotal":           true,
	"lucro":              true,
	"margem_lucro":       true,
	"desconto_aplicado":  true,
	"parcelas":           true,
	"tempo_entrega_dias": true,
	"avaliacao_produto":  true,
}

// minFields is the malformed-row threshold: lines splitting into fewer
// values are dropped instead of producing garbage records.
const minFields = 5

// Stats reports how a parse went. Diagnostic only, nothing in it is part
// of the record contract.
type Stats struct {
	Rows    int `json:"rows"`
	Skipped int `json:"skipped"`
}

// ParseCSV parses raw delimited text (first line = header) into canonical
// records. It never fails as a whole: malformed rows are skipped and
// counted in Stats.
func ParseCSV(text string) ([]models.SalesRecord, Stats) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return []models.SalesRecord{}, Stats{}
	}

	header := SplitLine(strings.TrimRight(lines[0], "\r"))
	rows := make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		rows = append(rows, SplitLine(strings.TrimRight(line, "\r")))
	}
	return FromRows(header, rows)
}

// FromRows maps pre-split rows through the alias table. The Excel upload
// path feeds its sheet rows here so both formats normalize identically.
func FromRows(header []string, rows [][]string) ([]models.SalesRecord, Stats) {
	canonical := make([]string, len(header)) // "" when the header is unmapped
	rawNames := make([]string, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(h, `"`, "")))
		rawNames[i] = name
		if field, ok := columnAliases[name]; ok {
			canonical[i] = field
			continue
		}
		if field, ok := columnAliases[collapseHeader(name)]; ok {
			canonical[i] = field
		}
	}

	records := make([]models.SalesRecord, 0, len(rows))
	stats := Stats{}
	for i, values := range rows {
		row := i + 1 // 1-based data row, used for synthesized ids
		if len(values) < minFields {
			stats.Skipped++
			continue
		}

		var rec models.SalesRecord
		for col, field := range canonical {
			if col >= len(values) {
				continue
			}
			value := strings.TrimSpace(strings.ReplaceAll(values[col], `"`, ""))
			if field == "" {
				if rawNames[col] != "" && value != "" {
					if rec.Extra == nil {
						rec.Extra = make(map[string]string)
					}
					rec.Extra[rawNames[col]] = value
				}
				continue
			}
			if numericFields[field] {
				setNumeric(&rec, field, ParseNumber(value))
			} else {
				setString(&rec, field, value)
			}
		}

		deriveProfit(&rec)

		if rec.IDTransacao == "" {
			rec.IDTransacao = "T" + strconv.Itoa(row)
		}
		if rec.ClienteID == "" {
			rec.ClienteID = "C" + strconv.Itoa(row)
		}
		if rec.ProdutoID == "" {
			rec.ProdutoID = "P" + strconv.Itoa(row)
		}

		records = append(records, rec)
		stats.Rows++
	}

	if stats.Skipped > 0 {
		slog.Debug("normalize: skipped malformed rows", "skipped", stats.Skipped, "kept", stats.Rows)
	}
	return records, stats
}

// SplitLine splits one data line, auto-detecting the delimiter (semicolon
// wins when present) and honoring double-quoted fields that embed it.
// Quote characters toggle the in-quotes state and are stripped.
func SplitLine(line string) []string {
	sep := byte(',')
	if strings.Contains(line, ";") {
		sep = ';'
	}

	var fields []string
	var current strings.Builder
	inQuotes := false
	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case c == '"':
			inQuotes = !inQuotes
		case c == sep && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	fields = append(fields, current.String())
	return fields
}

// ParseNumber coerces a raw cell into a float: currency markers and
// whitespace stripped, decimal comma converted to dot. Unparsable → 0.
func ParseNumber(value string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if r == 'R' || r == '$' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, value)
	cleaned = strings.Replace(cleaned, ",", ".", 1)

	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return n
}

// deriveProfit fills lucro when the source omits it: margin times total
// first, then subtotal minus cost of goods.
func deriveProfit(rec *models.SalesRecord) {
	if rec.Lucro != 0 {
		return
	}
	if rec.MargemLucro != 0 && rec.ValorTotal != 0 {
		rec.Lucro = rec.ValorTotal * rec.MargemLucro
		return
	}
	if rec.Subtotal != 0 && rec.CustoProduto != 0 && rec.Quantidade != 0 {
		rec.Lucro = rec.Subtotal - rec.CustoProduto*rec.Quantidade
	}
}

func collapseHeader(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, name)
}

func setNumeric(rec *models.SalesRecord, field string, v float64) {
	switch field {
	case "idade_cliente":
		rec.IdadeCliente = v
	case "renda_estimada":
		rec.RendaEstimada = v
	case "preco_unitario":
		rec.PrecoUnitario = v
	case "custo_produto":
		rec.CustoProduto = v
	case "quantidade":
		rec.Quantidade = v
	case "valor_total":
		rec.ValorTotal = v
	case "subtotal":
		rec.Subtotal = v
	case "lucro":
		rec.Lucro = v
	case "margem_lucro":
		rec.MargemLucro = v
	case "desconto_aplicado":
		rec.DescontoAplicado = v
	case "parcelas":
		rec.Parcelas = v
	case "tempo_entrega_dias":
		rec.TempoEntregaDias = v
	case "avaliacao_produto":
		rec.AvaliacaoProduto = v
	}
}

func setString(rec *models.SalesRecord, field, v string) {
	switch field {
	case "id_transacao":
		rec.IDTransacao = v
	case "cliente_id":
		rec.ClienteID = v
	case "nome_cliente":
		rec.NomeCliente = v
	case "genero_cliente":
		rec.GeneroCliente = v
	case "cidade_cliente":
		rec.CidadeCliente = v
	case "estado_cliente":
		rec.EstadoCliente = v
	case "produto_id":
		rec.ProdutoID = v
	case "nome_produto":
		rec.NomeProduto = v
	case "categoria_produto":
		rec.CategoriaProduto = v
	case "data_venda":
		rec.DataVenda = v
	case "forma_pagamento":
		rec.FormaPagamento = v
	case "status_entrega":
		rec.StatusEntrega = v
	case "regiao":
		rec.Regiao = v
	}
}
