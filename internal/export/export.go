// Package export renders a record collection as a downloadable report,
// CSV or Excel, and reads Excel uploads back through the normalizer.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"hanami-dashboard/internal/models"
	"hanami-dashboard/internal/normalize"
)

const sheetName = "Vendas"

// header is the canonical column order of exported reports.
var header = []string{
	"id_transacao", "cliente_id", "nome_cliente", "idade_cliente",
	"genero_cliente", "cidade_cliente", "estado_cliente", "renda_estimada",
	"produto_id", "nome_produto", "categoria_produto", "preco_unitario",
	"custo_produto", "quantidade", "data_venda", "valor_total", "subtotal",
	"lucro", "margem_lucro", "desconto_aplicado", "forma_pagamento",
	"parcelas", "status_entrega", "regiao", "tempo_entrega_dias",
	"avaliacao_produto",
}

// WriteCSV streams the collection as comma-separated text.
func WriteCSV(w io.Writer, records []models.SalesRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range records {
		if err := cw.Write(row(r)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteExcel renders the collection as a single-sheet workbook.
func WriteExcel(w io.Writer, records []models.SalesRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &cells); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := rowValues(r)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ReadExcel loads the first sheet of an uploaded workbook and feeds its
// rows through the same alias mapping CSV uploads get.
func ReadExcel(r io.Reader) ([]models.SalesRecord, normalize.Stats, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, normalize.Stats{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, normalize.Stats{}, fmt.Errorf("read sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, normalize.Stats{}, fmt.Errorf("empty workbook")
	}

	records, stats := normalize.FromRows(rows[0], rows[1:])
	return records, stats, nil
}

func row(r models.SalesRecord) []string {
	return []string{
		r.IDTransacao, r.ClienteID, r.NomeCliente, num(r.IdadeCliente),
		r.GeneroCliente, r.CidadeCliente, r.EstadoCliente, num(r.RendaEstimada),
		r.ProdutoID, r.NomeProduto, r.CategoriaProduto, num(r.PrecoUnitario),
		num(r.CustoProduto), num(r.Quantidade), r.DataVenda, num(r.ValorTotal),
		num(r.Subtotal), num(r.Lucro), num(r.MargemLucro), num(r.DescontoAplicado),
		r.FormaPagamento, num(r.Parcelas), r.StatusEntrega, r.Regiao,
		num(r.TempoEntregaDias), num(r.AvaliacaoProduto),
	}
}

func rowValues(r models.SalesRecord) []any {
	fields := row(r)
	values := make([]any, len(fields))
	for i, f := range fields {
		values[i] = f
	}
	return values
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
