package normalize

import (
	"math"
	"testing"
)

func TestSplitLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{
			name: "plain comma",
			line: "A,B,C",
			want: []string{"A", "B", "C"},
		},
		{
			name: "quoted field embedding the delimiter",
			line: `A,"B,C",D`,
			want: []string{"A", "B,C", "D"},
		},
		{
			name: "semicolon wins when present",
			line: "A;B,C;D",
			want: []string{"A", "B,C", "D"},
		},
		{
			name: "trailing empty field",
			line: "A,B,",
			want: []string{"A", "B", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitLine(tt.line)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitLine(%q) = %v, want %v", tt.line, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("field %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"10", 10},
		{"10.5", 10.5},
		{"10,5", 10.5},
		{"R$ 1500,75", 1500.75},
		{"R$250", 250},
		{" 42 ", 42},
		{"abc", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := ParseNumber(tt.raw); got != tt.want {
			t.Errorf("ParseNumber(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseCSV_HeaderAliases(t *testing.T) {
	csv := "transacao_id,id_cliente,uf,produto,preco,qtd,valor,data\n" +
		"TX1,CL1,SP,Notebook,R$ 2500,2,\"R$ 5000,00\",15/01/2024"

	records, stats := ParseCSV(csv)
	if stats.Rows != 1 || stats.Skipped != 0 {
		t.Fatalf("stats = %+v, want 1 row 0 skipped", stats)
	}

	r := records[0]
	if r.IDTransacao != "TX1" {
		t.Errorf("IDTransacao = %q, want TX1", r.IDTransacao)
	}
	if r.ClienteID != "CL1" {
		t.Errorf("ClienteID = %q, want CL1", r.ClienteID)
	}
	if r.EstadoCliente != "SP" {
		t.Errorf("EstadoCliente = %q, want SP (via uf alias)", r.EstadoCliente)
	}
	if r.NomeProduto != "Notebook" {
		t.Errorf("NomeProduto = %q, want Notebook", r.NomeProduto)
	}
	if r.PrecoUnitario != 2500 {
		t.Errorf("PrecoUnitario = %v, want 2500", r.PrecoUnitario)
	}
	if r.ValorTotal != 5000 {
		t.Errorf("ValorTotal = %v, want 5000", r.ValorTotal)
	}
	if r.DataVenda != "15/01/2024" {
		t.Errorf("DataVenda = %q", r.DataVenda)
	}
}

func TestParseCSV_CollapsedHeaderLookup(t *testing.T) {
	// "Valor Total" is not in the alias table verbatim; it resolves after
	// stripping spaces.
	csv := "Id Transacao,Cliente Id,Valor Total,Data Venda,Forma Pagamento\n" +
		"T9,C9,100,2024-03-01,Pix"

	records, _ := ParseCSV(csv)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].ValorTotal != 100 {
		t.Errorf("ValorTotal = %v, want 100", records[0].ValorTotal)
	}
	if records[0].FormaPagamento != "Pix" {
		t.Errorf("FormaPagamento = %q, want Pix", records[0].FormaPagamento)
	}
}

func TestParseCSV_SemicolonDelimited(t *testing.T) {
	csv := "id_transacao;cliente_id;produto_id;quantidade;valor_total\n" +
		"T1;C1;P1;3;150,50"

	records, _ := ParseCSV(csv)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Quantidade != 3 {
		t.Errorf("Quantidade = %v, want 3", records[0].Quantidade)
	}
	if records[0].ValorTotal != 150.5 {
		t.Errorf("ValorTotal = %v, want 150.5", records[0].ValorTotal)
	}
}

func TestParseCSV_SkipsShortRows(t *testing.T) {
	csv := "id_transacao,cliente_id,produto_id,quantidade,valor_total\n" +
		"T1,C1,P1,1,100\n" +
		"only,two\n" +
		"T3,C3,P3,2,200"

	records, stats := ParseCSV(csv)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if stats.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", stats.Skipped)
	}
	// The skipped row still advances the row counter used for ids.
	if records[1].IDTransacao != "T3" {
		t.Errorf("second kept record = %q, want T3", records[1].IDTransacao)
	}
}

func TestParseCSV_SynthesizedIDs(t *testing.T) {
	csv := "nome_produto,quantidade,valor_total,data,estado\n" +
		"Mouse,1,50,2024-01-10,SP\n" +
		"Teclado,2,180,2024-01-11,RJ"

	records, _ := ParseCSV(csv)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	if records[0].IDTransacao != "T1" || records[0].ClienteID != "C1" || records[0].ProdutoID != "P1" {
		t.Errorf("row 1 ids = %q/%q/%q, want T1/C1/P1",
			records[0].IDTransacao, records[0].ClienteID, records[0].ProdutoID)
	}
	if records[1].IDTransacao != "T2" || records[1].ClienteID != "C2" || records[1].ProdutoID != "P2" {
		t.Errorf("row 2 ids = %q/%q/%q, want T2/C2/P2",
			records[1].IDTransacao, records[1].ClienteID, records[1].ProdutoID)
	}
}

func TestParseCSV_ProfitFallbacks(t *testing.T) {
	t.Run("margin times total", func(t *testing.T) {
		csv := "id_transacao,cliente_id,produto_id,valor_total,margem_lucro\n" +
			"T1,C1,P1,1000,\"0,2\""
		records, _ := ParseCSV(csv)
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if math.Abs(records[0].Lucro-200) > 1e-9 {
			t.Errorf("Lucro = %v, want 200", records[0].Lucro)
		}
	})

	t.Run("subtotal minus cost of goods", func(t *testing.T) {
		csv := "id_transacao,cliente_id,produto_id,subtotal,custo,quantidade\n" +
			"T1,C1,P1,500,100,3"
		records, _ := ParseCSV(csv)
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if records[0].Lucro != 200 {
			t.Errorf("Lucro = %v, want 500 - 100*3 = 200", records[0].Lucro)
		}
	})

	t.Run("supplied profit wins over derivation", func(t *testing.T) {
		csv := "id_transacao,cliente_id,produto_id,valor_total,margem_lucro,lucro\n" +
			"T1,C1,P1,1000,\"0,2\",999"
		records, _ := ParseCSV(csv)
		if records[0].Lucro != 999 {
			t.Errorf("Lucro = %v, want supplied 999", records[0].Lucro)
		}
	})
}

func TestParseCSV_UnmappedColumnsPreserved(t *testing.T) {
	csv := "id_transacao,cliente_id,produto_id,valor_total,canal_origem\n" +
		"T1,C1,P1,100,Instagram"

	records, _ := ParseCSV(csv)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if got := records[0].Extra["canal_origem"]; got != "Instagram" {
		t.Errorf("Extra[canal_origem] = %q, want Instagram", got)
	}
}

func TestParseCSV_EmptyInput(t *testing.T) {
	for _, raw := range []string{"", "\n", "   "} {
		records, stats := ParseCSV(raw)
		if len(records) != 0 || stats.Rows != 0 {
			t.Errorf("ParseCSV(%q) = %d records, want 0", raw, len(records))
		}
	}
}
