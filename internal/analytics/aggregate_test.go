package analytics

import (
	"fmt"
	"math"
	"testing"

	"hanami-dashboard/internal/models"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestSummarize(t *testing.T) {
	records := []models.SalesRecord{
		{ClienteID: "C1", ValorTotal: 100, Lucro: 20, AvaliacaoProduto: 0},
		{ClienteID: "C2", ValorTotal: 200, Lucro: 30, AvaliacaoProduto: 4},
		{ClienteID: "C1", ValorTotal: 300, Lucro: 50, AvaliacaoProduto: 5},
	}

	kpi := Summarize(records)

	if kpi.TotalVendas != len(records) {
		t.Errorf("TotalVendas = %d, want %d", kpi.TotalVendas, len(records))
	}
	if !almostEqual(kpi.FaturamentoTotal, 600) {
		t.Errorf("FaturamentoTotal = %v, want 600", kpi.FaturamentoTotal)
	}
	if !almostEqual(kpi.LucroTotal, 100) {
		t.Errorf("LucroTotal = %v, want 100", kpi.LucroTotal)
	}
	if kpi.ClientesUnicos != 2 {
		t.Errorf("ClientesUnicos = %d, want 2", kpi.ClientesUnicos)
	}
	if !almostEqual(kpi.TicketMedio, 200) {
		t.Errorf("TicketMedio = %v, want 600/3 = 200", kpi.TicketMedio)
	}
	// The zero rating is excluded, not averaged in.
	if !almostEqual(kpi.AvaliacaoMedia, 4.5) {
		t.Errorf("AvaliacaoMedia = %v, want 4.5", kpi.AvaliacaoMedia)
	}
}

func TestSummarize_Empty(t *testing.T) {
	kpi := Summarize(nil)
	if kpi != (models.KPISummary{}) {
		t.Errorf("Summarize(nil) = %+v, want all zeros", kpi)
	}
}

func TestMonthlySales_MixedDateFormats(t *testing.T) {
	records := []models.SalesRecord{
		{DataVenda: "15/01/2024", ValorTotal: 100, Lucro: 10},
		{DataVenda: "2024-01-20", ValorTotal: 200, Lucro: 20},
		{DataVenda: "05/02/2024", ValorTotal: 50, Lucro: 5},
		{DataVenda: "not-a-date", ValorTotal: 999},
		{DataVenda: ""},
	}

	out := MonthlySales(records)
	if len(out) != 2 {
		t.Fatalf("expected 2 months, got %d: %+v", len(out), out)
	}

	jan := out[0]
	if jan.Mes != "2024-01" || jan.Name != "Jan/2024" {
		t.Errorf("first bucket = %q/%q, want 2024-01/Jan/2024", jan.Mes, jan.Name)
	}
	if !almostEqual(jan.Faturamento, 300) {
		t.Errorf("Jan faturamento = %v, want 300 (both formats in one bucket)", jan.Faturamento)
	}
	if jan.Vendas != 2 {
		t.Errorf("Jan vendas = %d, want 2", jan.Vendas)
	}

	if out[1].Name != "Fev/2024" {
		t.Errorf("second bucket = %q, want Fev/2024", out[1].Name)
	}
}

func TestMonthlySales_Rounding(t *testing.T) {
	records := []models.SalesRecord{
		{DataVenda: "2024-03-01", ValorTotal: 10.006, Lucro: 1.2},
	}
	out := MonthlySales(records)
	if len(out) != 1 {
		t.Fatalf("expected 1 month, got %d", len(out))
	}
	if out[0].Faturamento != 10.01 {
		t.Errorf("Faturamento = %v, want 10.01", out[0].Faturamento)
	}
}

func TestSalesByCategory(t *testing.T) {
	records := []models.SalesRecord{
		{CategoriaProduto: "Eletrônicos", ValorTotal: 100},
		{CategoriaProduto: "", ValorTotal: 40},
		{CategoriaProduto: "Livros", ValorTotal: 300},
		{CategoriaProduto: "Eletrônicos", ValorTotal: 150},
	}

	out := SalesByCategory(records)
	if len(out) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(out))
	}
	if out[0].Name != "Livros" || out[1].Name != "Eletrônicos" {
		t.Errorf("order = %q,%q, want Livros,Eletrônicos", out[0].Name, out[1].Name)
	}
	if out[2].Name != "Desconhecido" || !almostEqual(out[2].Value, 40) {
		t.Errorf("missing category bucket = %+v, want Desconhecido/40", out[2])
	}
}

func TestTopProducts_TruncationAndTies(t *testing.T) {
	records := make([]models.SalesRecord, 0, 15)
	for i := 1; i <= 15; i++ {
		records = append(records, models.SalesRecord{
			ProdutoID:   fmt.Sprintf("P%02d", i),
			NomeProduto: fmt.Sprintf("Produto %02d", i),
			Quantidade:  1, // all tied
			ValorTotal:  float64(i * 10),
		})
	}

	out := TopProducts(records, TopLimit)
	if len(out) != 10 {
		t.Fatalf("expected exactly 10 entries, got %d", len(out))
	}
	// Ties keep first-seen order.
	for i := 0; i < 10; i++ {
		want := fmt.Sprintf("Produto %02d", i+1)
		if out[i].Name != want {
			t.Errorf("entry %d = %q, want %q (stable tie order)", i, out[i].Name, want)
		}
	}
}

func TestTopProducts_MissingQuantityCountsAsOne(t *testing.T) {
	records := []models.SalesRecord{
		{ProdutoID: "P1", NomeProduto: "A"},
		{ProdutoID: "P1", NomeProduto: "A"},
		{ProdutoID: "P2", NomeProduto: "B", Quantidade: 1},
	}
	out := TopProducts(records, TopLimit)
	if out[0].Name != "A" || out[0].Quantidade != 2 {
		t.Errorf("top = %+v, want A with quantity 2", out[0])
	}
}

func TestCustomersByGender(t *testing.T) {
	records := []models.SalesRecord{
		{GeneroCliente: "M", ValorTotal: 100},
		{GeneroCliente: "F", ValorTotal: 200},
		{GeneroCliente: "f", ValorTotal: 50},
		{GeneroCliente: "X", ValorTotal: 10},
		{GeneroCliente: "", ValorTotal: 5},
	}

	byCount := CustomersByGender(records, ByCount)
	got := map[string]float64{}
	for _, p := range byCount {
		got[p.Name] = p.Value
	}
	if got["Masculino"] != 1 || got["Feminino"] != 2 || got["Outro"] != 2 {
		t.Errorf("count flavor = %v, want M:1 F:2 Outro:2", got)
	}

	byRevenue := CustomersByGender(records, ByRevenue)
	got = map[string]float64{}
	for _, p := range byRevenue {
		got[p.Name] = p.Value
	}
	if !almostEqual(got["Feminino"], 250) {
		t.Errorf("revenue flavor Feminino = %v, want 250", got["Feminino"])
	}
}

func TestSalesByState_LimitAsymmetry(t *testing.T) {
	records := make([]models.SalesRecord, 0, 12)
	for i := 1; i <= 12; i++ {
		records = append(records, models.SalesRecord{
			EstadoCliente: fmt.Sprintf("UF%02d", i),
			ValorTotal:    float64(i),
		})
	}

	if got := SalesByState(records, TopLimit); len(got) != 10 {
		t.Errorf("limited path returned %d states, want 10", len(got))
	}
	if got := SalesByState(records, 0); len(got) != 12 {
		t.Errorf("unlimited path returned %d states, want 12", len(got))
	}

	out := SalesByState(records, TopLimit)
	if out[0].Name != "UF12" {
		t.Errorf("top state = %q, want UF12 (descending by revenue)", out[0].Name)
	}
}

func TestPaymentMethods(t *testing.T) {
	records := []models.SalesRecord{
		{FormaPagamento: "Pix", ValorTotal: 100},
		{FormaPagamento: "Pix", ValorTotal: 300},
		{FormaPagamento: "Cartão", ValorTotal: 50},
	}

	out := PaymentMethods(records)
	if len(out) != 2 {
		t.Fatalf("expected 2 methods, got %d", len(out))
	}
	pix := out[0]
	if pix.Name != "Pix" || pix.Quantidade != 2 {
		t.Fatalf("first method = %+v, want Pix with 2 uses", pix)
	}
	if !almostEqual(pix.Faturamento, 400) {
		t.Errorf("Pix faturamento = %v, want 400", pix.Faturamento)
	}
	if !almostEqual(pix.ValorMedio, 200) {
		t.Errorf("Pix valor médio = %v, want 200", pix.ValorMedio)
	}
}

func TestCustomersByAge(t *testing.T) {
	records := []models.SalesRecord{
		{IdadeCliente: 22, ValorTotal: 100},
		{IdadeCliente: 30, ValorTotal: 200},
		{IdadeCliente: 60, ValorTotal: 300},
		{IdadeCliente: 0, ValorTotal: 999}, // no age, ignored
	}

	out := CustomersByAge(records, ByRevenue)
	if len(out) != 3 {
		t.Fatalf("expected 3 populated brackets, got %d: %+v", len(out), out)
	}
	// Empty brackets (36-45, 46-55) are omitted; the rest keep bin order.
	wantNames := []string{"18-25", "26-35", "56+"}
	for i, want := range wantNames {
		if out[i].Name != want {
			t.Errorf("bracket %d = %q, want %q", i, out[i].Name, want)
		}
	}
	if !almostEqual(out[2].Value, 300) {
		t.Errorf("56+ value = %v, want 300", out[2].Value)
	}
}

func TestInstallments(t *testing.T) {
	records := []models.SalesRecord{
		{Parcelas: 3},
		{Parcelas: 1},
		{Parcelas: 3},
		{Parcelas: 12},
		{Parcelas: 0}, // missing means single payment
	}

	out := Installments(records)
	wantNames := []string{"1x", "3x", "12x"}
	wantValues := []float64{2, 2, 1}
	if len(out) != len(wantNames) {
		t.Fatalf("expected %d entries, got %d: %+v", len(wantNames), len(out), out)
	}
	for i := range wantNames {
		if out[i].Name != wantNames[i] || out[i].Value != wantValues[i] {
			t.Errorf("entry %d = %+v, want %s=%v (numeric ascending)", i, out[i], wantNames[i], wantValues[i])
		}
	}
}

func TestDeliveryStatus(t *testing.T) {
	records := []models.SalesRecord{
		{StatusEntrega: "Entregue", ValorTotal: 100},
		{StatusEntrega: "Entregue", ValorTotal: 50},
		{StatusEntrega: "", ValorTotal: 25},
	}

	out := DeliveryStatus(records, ByCount)
	if len(out) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(out))
	}
	if out[0].Name != "Entregue" || out[0].Value != 2 {
		t.Errorf("first status = %+v, want Entregue=2", out[0])
	}
	if out[1].Name != "Desconhecido" {
		t.Errorf("missing status bucket = %q, want Desconhecido", out[1].Name)
	}
}

func TestProductRatings_WorstFirst(t *testing.T) {
	records := []models.SalesRecord{
		{ProdutoID: "P1", NomeProduto: "Bom", AvaliacaoProduto: 5},
		{ProdutoID: "P2", NomeProduto: "Ruim", AvaliacaoProduto: 1},
		{ProdutoID: "P2", NomeProduto: "Ruim", AvaliacaoProduto: 2},
		{ProdutoID: "P3", NomeProduto: "Sem nota", AvaliacaoProduto: 0},
	}

	out := ProductRatings(records, TopLimit)
	if len(out) != 2 {
		t.Fatalf("expected 2 rated products, got %d (unrated must be excluded)", len(out))
	}
	if out[0].Name != "Ruim" {
		t.Errorf("first = %q, want Ruim (ascending, worst first)", out[0].Name)
	}
	if !almostEqual(out[0].Avaliacao, 1.5) {
		t.Errorf("Ruim mean = %v, want 1.5", out[0].Avaliacao)
	}
	if out[0].Count != 2 {
		t.Errorf("Ruim count = %d, want 2", out[0].Count)
	}
}

func TestAverageDeliveryTime(t *testing.T) {
	records := []models.SalesRecord{
		{TempoEntregaDias: 4},
		{TempoEntregaDias: 8},
		{TempoEntregaDias: 0}, // unknown, excluded
	}

	out := AverageDeliveryTime(records)
	if !almostEqual(out.TempoMedio, 6) {
		t.Errorf("TempoMedio = %v, want 6", out.TempoMedio)
	}

	if empty := AverageDeliveryTime(nil); empty.TempoMedio != 0 {
		t.Errorf("empty collection = %v, want 0", empty.TempoMedio)
	}
}

func TestAggregations_EmptyInput(t *testing.T) {
	if out := MonthlySales(nil); len(out) != 0 {
		t.Errorf("MonthlySales(nil) = %v, want empty", out)
	}
	if out := SalesByCategory(nil); len(out) != 0 {
		t.Errorf("SalesByCategory(nil) = %v, want empty", out)
	}
	if out := TopProducts(nil, TopLimit); len(out) != 0 {
		t.Errorf("TopProducts(nil) = %v, want empty", out)
	}
	if out := ProductRatings(nil, TopLimit); len(out) != 0 {
		t.Errorf("ProductRatings(nil) = %v, want empty", out)
	}
	if out := Installments(nil); len(out) != 0 {
		t.Errorf("Installments(nil) = %v, want empty", out)
	}
}

func BenchmarkSummarize(b *testing.B) {
	records := make([]models.SalesRecord, 10000)
	for i := range records {
		records[i] = models.SalesRecord{
			ClienteID:        fmt.Sprintf("C%d", i%500),
			ValorTotal:       float64(i%100) * 10,
			Lucro:            float64(i%100) * 2,
			AvaliacaoProduto: float64(i % 6),
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Summarize(records)
	}
}

func BenchmarkMonthlySales(b *testing.B) {
	records := make([]models.SalesRecord, 10000)
	for i := range records {
		records[i] = models.SalesRecord{
			DataVenda:  fmt.Sprintf("2024-%02d-15", i%12+1),
			ValorTotal: float64(i % 100),
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = MonthlySales(records)
	}
}
