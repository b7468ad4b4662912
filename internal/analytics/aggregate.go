// Package analytics derives every metric series the dashboard shows from a
// flat collection of sales records. All aggregations are pure functions:
// empty input yields zero KPIs and empty series, never an error.
package analytics

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"hanami-dashboard/internal/models"
)

// Metric selects what a grouped series accumulates. Some charts are shown
// revenue-weighted on the filtered dashboard and count-based on the raw
// one, so the caller picks.
type Metric int

const (
	ByRevenue Metric = iota
	ByCount
)

// TopLimit is the default ranking size for top-N series.
const TopLimit = 10

var monthNames = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// Summarize computes the six KPI scalars over a record collection.
// Ratings of zero mean "not rated" and are excluded from the average,
// not counted as zero.
func Summarize(records []models.SalesRecord) models.KPISummary {
	var kpi models.KPISummary
	if len(records) == 0 {
		return kpi
	}

	customers := make(map[string]struct{})
	var ratingSum float64
	var rated int
	for _, r := range records {
		kpi.FaturamentoTotal += r.ValorTotal
		kpi.LucroTotal += r.Lucro
		if r.ClienteID != "" {
			customers[r.ClienteID] = struct{}{}
		}
		if r.AvaliacaoProduto > 0 {
			ratingSum += r.AvaliacaoProduto
			rated++
		}
	}

	kpi.TotalVendas = len(records)
	kpi.ClientesUnicos = len(customers)
	if kpi.TotalVendas > 0 {
		kpi.TicketMedio = kpi.FaturamentoTotal / float64(kpi.TotalVendas)
	}
	if rated > 0 {
		kpi.AvaliacaoMedia = ratingSum / float64(rated)
	}
	return kpi
}

// MonthlySales groups revenue, profit and sale count by year-month.
// Records whose date cannot be parsed are left out of the trend (they
// still count toward the KPIs). Output is ascending by month.
func MonthlySales(records []models.SalesRecord) []models.MonthlyPoint {
	idx := make(map[string]int)
	out := make([]models.MonthlyPoint, 0)

	for _, r := range records {
		if r.DataVenda == "" {
			continue
		}
		date, ok := ParseSaleDate(r.DataVenda)
		if !ok {
			continue
		}
		key := date.Format("2006-01")
		i, seen := idx[key]
		if !seen {
			i = len(out)
			idx[key] = i
			out = append(out, models.MonthlyPoint{
				Mes:  key,
				Name: monthNames[date.Month()-1] + "/" + strconv.Itoa(date.Year()),
			})
		}
		out[i].Faturamento += r.ValorTotal
		out[i].Lucro += r.Lucro
		out[i].Vendas++
	}

	slices.SortStableFunc(out, func(a, b models.MonthlyPoint) int {
		return strings.Compare(a.Mes, b.Mes)
	})
	for i := range out {
		out[i].Faturamento = round2(out[i].Faturamento)
		out[i].Lucro = round2(out[i].Lucro)
	}
	return out
}

// SalesByCategory sums revenue per product category, descending.
func SalesByCategory(records []models.SalesRecord) []models.SeriesPoint {
	idx := make(map[string]int)
	out := make([]models.SeriesPoint, 0)

	for _, r := range records {
		name := r.CategoriaProduto
		if name == "" {
			name = "Desconhecido"
		}
		i, seen := idx[name]
		if !seen {
			i = len(out)
			idx[name] = i
			out = append(out, models.SeriesPoint{Name: name})
		}
		out[i].Value += r.ValorTotal
	}

	sortDesc(out)
	return out
}

// TopProducts ranks products by units sold, descending, truncated to the
// top limit. Records without a quantity still count as one unit.
func TopProducts(records []models.SalesRecord, limit int) []models.ProductSales {
	idx := make(map[string]int)
	out := make([]models.ProductSales, 0)

	for _, r := range records {
		key := productKey(r)
		i, seen := idx[key]
		if !seen {
			i = len(out)
			idx[key] = i
			name := r.NomeProduto
			if name == "" {
				name = key
			}
			out = append(out, models.ProductSales{Name: name})
		}
		qty := r.Quantidade
		if qty == 0 {
			qty = 1
		}
		out[i].Quantidade += qty
		out[i].Lucro += r.Lucro
		out[i].Faturamento += r.ValorTotal
	}

	slices.SortStableFunc(out, func(a, b models.ProductSales) int {
		switch {
		case a.Quantidade > b.Quantidade:
			return -1
		case a.Quantidade < b.Quantidade:
			return 1
		}
		return 0
	})
	return truncate(out, limit)
}

// CustomersByGender groups by normalized gender. Anything that is not
// masculine or feminine lands in Outro. First-seen order is kept.
func CustomersByGender(records []models.SalesRecord, metric Metric) []models.SeriesPoint {
	idx := make(map[string]int)
	out := make([]models.SeriesPoint, 0)

	for _, r := range records {
		name := normalizeGender(r.GeneroCliente)
		i, seen := idx[name]
		if !seen {
			i = len(out)
			idx[name] = i
			out = append(out, models.SeriesPoint{Name: name})
		}
		out[i].Value += metricValue(r, metric)
	}
	return out
}

// SalesByState sums revenue per customer state, descending. A limit of
// zero returns every state: the unfiltered dashboard shows the top 10,
// the filtered one shows all.
func SalesByState(records []models.SalesRecord, limit int) []models.SeriesPoint {
	idx := make(map[string]int)
	out := make([]models.SeriesPoint, 0)

	for _, r := range records {
		name := r.EstadoCliente
		if name == "" {
			name = "Desconhecido"
		}
		i, seen := idx[name]
		if !seen {
			i = len(out)
			idx[name] = i
			out = append(out, models.SeriesPoint{Name: name})
		}
		out[i].Value += r.ValorTotal
	}

	sortDesc(out)
	return truncate(out, limit)
}

// PaymentMethods accumulates usage count, total revenue and average
// ticket per payment method, descending by usage.
func PaymentMethods(records []models.SalesRecord) []models.PaymentMethod {
	idx := make(map[string]int)
	out := make([]models.PaymentMethod, 0)

	for _, r := range records {
		name := r.FormaPagamento
		if name == "" {
			name = "Desconhecido"
		}
		i, seen := idx[name]
		if !seen {
			i = len(out)
			idx[name] = i
			out = append(out, models.PaymentMethod{Name: name})
		}
		out[i].Quantidade++
		out[i].Faturamento += r.ValorTotal
	}

	for i := range out {
		if out[i].Quantidade > 0 {
			out[i].ValorMedio = out[i].Faturamento / float64(out[i].Quantidade)
		}
	}
	slices.SortStableFunc(out, func(a, b models.PaymentMethod) int {
		return b.Quantidade - a.Quantidade
	})
	return out
}

type ageBracket struct {
	label string
	max   float64
}

var ageBrackets = []ageBracket{
	{"18-25", 25},
	{"26-35", 35},
	{"36-45", 45},
	{"46-55", 55},
	{"56+", math.MaxFloat64},
}

// CustomersByAge buckets customers into fixed age brackets. Records
// without a positive age are ignored; empty brackets are omitted.
func CustomersByAge(records []models.SalesRecord, metric Metric) []models.SeriesPoint {
	sums := make([]float64, len(ageBrackets))
	for _, r := range records {
		if r.IdadeCliente <= 0 {
			continue
		}
		for i, b := range ageBrackets {
			if r.IdadeCliente <= b.max {
				sums[i] += metricValue(r, metric)
				break
			}
		}
	}

	out := make([]models.SeriesPoint, 0, len(ageBrackets))
	for i, b := range ageBrackets {
		if sums[i] > 0 {
			out = append(out, models.SeriesPoint{Name: b.label, Value: sums[i]})
		}
	}
	return out
}

// Installments counts sales per installment plan, ascending by the
// number of parcels. Missing installment counts mean a single payment.
func Installments(records []models.SalesRecord) []models.SeriesPoint {
	idx := make(map[int]int)
	out := make([]models.SeriesPoint, 0)

	for _, r := range records {
		n := int(r.Parcelas)
		if n == 0 {
			n = 1
		}
		i, seen := idx[n]
		if !seen {
			i = len(out)
			idx[n] = i
			out = append(out, models.SeriesPoint{Name: strconv.Itoa(n) + "x"})
		}
		out[i].Value++
	}

	slices.SortStableFunc(out, func(a, b models.SeriesPoint) int {
		return parcelCount(a.Name) - parcelCount(b.Name)
	})
	return out
}

// DeliveryStatus groups by delivery status, first-seen order.
func DeliveryStatus(records []models.SalesRecord, metric Metric) []models.SeriesPoint {
	idx := make(map[string]int)
	out := make([]models.SeriesPoint, 0)

	for _, r := range records {
		name := r.StatusEntrega
		if name == "" {
			name = "Desconhecido"
		}
		i, seen := idx[name]
		if !seen {
			i = len(out)
			idx[name] = i
			out = append(out, models.SeriesPoint{Name: name})
		}
		out[i].Value += metricValue(r, metric)
	}
	return out
}

// ProductRatings computes the mean rating per product over rated sales
// only, ascending so the worst products surface first, truncated to the
// top limit.
func ProductRatings(records []models.SalesRecord, limit int) []models.ProductRating {
	idx := make(map[string]int)
	sums := make([]float64, 0)
	out := make([]models.ProductRating, 0)

	for _, r := range records {
		if r.AvaliacaoProduto <= 0 {
			continue
		}
		key := productKey(r)
		i, seen := idx[key]
		if !seen {
			i = len(out)
			idx[key] = i
			name := r.NomeProduto
			if name == "" {
				name = key
			}
			out = append(out, models.ProductRating{Name: name})
			sums = append(sums, 0)
		}
		sums[i] += r.AvaliacaoProduto
		out[i].Count++
	}

	for i := range out {
		out[i].Avaliacao = sums[i] / float64(out[i].Count)
	}
	slices.SortStableFunc(out, func(a, b models.ProductRating) int {
		switch {
		case a.Avaliacao < b.Avaliacao:
			return -1
		case a.Avaliacao > b.Avaliacao:
			return 1
		}
		return 0
	})
	return truncate(out, limit)
}

// AverageDeliveryTime is the mean of the delivery-days field over records
// where it is positive.
func AverageDeliveryTime(records []models.SalesRecord) models.DeliveryTime {
	var sum float64
	var n int
	for _, r := range records {
		if r.TempoEntregaDias > 0 {
			sum += r.TempoEntregaDias
			n++
		}
	}
	if n == 0 {
		return models.DeliveryTime{}
	}
	return models.DeliveryTime{TempoMedio: sum / float64(n)}
}

func metricValue(r models.SalesRecord, m Metric) float64 {
	if m == ByCount {
		return 1
	}
	return r.ValorTotal
}

func productKey(r models.SalesRecord) string {
	if r.ProdutoID != "" {
		return r.ProdutoID
	}
	if r.NomeProduto != "" {
		return r.NomeProduto
	}
	return "Desconhecido"
}

func normalizeGender(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "M", "MASCULINO":
		return "Masculino"
	case "F", "FEMININO":
		return "Feminino"
	default:
		return "Outro"
	}
}

func parcelCount(label string) int {
	n, _ := strconv.Atoi(strings.TrimSuffix(label, "x"))
	return n
}

func sortDesc(points []models.SeriesPoint) {
	slices.SortStableFunc(points, func(a, b models.SeriesPoint) int {
		switch {
		case a.Value > b.Value:
			return -1
		case a.Value < b.Value:
			return 1
		}
		return 0
	})
}

func truncate[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
