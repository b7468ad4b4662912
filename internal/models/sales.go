package models

// SalesRecord is one transaction line of the sales dataset. Field names
// follow the canonical column names of the source CSVs; unmapped columns
// survive in Extra so the schema stays open.
type SalesRecord struct {
	IDTransacao      string  `json:"id_transacao"`
	ClienteID        string  `json:"cliente_id"`
	NomeCliente      string  `json:"nome_cliente,omitempty"`
	IdadeCliente     float64 `json:"idade_cliente,omitempty"`
	GeneroCliente    string  `json:"genero_cliente,omitempty"`
	CidadeCliente    string  `json:"cidade_cliente,omitempty"`
	EstadoCliente    string  `json:"estado_cliente,omitempty"`
	RendaEstimada    float64 `json:"renda_estimada,omitempty"`
	ProdutoID        string  `json:"produto_id"`
	NomeProduto      string  `json:"nome_produto,omitempty"`
	CategoriaProduto string  `json:"categoria_produto,omitempty"`
	PrecoUnitario    float64 `json:"preco_unitario,omitempty"`
	CustoProduto     float64 `json:"custo_produto,omitempty"`
	Quantidade       float64 `json:"quantidade,omitempty"`
	DataVenda        string  `json:"data_venda,omitempty"`
	ValorTotal       float64 `json:"valor_total,omitempty"`
	Subtotal         float64 `json:"subtotal,omitempty"`
	Lucro            float64 `json:"lucro,omitempty"`
	MargemLucro      float64 `json:"margem_lucro,omitempty"`
	DescontoAplicado float64 `json:"desconto_aplicado,omitempty"`
	FormaPagamento   string  `json:"forma_pagamento,omitempty"`
	Parcelas         float64 `json:"parcelas,omitempty"`
	StatusEntrega    string  `json:"status_entrega,omitempty"`
	Regiao           string  `json:"regiao,omitempty"`
	TempoEntregaDias float64 `json:"tempo_entrega_dias,omitempty"`
	AvaliacaoProduto float64 `json:"avaliacao_produto,omitempty"`

	Extra map[string]string `json:"extra,omitempty"`
}

// KPISummary holds the six scalar aggregates shown on the overview cards.
type KPISummary struct {
	FaturamentoTotal float64 `json:"faturamento_total"`
	LucroTotal       float64 `json:"lucro_total"`
	TotalVendas      int     `json:"total_vendas"`
	ClientesUnicos   int     `json:"clientes_unicos"`
	TicketMedio      float64 `json:"ticket_medio"`
	AvaliacaoMedia   float64 `json:"avaliacao_media"`
}

// SeriesPoint is the generic name/value chart row.
type SeriesPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// MonthlyPoint is one month of the revenue/profit/count trend. Mes is the
// sortable "2006-01" key, Name the human "Jan/2006" label.
type MonthlyPoint struct {
	Mes         string  `json:"mes"`
	Name        string  `json:"name"`
	Faturamento float64 `json:"faturamento"`
	Lucro       float64 `json:"lucro"`
	Vendas      int     `json:"vendas"`
}

// ProductSales is one entry of the top-products ranking.
type ProductSales struct {
	Name        string  `json:"name"`
	Quantidade  float64 `json:"quantidade"`
	Lucro       float64 `json:"lucro"`
	Faturamento float64 `json:"faturamento"`
}

// PaymentMethod carries both the raw count and the money sums so the
// presentation layer can pick either flavor.
type PaymentMethod struct {
	Name        string  `json:"name"`
	Quantidade  int     `json:"quantidade"`
	Faturamento float64 `json:"faturamento"`
	ValorMedio  float64 `json:"valor_medio"`
}

// ProductRating is one entry of the worst-rated-products ranking.
type ProductRating struct {
	Name      string  `json:"name"`
	Avaliacao float64 `json:"avaliacao"`
	Count     int     `json:"count"`
}

// DeliveryTime is the single-object average-delivery-time response.
type DeliveryTime struct {
	TempoMedio float64 `json:"tempo_medio"`
}
