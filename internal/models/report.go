package models

// Report is the full per-request metric set the dashboard renders: the
// KPI block plus every breakdown series. Nil/empty members mean the
// source had nothing for that metric.
type Report struct {
	KPIs                *KPISummary     `json:"kpis,omitempty"`
	MonthlySales        []MonthlyPoint  `json:"monthly_sales"`
	SalesByCategory     []SeriesPoint   `json:"sales_by_category"`
	TopProducts         []ProductSales  `json:"top_products"`
	CustomersByGender   []SeriesPoint   `json:"customers_by_gender"`
	SalesByState        []SeriesPoint   `json:"sales_by_state"`
	PaymentMethods      []PaymentMethod `json:"payment_methods"`
	CustomersByAge      []SeriesPoint   `json:"customers_by_age"`
	Installments        []SeriesPoint   `json:"installments"`
	DeliveryStatus      []SeriesPoint   `json:"delivery_status"`
	ProductRatings      []ProductRating `json:"product_ratings"`
	AverageDeliveryTime *DeliveryTime   `json:"average_delivery_time,omitempty"`
}
