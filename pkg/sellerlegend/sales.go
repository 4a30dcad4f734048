package sellerlegend

import (
	"context"

	slerrors "github.com/sellerlegend/sellerlegend-go/pkg/errors"
)

// SalesService handles orders, statistics, and transaction endpoints.
type SalesService struct {
	client *Client
}

// OrdersOptions filters the paginated orders listing.
type OrdersOptions struct {
	PerPage      int
	StartDate    string
	EndDate      string
	SalesChannel string
	AccountFilter
}

// Orders returns paginated orders data.
func (s *SalesService) Orders(ctx context.Context, opts OrdersOptions) (map[string]any, error) {
	perPage, err := validatePerPage(opts.PerPage)
	if err != nil {
		return nil, err
	}
	if err := validateDateRange(opts.StartDate, opts.EndDate); err != nil {
		return nil, err
	}
	if err := validateEnum(opts.SalesChannel, salesChannelChoices, "sales_channel"); err != nil {
		return nil, err
	}
	if err := opts.AccountFilter.validate(); err != nil {
		return nil, err
	}

	params := map[string]any{"per_page": perPage}
	if opts.StartDate != "" {
		params["start_date"] = opts.StartDate
	}
	if opts.EndDate != "" {
		params["end_date"] = opts.EndDate
	}
	if opts.SalesChannel != "" {
		params["sales_channel"] = opts.SalesChannel
	}
	opts.AccountFilter.apply(params)
	return s.client.Get(ctx, "sales/orders", params)
}

// StatisticsOptions configures the statistics dashboard query. ViewBy and
// GroupBy are required.
type StatisticsOptions struct {
	ViewBy    string // "product" or "date"
	GroupBy   string
	PerPage   int
	StartDate string
	EndDate   string
	Currency  string
	AccountFilter
}

// StatisticsDashboard returns dashboard statistics grouped per the options.
func (s *SalesService) StatisticsDashboard(ctx context.Context, opts StatisticsOptions) (map[string]any, error) {
	if opts.ViewBy == "" {
		return nil, slerrors.NewValidation("view_by is required")
	}
	if err := validateEnum(opts.ViewBy, []string{"product", "date"}, "view_by"); err != nil {
		return nil, err
	}
	if opts.GroupBy == "" {
		return nil, slerrors.NewValidation("group_by is required")
	}
	perPage, err := validatePerPage(opts.PerPage)
	if err != nil {
		return nil, err
	}
	if err := validateDateRange(opts.StartDate, opts.EndDate); err != nil {
		return nil, err
	}
	currency, err := validateCurrency(opts.Currency)
	if err != nil {
		return nil, err
	}
	if err := opts.AccountFilter.validate(); err != nil {
		return nil, err
	}

	params := map[string]any{
		"view_by":  opts.ViewBy,
		"group_by": opts.GroupBy,
		"per_page": perPage,
	}
	if opts.StartDate != "" {
		params["start_date"] = opts.StartDate
	}
	if opts.EndDate != "" {
		params["end_date"] = opts.EndDate
	}
	if currency != "" {
		params["currency"] = currency
	}
	opts.AccountFilter.apply(params)
	return s.client.Get(ctx, "sales/statistics-dashboard", params)
}

// PerDayPerProductOptions filters the per-day per-product listing.
type PerDayPerProductOptions struct {
	PerPage      int
	StartDate    string
	EndDate      string
	SalesChannel string
	Currency     string
	AccountFilter
}

// PerDayPerProduct returns per-day per-product sales data.
func (s *SalesService) PerDayPerProduct(ctx context.Context, opts PerDayPerProductOptions) (map[string]any, error) {
	perPage, err := validatePerPage(opts.PerPage)
	if err != nil {
		return nil, err
	}
	if err := validateDateRange(opts.StartDate, opts.EndDate); err != nil {
		return nil, err
	}
	if err := validateEnum(opts.SalesChannel, salesChannelChoices, "sales_channel"); err != nil {
		return nil, err
	}
	currency, err := validateCurrency(opts.Currency)
	if err != nil {
		return nil, err
	}
	if err := opts.AccountFilter.validate(); err != nil {
		return nil, err
	}

	params := map[string]any{"per_page": perPage}
	if opts.StartDate != "" {
		params["start_date"] = opts.StartDate
	}
	if opts.EndDate != "" {
		params["end_date"] = opts.EndDate
	}
	if opts.SalesChannel != "" {
		params["sales_channel"] = opts.SalesChannel
	}
	if currency != "" {
		params["currency"] = currency
	}
	opts.AccountFilter.apply(params)
	return s.client.Get(ctx, "sales/per-day-per-product", params)
}

// TransactionsOptions filters the financial transactions listing.
type TransactionsOptions struct {
	PerPage   int
	StartDate string
	EndDate   string
	AccountFilter
}

// Transactions returns financial transaction data.
func (s *SalesService) Transactions(ctx context.Context, opts TransactionsOptions) (map[string]any, error) {
	perPage, err := validatePerPage(opts.PerPage)
	if err != nil {
		return nil, err
	}
	if err := validateDateRange(opts.StartDate, opts.EndDate); err != nil {
		return nil, err
	}
	if err := opts.AccountFilter.validate(); err != nil {
		return nil, err
	}

	params := map[string]any{"per_page": perPage}
	if opts.StartDate != "" {
		params["start_date"] = opts.StartDate
	}
	if opts.EndDate != "" {
		params["end_date"] = opts.EndDate
	}
	opts.AccountFilter.apply(params)
	return s.client.Get(ctx, "sales/transactions", params)
}
