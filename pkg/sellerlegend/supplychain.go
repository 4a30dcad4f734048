package sellerlegend

import "context"

// SupplyChainService handles restocking endpoints.
type SupplyChainService struct {
	client *Client
}

// RestockSuggestionsOptions filters the restock suggestions listing.
type RestockSuggestionsOptions struct {
	PerPage  int
	Currency string
	AccountFilter
}

// RestockSuggestions returns restock suggestions for products.
func (s *SupplyChainService) RestockSuggestions(ctx context.Context, opts RestockSuggestionsOptions) (map[string]any, error) {
	perPage, err := validatePerPage(opts.PerPage)
	if err != nil {
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
	if currency != "" {
		params["currency"] = currency
	}
	opts.AccountFilter.apply(params)
	return s.client.Get(ctx, "supply-chain/restock-suggestions", params)
}
