package sellerlegend

import "context"

// InventoryService handles inventory endpoints.
type InventoryService struct {
	client *Client
}

// InventoryListOptions filters the inventory listing with velocity windows.
type InventoryListOptions struct {
	PerPage           int
	VelocityStartDate string
	VelocityEndDate   string
	FilterBy          string // "sku", "asin", or "parent_asin"
	FilterValue       string
	AccountFilter
}

// List returns inventory data with velocity calculations.
func (s *InventoryService) List(ctx context.Context, opts InventoryListOptions) (map[string]any, error) {
	perPage, err := validatePerPage(opts.PerPage)
	if err != nil {
		return nil, err
	}
	if err := validateDate(opts.VelocityStartDate, "velocity_start_date"); err != nil {
		return nil, err
	}
	if err := validateDate(opts.VelocityEndDate, "velocity_end_date"); err != nil {
		return nil, err
	}
	if err := validateFilter(opts.FilterBy, opts.FilterValue); err != nil {
		return nil, err
	}
	if err := opts.AccountFilter.validate(); err != nil {
		return nil, err
	}

	params := map[string]any{"per_page": perPage}
	if opts.VelocityStartDate != "" {
		params["velocity_start_date"] = opts.VelocityStartDate
	}
	if opts.VelocityEndDate != "" {
		params["velocity_end_date"] = opts.VelocityEndDate
	}
	if opts.FilterBy != "" {
		params["filter_by"] = opts.FilterBy
		params["filter_value"] = opts.FilterValue
	}
	opts.AccountFilter.apply(params)
	return s.client.Get(ctx, "inventory/list", params)
}
