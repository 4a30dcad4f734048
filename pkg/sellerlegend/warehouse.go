package sellerlegend

import "context"

// WarehouseService handles warehouse inventory endpoints.
type WarehouseService struct {
	client *Client
}

// WarehouseListOptions filters the warehouse inventory listing.
type WarehouseListOptions struct {
	PerPage int
	AccountFilter
}

// List returns warehouse inventory data.
func (s *WarehouseService) List(ctx context.Context, opts WarehouseListOptions) (map[string]any, error) {
	perPage, err := validatePerPage(opts.PerPage)
	if err != nil {
		return nil, err
	}
	if err := opts.AccountFilter.validate(); err != nil {
		return nil, err
	}

	params := map[string]any{"per_page": perPage}
	opts.AccountFilter.apply(params)
	return s.client.Get(ctx, "warehouse/list", params)
}

// InboundShipmentsOptions filters the inbound shipments listing.
type InboundShipmentsOptions struct {
	PerPage     int
	FilterBy    string // "sku", "asin", or "parent_asin"
	FilterValue string
	AccountFilter
}

// InboundShipments returns inbound shipment data.
func (s *WarehouseService) InboundShipments(ctx context.Context, opts InboundShipmentsOptions) (map[string]any, error) {
	perPage, err := validatePerPage(opts.PerPage)
	if err != nil {
		return nil, err
	}
	if err := validateFilter(opts.FilterBy, opts.FilterValue); err != nil {
		return nil, err
	}
	if err := opts.AccountFilter.validate(); err != nil {
		return nil, err
	}

	params := map[string]any{"per_page": perPage}
	if opts.FilterBy != "" {
		params["filter_by"] = opts.FilterBy
		params["filter_value"] = opts.FilterValue
	}
	opts.AccountFilter.apply(params)
	return s.client.Get(ctx, "warehouse/inbound-shipments", params)
}
