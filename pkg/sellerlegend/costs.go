package sellerlegend

import (
	"context"

	slerrors "github.com/sellerlegend/sellerlegend-go/pkg/errors"
)

// CostsService handles cost-of-goods endpoints.
type CostsService struct {
	client *Client
}

// CostPeriodsOptions selects the cost periods to read or delete.
type CostPeriodsOptions struct {
	ProductFilter
	AccountFilter
}

func (o CostPeriodsOptions) validate() error {
	if err := o.ProductFilter.validate(); err != nil {
		return err
	}
	return o.AccountFilter.validate()
}

func (o CostPeriodsOptions) params() map[string]any {
	params := map[string]any{}
	o.ProductFilter.apply(params)
	o.AccountFilter.apply(params)
	return params
}

// CostPeriods returns cost periods for the selected products.
func (s *CostsService) CostPeriods(ctx context.Context, opts CostPeriodsOptions) (map[string]any, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return s.client.Get(ctx, "cogs/cost-periods", opts.params())
}

// UpdateCostPeriods creates or updates cost periods. data carries the cost
// period entries and is required.
func (s *CostsService) UpdateCostPeriods(ctx context.Context, data []map[string]any, opts CostPeriodsOptions) (map[string]any, error) {
	if len(data) == 0 {
		return nil, slerrors.NewValidation("data is required for updating cost periods")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	body := opts.params()
	body["data"] = data
	return s.client.Post(ctx, "cogs/cost-periods", body, nil)
}

// DeleteCostPeriods deletes cost periods for the selected products.
func (s *CostsService) DeleteCostPeriods(ctx context.Context, opts CostPeriodsOptions) (map[string]any, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return s.client.Delete(ctx, "cogs/cost-periods", opts.params())
}
