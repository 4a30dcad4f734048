package sellerlegend

import "context"

// ConnectionsService reports Amazon marketplace connection health.
type ConnectionsService struct {
	client *Client
}

// List returns the connection status for the selected accounts.
func (s *ConnectionsService) List(ctx context.Context, account AccountFilter) (map[string]any, error) {
	if err := account.validate(); err != nil {
		return nil, err
	}
	params := map[string]any{}
	account.apply(params)
	return s.client.Get(ctx, "connections/list", params)
}
