package sellerlegend

import "context"

// UserService handles user and account endpoints.
type UserService struct {
	client *Client
}

// Me returns the authenticated user's profile.
func (s *UserService) Me(ctx context.Context) (map[string]any, error) {
	return s.client.Get(ctx, "user/me", nil)
}

// Accounts returns the seller accounts visible to the authenticated user.
func (s *UserService) Accounts(ctx context.Context) (map[string]any, error) {
	return s.client.Get(ctx, "user/accounts", nil)
}
