package sellerlegend

import (
	"context"

	slerrors "github.com/sellerlegend/sellerlegend-go/pkg/errors"
)

// NotificationsService handles notification endpoints.
type NotificationsService struct {
	client *Client
}

// List returns notifications of the given type.
func (s *NotificationsService) List(ctx context.Context, notificationType string) (map[string]any, error) {
	if notificationType == "" {
		return nil, slerrors.NewValidation("notification_type is required")
	}
	params := map[string]any{"notification_type": notificationType}
	return s.client.Get(ctx, "notifications/list", params)
}
