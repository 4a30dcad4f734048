package sellerlegend

import (
	"context"

	slerrors "github.com/sellerlegend/sellerlegend-go/pkg/errors"
)

// ReportsService handles asynchronous report generation and download.
type ReportsService struct {
	client *Client
}

// ReportRequestOptions configures a report generation request.
type ReportRequestOptions struct {
	ProductSKU      string
	DPSDate         string
	LastUpdatedDate string
	AccountFilter
}

// Request submits a report generation request and returns the report ID.
func (s *ReportsService) Request(ctx context.Context, opts ReportRequestOptions) (map[string]any, error) {
	if err := validateDate(opts.DPSDate, "dps_date"); err != nil {
		return nil, err
	}
	if err := validateDate(opts.LastUpdatedDate, "last_updated_date"); err != nil {
		return nil, err
	}
	if err := opts.AccountFilter.validate(); err != nil {
		return nil, err
	}

	body := map[string]any{}
	if opts.ProductSKU != "" {
		body["product_sku"] = opts.ProductSKU
	}
	if opts.DPSDate != "" {
		body["dps_date"] = opts.DPSDate
	}
	if opts.LastUpdatedDate != "" {
		body["last_updated_date"] = opts.LastUpdatedDate
	}
	opts.AccountFilter.apply(body)
	return s.client.Post(ctx, "reports/request", body, nil)
}

// Status returns the state of a previously requested report.
func (s *ReportsService) Status(ctx context.Context, reportID string, account AccountFilter) (map[string]any, error) {
	if reportID == "" {
		return nil, slerrors.NewValidation("report_id is required")
	}
	if err := account.validate(); err != nil {
		return nil, err
	}
	params := map[string]any{"report_id": reportID}
	account.apply(params)
	return s.client.Get(ctx, "reports/status", params)
}

// Download fetches a completed report.
func (s *ReportsService) Download(ctx context.Context, reportID string, account AccountFilter) (map[string]any, error) {
	if reportID == "" {
		return nil, slerrors.NewValidation("report_id is required")
	}
	if err := account.validate(); err != nil {
		return nil, err
	}
	params := map[string]any{"report_id": reportID}
	account.apply(params)
	return s.client.Get(ctx, "reports/download", params)
}
