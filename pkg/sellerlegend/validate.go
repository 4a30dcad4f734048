package sellerlegend

import (
	"fmt"
	"strings"
	"time"

	slerrors "github.com/sellerlegend/sellerlegend-go/pkg/errors"
)

// Parameter validation. Everything here fails fast with a validation error
// before any network call is made.

const dateLayout = "2006-01-02"

var (
	perPageChoices      = []int{500, 1000, 2000}
	salesChannelChoices = []string{"amazon", "non-amazon"}
	filterByChoices     = []string{"sku", "asin", "parent_asin"}
	currencyChoices     = []string{
		"USD", "EUR", "GBP", "CAD", "AUD", "JPY", "INR", "CNY",
		"MXN", "BRL", "SEK", "SGD", "AED", "TRY", "PLN", "SAR",
	}
)

func validateDate(value, name string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		return slerrors.NewValidation(fmt.Sprintf("invalid date format for %s, expected YYYY-MM-DD", name))
	}
	return nil
}

func validateDateRange(start, end string) error {
	if err := validateDate(start, "start_date"); err != nil {
		return err
	}
	if err := validateDate(end, "end_date"); err != nil {
		return err
	}
	if start != "" && end != "" && start > end {
		return slerrors.NewValidation("end date must be after or equal to start date")
	}
	return nil
}

func validateEnum(value string, allowed []string, name string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return slerrors.NewValidation(fmt.Sprintf("%s must be one of: %s", name, strings.Join(allowed, ", ")))
}

// validatePerPage applies the default page size and checks membership.
func validatePerPage(value int) (int, error) {
	if value == 0 {
		return 500, nil
	}
	for _, a := range perPageChoices {
		if value == a {
			return value, nil
		}
	}
	return 0, slerrors.NewValidation("per_page must be 500, 1000, or 2000")
}

func validateCurrency(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	upper := strings.ToUpper(value)
	if err := validateEnum(upper, currencyChoices, "currency"); err != nil {
		return "", err
	}
	return upper, nil
}

func validateFilter(filterBy, filterValue string) error {
	if err := validateEnum(filterBy, filterByChoices, "filter_by"); err != nil {
		return err
	}
	if filterBy != "" && filterValue == "" {
		return slerrors.NewValidation("filter_value is required when filter_by is specified")
	}
	return nil
}

// AccountFilter narrows a call to one seller account, by title or by the
// seller/marketplace ID pair.
type AccountFilter struct {
	AccountTitle  string
	SellerID      string
	MarketplaceID string
}

func (f AccountFilter) validate() error {
	if f.MarketplaceID == "" && f.SellerID != "" {
		return slerrors.NewValidation("seller_id requires marketplace_id")
	}
	if f.SellerID == "" && f.MarketplaceID != "" {
		return slerrors.NewValidation("marketplace_id requires seller_id")
	}
	return nil
}

func (f AccountFilter) apply(params map[string]any) {
	if f.AccountTitle != "" {
		params["account_title"] = f.AccountTitle
	}
	if f.SellerID != "" {
		params["seller_id"] = f.SellerID
	}
	if f.MarketplaceID != "" {
		params["marketplace_id"] = f.MarketplaceID
	}
}

// ProductFilter selects a product by exactly one identifier.
type ProductFilter struct {
	SKU        string
	ASIN       string
	ParentASIN string
}

func (f ProductFilter) validate() error {
	set := 0
	for _, v := range []string{f.SKU, f.ASIN, f.ParentASIN} {
		if v != "" {
			set++
		}
	}
	if set > 1 {
		return slerrors.NewValidation("only one product identifier (sku, asin, parent_asin) is allowed")
	}
	if f.ASIN != "" {
		if len(f.ASIN) != 10 {
			return slerrors.NewValidation("asin must be 10 characters")
		}
		if !strings.HasPrefix(f.ASIN, "B") {
			return slerrors.NewValidation("asin must start with B")
		}
	}
	return nil
}

func (f ProductFilter) apply(params map[string]any) {
	if f.SKU != "" {
		params["sku"] = f.SKU
	}
	if f.ASIN != "" {
		params["asin"] = f.ASIN
	}
	if f.ParentASIN != "" {
		params["parent_asin"] = f.ParentASIN
	}
}
