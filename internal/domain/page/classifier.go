package page

import "regexp"

// Category identifies the kind of page a URL points at.
type Category string

const (
	// CategoryReview is a dedicated product-review listing page.
	CategoryReview Category = "review"
	// CategoryProduct is a product detail page.
	CategoryProduct Category = "product"
	// CategoryOther covers everything else; it is not a failure.
	CategoryOther Category = "other"
)

// Info is the classification result for a single URL.
type Info struct {
	Category  Category `json:"category"`
	ProductID string   `json:"productId,omitempty"`
}

var (
	// Product identifiers are exactly 10 uppercase alphanumerics (ASIN style).
	reviewPagePattern  = regexp.MustCompile(`/product-reviews/([A-Z0-9]{10})(?:[/?#]|$)`)
	productPagePattern = regexp.MustCompile(`/dp/([A-Z0-9]{10})(?:[/?#]|$)`)
)

// Classify maps a raw URL to its page category and embedded product id.
// It is pure and total: malformed input falls through to CategoryOther.
// The review pattern is checked before the product pattern because a
// review-page URL can also contain a /dp/ segment.
func Classify(rawURL string) Info {
	if m := reviewPagePattern.FindStringSubmatch(rawURL); m != nil {
		return Info{Category: CategoryReview, ProductID: m[1]}
	}
	if m := productPagePattern.FindStringSubmatch(rawURL); m != nil {
		return Info{Category: CategoryProduct, ProductID: m[1]}
	}
	return Info{Category: CategoryOther}
}
