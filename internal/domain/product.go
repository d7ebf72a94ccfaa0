package domain

// ProductSource identifies where a resolved product came from.
type ProductSource string

const (
	SourceAPI    ProductSource = "api"
	SourceManual ProductSource = "manual"
	SourceCache  ProductSource = "cache"
)

// Product is the resolved metadata for a scanned barcode. Immutable once
// resolved; keyed by barcode for caching.
type Product struct {
	Barcode string        `json:"barcode"`
	Name    string        `json:"name"`
	Brand   string        `json:"brand"`
	Source  ProductSource `json:"source"`
}

// ReviewDraft is the editable product draft surfaced during review before an
// item is committed to the list. Barcode is always populated from the scan;
// name and brand start from whatever the lookup found.
type ReviewDraft struct {
	Name    string `json:"name" validate:"required"`
	Brand   string `json:"brand"`
	Barcode string `json:"barcode"`
}

// DraftFromProduct seeds a review draft from a lookup result. A nil product
// (lookup miss) yields a draft with only the barcode filled in.
func DraftFromProduct(product *Product, barcode string) ReviewDraft {
	draft := ReviewDraft{Barcode: barcode}
	if product != nil {
		draft.Name = product.Name
		draft.Brand = product.Brand
		if product.Barcode != "" {
			draft.Barcode = product.Barcode
		}
	}
	return draft
}
