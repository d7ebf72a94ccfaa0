package openfoodfacts

import (
	"strings"

	"github.com/FredrikM97/grocery-scan-card/internal/domain"
)

// productResponse is the wire shape of an Open Food Facts product query.
// Status 1 means found; 0 means the barcode is unknown to the database.
type productResponse struct {
	Status        int         `json:"status"`
	StatusVerbose string      `json:"status_verbose"`
	Code          string      `json:"code"`
	Product       wireProduct `json:"product"`
}

type wireProduct struct {
	ProductName string `json:"product_name"`
	Brands      string `json:"brands"`
	Quantity    string `json:"quantity"`
}

// mapProduct normalizes a wire product into the domain model. Records without
// a usable product name are treated as a miss so callers fall back to manual
// entry.
func mapProduct(barcode string, wire *productResponse) (*domain.Product, error) {
	if wire.Status != 1 {
		return nil, domain.ErrProductNotFound
	}

	name := strings.TrimSpace(wire.Product.ProductName)
	if name == "" {
		return nil, domain.ErrProductNotFound
	}

	return &domain.Product{
		Barcode: barcode,
		Name:    name,
		Brand:   primaryBrand(wire.Product.Brands),
		Source:  domain.SourceAPI,
	}, nil
}

// primaryBrand picks the first entry of the comma-separated brands field.
func primaryBrand(brands string) string {
	if brands == "" {
		return ""
	}
	first, _, _ := strings.Cut(brands, ",")
	return strings.TrimSpace(first)
}
