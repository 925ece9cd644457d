package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

// Products reads the product catalog.
type Products interface {
	Get(ctx context.Context, productURL string) (*domain.Product, error)
	ListAll(ctx context.Context) ([]domain.Product, error)
}

// ProductHandler serves the catalog endpoints.
type ProductHandler struct {
	products Products
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(p Products) *ProductHandler {
	return &ProductHandler{products: p}
}

// ListProductsInput optionally selects one product by URL.
type ListProductsInput struct {
	ProductURL string `query:"product_url" doc:"Return only this product"`
}

// ListProductsOutput is the catalog, or the one selected product.
type ListProductsOutput struct {
	Body struct {
		Products []domain.Product `json:"products"`
	}
}

// ListProducts returns every catalog product, or only the one at
// product_url (404 when unknown).
func (h *ProductHandler) ListProducts(ctx context.Context, input *ListProductsInput) (*ListProductsOutput, error) {
	resp := &ListProductsOutput{}

	if input.ProductURL != "" {
		p, err := h.products.Get(ctx, input.ProductURL)
		if err != nil {
			return nil, apiError("getting product", err)
		}
		resp.Body.Products = []domain.Product{*p}
		return resp, nil
	}

	products, err := h.products.ListAll(ctx)
	if err != nil {
		return nil, apiError("listing products", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	resp.Body.Products = products
	return resp, nil
}

// RegisterProductRoutes registers the catalog endpoints.
func RegisterProductRoutes(api huma.API, h *ProductHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-products",
		Method:      http.MethodGet,
		Path:        "/api/v1/products",
		Summary:     "List catalog products",
		Description: "Returns each product's canonical URL, title and latest observed price.",
		Tags:        []string{"products"},
		Errors:      []int{http.StatusNotFound, http.StatusInternalServerError},
	}, h.ListProducts)
}
