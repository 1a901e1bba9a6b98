package catalog

type SearchProductsRequest struct {
	ProductIDs []uint `json:"productIds"`
}

type SearchProductsResponse struct {
	Products []ProductDTO `json:"products"`
	NotFound []uint       `json:"notFound"`
}

type ProductDTO struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Origin   string `json:"origin"`
	IsActive bool   `json:"isActive"`
}
