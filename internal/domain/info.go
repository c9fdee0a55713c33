package domain

// ProductInfo — снимок данных товара на момент добавления в продажу.
type ProductInfo struct {
	ID          string
	Name        string
	Description string
}

// CustomerInfo — снимок данных покупателя.
type CustomerInfo struct {
	ID   string
	Name string
}

// BranchInfo — снимок данных филиала, где оформлена продажа.
type BranchInfo struct {
	ID   string
	Name string
}
