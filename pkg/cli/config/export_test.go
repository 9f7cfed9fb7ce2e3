package config

// NewMatrixForTest creates a Matrix config for testing purposes
func NewMatrixForTest(path string) *Matrix {
	return &Matrix{path: path}
}

// NewCatalogForTest creates a Catalog config for testing purposes
func NewCatalogForTest(path string) *Catalog {
	return &Catalog{path: path}
}
