package linkshub

// Doctor, Product and Relation are passed through to API clients as-is;
// the service only reads the fields declared on the typed helpers.
type Doctor map[string]any

type Product map[string]any

// Relation is the body of GET /api/v1/doctors/{d}/labs/{l}/relation.
type Relation struct {
	IsActive bool `json:"is_active"`
}
