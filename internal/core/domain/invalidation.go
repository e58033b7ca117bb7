package domain

// InvalidationEvent describes which cached surfaces a mutation touched.
// Product covers the public listing surfaces (latest, categories and
// every per-category listing), Admin covers the admin listing, and a
// non-empty ProductID additionally targets that item's detail entry.
type InvalidationEvent struct {
	Product   bool
	Admin     bool
	ProductID string
}
