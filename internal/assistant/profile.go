// Package assistant contains the automated reply pipeline: escalation
// detection, history assembly, prompt building, and reply resolution against
// a text-generation backend.
package assistant

// CatalogueEntry is one product or service offered in generation context.
type CatalogueEntry struct {
	Name        string
	Price       string
	Size        string
	Description string
	IsAvailable bool
}

// BusinessProfile is the read-only business context used to build the system
// instruction. Only entries marked available are surfaced to the model.
type BusinessProfile struct {
	Name           string
	Description    string
	BusinessHours  string
	Location       string
	PaymentMethods string
	DeliveryInfo   string
	Catalogue      []CatalogueEntry
}
