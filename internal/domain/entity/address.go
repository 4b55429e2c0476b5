package entity

// PostalAddress is a shipping or billing address captured by the payment processor.
type PostalAddress struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// IsZero reports whether no field was captured.
func (a *PostalAddress) IsZero() bool {
	return a == nil || *a == PostalAddress{}
}
