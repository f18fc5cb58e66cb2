package address

// Address is the constituent's postal address as submitted. Immutable input;
// never mutated after validation.
type Address struct {
	Street     string
	City       string
	RegionCode string
	PostalCode string
}

// Jurisdiction is the resolved geographic unit used to look up
// representation. CellID is the geocoder's census-block-like identifier;
// DistrictCode is empty for at-large and non-voting jurisdictions.
type Jurisdiction struct {
	CellID       string
	RegionCode   string
	DistrictCode string
}
