package models

// Region is a municipality or city inside the configured province. The two
// kinds come from separate PSGC endpoints but are presented as one list.
type Region struct {
	Code string     `json:"code"`
	Name string     `json:"name"`
	Kind RegionKind `json:"kind"`
}

// RegionKind distinguishes which PSGC endpoint a region came from. Barangay
// lookups try the municipality endpoint first regardless, so the kind is
// informational.
type RegionKind string

const (
	RegionMunicipality RegionKind = "municipality"
	RegionCity         RegionKind = "city"
)

// Subdivision is a barangay within a region.
type Subdivision struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
