// Package model defines the records that flow through the housing-transit pipeline.
package model

// PropertyTypeARO marks an Affordable Requirements Ordinance unit. These are
// market-rate developments and do not count as affordable housing.
const PropertyTypeARO = "ARO"

// HousingRecord is one affordable-housing address from the housing dataset.
type HousingRecord struct {
	CommunityArea string `csv:"Community Area Name"`
	PropertyType  string `csv:"Property Type"`
	Address       string `csv:"Address"`
}
