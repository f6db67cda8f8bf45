package dataset

import "slices"

// AggregateEntities are regional, income-group and historical aggregates that
// appear as entities in the source data but are not countries.
var AggregateEntities = []string{
	"Caribbean",
	"Central Africa",
	"Central African Republic",
	"Central America",
	"Central Asia",
	"Central Europe",
	"Czechoslovakia",
	"Developed Asia",
	"Developed countries",
	"Former Soviet Union",
	"High income",
	"Horn of Africa",
	"Latin America and the Caribbean",
	"Least developed countries",
	"Low income",
	"Lower-middle income",
	"North Africa",
	"Northeast Asia",
	"Northern Europe",
	"South Asia",
	"Southeast Asia",
	"Southern Africa",
	"Southern Europe",
	"Sub-Saharan Africa",
	"Upper-middle income",
	"West Africa",
	"West Asia",
	"Western Europe",
	"World",
	"Yugoslavia",
}

// IsAggregate reports whether entity is a known aggregate.
func IsAggregate(entity string) bool {
	return slices.Contains(AggregateEntities, entity)
}
