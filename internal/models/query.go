package models

// PropertyQuery is the structured predicate pushed down to the property
// store. Zero values mean "no restriction".
type PropertyQuery struct {
	ActiveStatus int
	Categories   []int
	Region       string
	TypeID       int
}
