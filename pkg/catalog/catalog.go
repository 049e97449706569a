package catalog

// DefaultCategory is a suggested category name offered when a user builds a list.
type DefaultCategory struct {
	Id   int
	Name string
}

// Color is an entry of the palette used to render categories.
type Color struct {
	Id   int
	Name string
	// Value is a hex RGB string, e.g. "#FF0000".
	Value string
}
