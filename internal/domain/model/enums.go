package model

// Category is the display category assigned to a project. It is always
// inferred and is one of the four values below.
type Category string

const (
	CategoryWeb  Category = "web"
	CategoryAPI  Category = "api"
	CategoryApp  Category = "app"
	CategoryCode Category = "code"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryWeb, CategoryAPI, CategoryApp, CategoryCode}

// Valid reports whether c is one of the enumerated categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryWeb, CategoryAPI, CategoryApp, CategoryCode:
		return true
	}
	return false
}

// FailureKind classifies why the repository catalog could not be produced.
type FailureKind string

const (
	FailureTimeout   FailureKind = "timeout"
	FailureNetwork   FailureKind = "network"
	FailureHTTP      FailureKind = "http"
	FailureMalformed FailureKind = "malformed"
	FailureNoData    FailureKind = "no_data"
)
