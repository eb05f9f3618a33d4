package autotask

// Filter is one node of the Autotask query expression tree. A leaf carries
// op/field/value (plus the udf flag for user-defined fields); a group carries
// a boolean op and child items. The zero value is not a valid filter.
type Filter struct {
	Op    string   `json:"op"`
	Field string   `json:"field,omitempty"`
	Value any      `json:"value,omitempty"`
	UDF   bool     `json:"udf,omitempty"`
	Items []Filter `json:"items,omitempty"`
}

func Eq(field string, value any) Filter {
	return Filter{Op: "eq", Field: field, Value: value}
}

// EqUDF matches a user-defined field by exact value.
func EqUDF(field string, value any) Filter {
	return Filter{Op: "eq", Field: field, Value: value, UDF: true}
}

func Contains(field string, value any) Filter {
	return Filter{Op: "contains", Field: field, Value: value}
}

func And(items ...Filter) Filter {
	return Filter{Op: "and", Items: items}
}

func Or(items ...Filter) Filter {
	return Filter{Op: "or", Items: items}
}

// queryRequest is the body of an entity query call. Autotask expects the
// filter as a single-element array at the top level.
type queryRequest struct {
	Filter        []Filter `json:"Filter"`
	IncludeFields []string `json:"IncludeFields,omitempty"`
}
