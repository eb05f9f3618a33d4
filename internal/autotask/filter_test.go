package autotask

import (
	"encoding/json"
	"testing"
)

func TestFilterLeafSerialization(t *testing.T) {
	tests := []struct {
		name     string
		filter   Filter
		expected string
	}{
		{
			name:     "eq leaf",
			filter:   Eq("id", 42),
			expected: `{"op":"eq","field":"id","value":42}`,
		},
		{
			name:     "contains leaf",
			filter:   Contains("CompanyName", "Acme"),
			expected: `{"op":"contains","field":"CompanyName","value":"Acme"}`,
		},
		{
			name:     "udf leaf",
			filter:   EqUDF("Client Abbreviation", "ACME"),
			expected: `{"op":"eq","field":"Client Abbreviation","value":"ACME","udf":true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.filter)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(data) != tt.expected {
				t.Errorf("got %s, want %s", data, tt.expected)
			}
		})
	}
}

func TestFilterGroupSerialization(t *testing.T) {
	f := And(
		Eq("CompanyID", 7),
		Or(
			Contains("ReferenceTitle", "fw01"),
			Contains("rmmDeviceAuditHostname", "fw01"),
		),
	)
	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	expected := `{"op":"and","items":[{"op":"eq","field":"CompanyID","value":7},` +
		`{"op":"or","items":[{"op":"contains","field":"ReferenceTitle","value":"fw01"},` +
		`{"op":"contains","field":"rmmDeviceAuditHostname","value":"fw01"}]}]}`
	if string(data) != expected {
		t.Errorf("got %s, want %s", data, expected)
	}
}

func TestQueryRequestWrapsFilterInArray(t *testing.T) {
	data, err := json.Marshal(queryRequest{
		Filter:        []Filter{Eq("id", 1)},
		IncludeFields: []string{"id", "isActive"},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	expected := `{"Filter":[{"op":"eq","field":"id","value":1}],"IncludeFields":["id","isActive"]}`
	if string(data) != expected {
		t.Errorf("got %s, want %s", data, expected)
	}
}
