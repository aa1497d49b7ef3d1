package suggestion

import (
	"testing"
)

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"plain", `{"message":"hola guapo"}`, "hola guapo", false},
		{"fenced", "```json\n{\"message\":\"hola\"}\n```", "hola", false},
		{"fenced no lang", "```\n{\"message\":\"hola\"}\n```", "hola", false},
		{"prose around", "Sure! Here it is: {\"message\":\"hey\"} hope it helps", "hey", false},
		{"trailing comma", `{"message":"hey",}`, "hey", false},
		{"single quotes", `{'message': 'hey'}`, "hey", false},
		{"empty", "   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, fail := ParseJSON[Reply](tt.raw)
			if tt.wantErr {
				if fail == nil {
					t.Fatal("expected parse failure")
				}
				if fail.Raw != tt.raw {
					t.Errorf("failure should keep raw text, got %q", fail.Raw)
				}
				return
			}
			if fail != nil {
				t.Fatalf("unexpected failure: %v", fail)
			}
			if got.Message != tt.want {
				t.Errorf("Message = %q, want %q", got.Message, tt.want)
			}
		})
	}
}

func TestParseJSONNotAnObject(t *testing.T) {
	if _, fail := ParseJSON[Reply](`["a","b"]`); fail == nil {
		t.Fatal("array should not decode into a reply")
	}
}
