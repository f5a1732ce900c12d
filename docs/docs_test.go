package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestSwaggerDocIsRegisteredAndValidJSON(t *testing.T) {
	raw, err := swag.ReadDoc()
	if err != nil {
		t.Fatalf("ReadDoc: %v", err)
	}
	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]any `json:"paths"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("doc is not valid JSON: %v", err)
	}
	if doc.Info.Title != "MediSched API" {
		t.Fatalf("title = %q", doc.Info.Title)
	}
	for _, p := range []string{"/health", "/auth/sign-in", "/api/v1/appointments", "/api/v1/appointments/{id}", "/api/v1/ws"} {
		if _, ok := doc.Paths[p]; !ok {
			t.Fatalf("path %s missing from swagger doc", p)
		}
	}
}
