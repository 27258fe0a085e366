package docs

import (
	"strings"
	"testing"
)

func TestSwaggerInfoRegistered(t *testing.T) {
	if SwaggerInfo == nil {
		t.Fatal("swagger info not initialized")
	}
	if SwaggerInfo.Title != "CryptoPulse API" {
		t.Fatalf("unexpected swagger title %q", SwaggerInfo.Title)
	}
	doc := SwaggerInfo.ReadDoc()
	for _, path := range []string{"/api/market", "/api/refresh/{name}", "/widgets/{name}"} {
		if !strings.Contains(doc, path) {
			t.Fatalf("swagger doc missing %s", path)
		}
	}
}
