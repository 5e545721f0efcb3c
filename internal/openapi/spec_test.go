package openapi

import (
	"encoding/json"
	"testing"
)

func TestGenerateSpecCoversSurface(t *testing.T) {
	doc := GenerateSpec("http://localhost:3000", "1.2.3")

	if doc.OpenAPI != "3.1.0" {
		t.Errorf("openapi version = %q", doc.OpenAPI)
	}
	if doc.Info.Version != "1.2.3" {
		t.Errorf("info version = %q", doc.Info.Version)
	}

	wantPaths := []string{
		"/create",
		"/cekapi",
		"/user/save",
		"/admin/register",
		"/admin/login",
		"/admin/dashboard",
	}
	for _, p := range wantPaths {
		if doc.Paths.Find(p) == nil {
			t.Errorf("missing path %s", p)
		}
	}
	if n := doc.Paths.Len(); n != len(wantPaths) {
		t.Errorf("path count = %d, want %d", n, len(wantPaths))
	}

	// Dashboard is the only GET; key endpoints are POST.
	if doc.Paths.Find("/admin/dashboard").Get == nil {
		t.Error("dashboard should be GET")
	}
	if doc.Paths.Find("/create").Post == nil {
		t.Error("create should be POST")
	}

	check := doc.Paths.Find("/cekapi").Post
	if check.RequestBody == nil {
		t.Fatal("cekapi should declare a request body")
	}
	if check.Responses.Value("401") == nil {
		t.Error("cekapi should declare a 401 response")
	}
}

func TestGenerateSpecSerializes(t *testing.T) {
	doc := GenerateSpec("http://localhost:3000", "dev")

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var round map[string]interface{}
	if err := json.Unmarshal(data, &round); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := round["paths"]; !ok {
		t.Error("serialized document has no paths")
	}
}
