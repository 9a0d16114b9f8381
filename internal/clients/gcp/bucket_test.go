package gcp

import "testing"

func TestPublicURL(t *testing.T) {
	if got := PublicURL("specimens-bucket", "", "specimens/abc.jpg"); got != "https://storage.googleapis.com/specimens-bucket/specimens/abc.jpg" {
		t.Fatalf("PublicURL(no cdn): got=%q", got)
	}
	if got := PublicURL("specimens-bucket", "cdn.example.com", "specimens/abc.jpg"); got != "https://cdn.example.com/specimens/abc.jpg" {
		t.Fatalf("PublicURL(cdn): got=%q", got)
	}
}

func TestSpecimenKeyAndContentType(t *testing.T) {
	cases := []struct {
		mime    string
		wantKey string
		wantCT  string
	}{
		{"image/png", "specimens/h1.png", "image/png"},
		{"image/jpeg", "specimens/h1.jpg", "image/jpeg"},
		{"", "specimens/h1.jpg", "image/jpeg"},
		{"IMAGE/WEBP", "specimens/h1.webp", "image/webp"},
	}
	for _, tc := range cases {
		key := SpecimenKey("h1", tc.mime)
		if key != tc.wantKey {
			t.Fatalf("SpecimenKey(%q): got=%q want=%q", tc.mime, key, tc.wantKey)
		}
		if ct := ContentTypeForKey(key); ct != tc.wantCT {
			t.Fatalf("ContentTypeForKey(%q): got=%q want=%q", key, ct, tc.wantCT)
		}
	}
}

func TestClientOptions(t *testing.T) {
	if n := len(ClientOptions("")); n != 0 {
		t.Fatalf("ClientOptions(empty): got %d options", n)
	}
	if n := len(ClientOptions(`{"type":"service_account"}`)); n != 1 {
		t.Fatalf("ClientOptions(json): got %d options", n)
	}
	if n := len(ClientOptions("/etc/creds.json")); n != 1 {
		t.Fatalf("ClientOptions(file): got %d options", n)
	}
}
