package database

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTestSQLInjectionDetectsErrorSignature(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Query().Get("id"), "'") {
			w.Write([]byte("you have an error in your SQL syntax near..."))
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	db := NewDatabaseModule()
	result, err := db.TestSQLInjection(server.URL+"?id=1", "id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Vulnerable {
		t.Fatal("expected the probe to flag the endpoint as vulnerable")
	}
	if len(result.Evidence) == 0 {
		t.Error("expected at least one evidence entry")
	}
}

func TestTestSQLInjectionCleanEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	db := NewDatabaseModule()
	result, err := db.TestSQLInjection(server.URL+"?id=1", "id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Vulnerable {
		t.Fatal("expected a clean endpoint not to be flagged")
	}
}

func TestTestSQLInjectionInvalidURL(t *testing.T) {
	db := NewDatabaseModule()
	if _, err := db.TestSQLInjection("http://example.com/%zz", "id"); err == nil {
		t.Fatal("expected an error for an invalid URL")
	}
}
