package services

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"backoffice/internal/apiclient"
)

func newClient(t *testing.T, h http.HandlerFunc) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := apiclient.New(srv.URL, apiclient.NewSession("token"))
	if err != nil {
		t.Fatalf("apiclient.New: %v", err)
	}
	return c
}
