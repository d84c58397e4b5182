package services

import (
	"testing"
	"time"

	"caravan-share/apiclient"
	"caravan-share/apitest"
)

const (
	testEmail    = "minjun@example.com"
	testPassword = "correct-horse"
)

func newBackend(t *testing.T, opts apitest.Options) (*apitest.Server, *apiclient.Client) {
	t.Helper()
	srv := apitest.NewServer(opts)
	t.Cleanup(srv.Close)

	api, err := apiclient.New(srv.URL, 2*time.Second)
	if err != nil {
		t.Fatalf("apiclient.New: %v", err)
	}
	return srv, api
}

func newStore(t *testing.T, opts apitest.Options, logoutPath string) (*apitest.Server, *SessionStore) {
	t.Helper()
	srv, api := newBackend(t, opts)
	return srv, NewSessionStore(api, logoutPath)
}

func deadClient(t *testing.T) *apiclient.Client {
	t.Helper()
	srv := apitest.NewServer(apitest.Options{})
	base := srv.URL
	srv.Close()

	api, err := apiclient.New(base, time.Second)
	if err != nil {
		t.Fatalf("apiclient.New: %v", err)
	}
	return api
}
