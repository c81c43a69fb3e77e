package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-sheet-storefront/internal/domains/notifications/domain"
)

func TestDispatch_PostsMessage(t *testing.T) {
	var got sendMessageRequest
	var user, pass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/send/message", r.URL.Path)
		user, pass, _ = r.BasicAuth()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"code":"SUCCESS","message":"sent"}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, Path: "/api/", Username: "u", Password: "p", Recipient: "+919876543210"}, srv.Client())
	require.NoError(t, err)
	require.NoError(t, client.Dispatch(context.Background(), domain.Notification{Text: "New Order!"}))
	require.Equal(t, "919876543210@s.whatsapp.net", got.Phone)
	require.Equal(t, "New Order!", got.Message)
	require.Equal(t, "u", user)
	require.Equal(t, "p", pass)
}

func TestDispatch_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"not logged in"}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, Recipient: "1"}, srv.Client())
	require.NoError(t, err)
	err = client.Dispatch(context.Background(), domain.Notification{Text: "x"})
	require.ErrorContains(t, err, "not logged in")

	require.Error(t, client.Dispatch(context.Background(), domain.Notification{}))

	_, err = NewClient(Config{BaseURL: srv.URL}, nil)
	require.Error(t, err)
}
