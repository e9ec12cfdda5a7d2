package external

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrevoSendEmail(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/smtp/email", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"messageId":"<abc@brevo>"}`))
	}))
	defer srv.Close()

	client := NewBrevoClient(BrevoConfig{APIKey: "secret", BaseURL: srv.URL, SenderEmail: "spa@zenshe.com", SenderName: "ZenShe"})
	id, err := client.SendEmail(context.Background(), Email{
		To:          []Contact{{Email: "amal@example.com", Name: "Amal"}},
		Subject:     "Confirmation",
		HTMLContent: "<p>ok</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "<abc@brevo>", id)

	sender := got["sender"].(map[string]any)
	assert.Equal(t, "spa@zenshe.com", sender["email"])
	assert.Equal(t, "Confirmation", got["subject"])
}

func TestBrevoErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"unauthorized","message":"Key not found"}`))
	}))
	defer srv.Close()

	client := NewBrevoClient(BrevoConfig{APIKey: "bad", BaseURL: srv.URL})
	_, err := client.SendEmail(context.Background(), Email{To: []Contact{{Email: "a@b.c"}}, Subject: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Key not found")
}

func TestBrevoDisabledWithoutKey(t *testing.T) {
	client := NewBrevoClient(BrevoConfig{})
	assert.False(t, client.Enabled())

	id, err := client.SendEmail(context.Background(), Email{To: []Contact{{Email: "a@b.c"}}, Subject: "x"})
	assert.NoError(t, err)
	assert.Empty(t, id)

	_, err = client.SendEmail(context.Background(), Email{Subject: "x"})
	assert.Error(t, err)
}

func TestJotFormFetchForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/241234567890" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`<html><form></form></html>`))
	}))
	defer srv.Close()

	client := NewJotFormClient(JotFormConfig{BaseURL: srv.URL})
	body, err := client.FetchForm(context.Background(), "241234567890")
	require.NoError(t, err)
	assert.Contains(t, string(body), "<form>")

	_, err = client.FetchForm(context.Background(), "missing")
	assert.Error(t, err)

	_, err = client.FetchForm(context.Background(), "")
	assert.Error(t, err)
}
