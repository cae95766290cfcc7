package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectTransport(t *testing.T) {
	oauth := &OAuthCredentials{AccessToken: "tok", FromEmail: "seller@x.com"}
	smtpCfg := &SMTPConfig{Host: "smtp.x.com", Port: 587}

	tests := []struct {
		name  string
		oauth *OAuthCredentials
		smtp  *SMTPConfig
		want  string
	}{
		{"oauth wins when both configured", oauth, smtpCfg, TransportOAuth},
		{"oauth alone", oauth, nil, TransportOAuth},
		{"smtp fallback", nil, smtpCfg, TransportSMTP},
		{"oauth without sender falls through", &OAuthCredentials{AccessToken: "tok"}, smtpCfg, TransportSMTP},
		{"oauth without token falls through", &OAuthCredentials{FromEmail: "seller@x.com"}, smtpCfg, TransportSMTP},
		{"nothing configured", nil, nil, TransportNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectTransport(tt.oauth, tt.smtp))
		})
	}
}

func TestMailer_Send_NoTransport(t *testing.T) {
	m := NewMailer("http://unused")

	_, err := m.Send(context.Background(), Message{To: "a@x.com"})
	assert.ErrorIs(t, err, ErrNoTransport)
}

func TestMailer_SendViaOAuth(t *testing.T) {
	var gotAuth string
	var gotRaw []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/gmail/v1/users/me/messages/send", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		var payload struct {
			Raw string `json:"raw"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		var err error
		gotRaw, err = base64.URLEncoding.DecodeString(payload.Raw)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg-123"}`))
	}))
	defer srv.Close()

	m := NewMailer(srv.URL)
	creds := OAuthCredentials{AccessToken: "tok", FromEmail: "seller@x.com", FromName: "Seller"}
	msg := Message{
		To: "a@x.com", ToName: "Alice", Subject: "Your invoice", HTML: "<p>hi</p>",
		Attachments: []Attachment{{Filename: "qr.png", Content: []byte{1, 2, 3}, ContentType: "image/png", CID: "abc@potracker"}},
	}

	id, err := m.SendViaOAuth(context.Background(), creds, msg)
	require.NoError(t, err)
	assert.Equal(t, "msg-123", id)
	assert.Equal(t, "Bearer tok", gotAuth)

	raw := string(gotRaw)
	assert.Contains(t, raw, "From: Seller <seller@x.com>")
	assert.Contains(t, raw, "To: Alice <a@x.com>")
	assert.Contains(t, raw, "Subject: Your invoice")
	assert.Contains(t, raw, "Content-ID: <abc@potracker>")
	assert.Contains(t, raw, "<p>hi</p>")
}

func TestMailer_SendViaOAuth_SurfacesProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid grant", http.StatusUnauthorized)
	}))
	defer srv.Close()

	m := NewMailer(srv.URL)
	_, err := m.SendViaOAuth(context.Background(), OAuthCredentials{AccessToken: "bad", FromEmail: "s@x.com"}, Message{To: "a@x.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid grant")
}

func TestMailer_SendViaSMTP(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	m := NewMailer("http://unused")
	m.smtpSend = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	cfg := SMTPConfig{Host: "smtp.x.com", Port: 587, Username: "u", Password: "p", FromEmail: "seller@x.com", FromName: "Seller"}
	id, err := m.SendViaSMTP(context.Background(), cfg, Message{To: "a@x.com", ToName: "Alice", Subject: "Hi", HTML: "<p>hi</p>"})
	require.NoError(t, err)

	assert.NotEmpty(t, id)
	assert.Equal(t, "smtp.x.com:587", gotAddr)
	assert.Equal(t, "seller@x.com", gotFrom)
	assert.Equal(t, []string{"a@x.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Hi")
	assert.Contains(t, string(gotMsg), "multipart/related")
}
