package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"potracker/internal/service"
)

type tokenRequest struct {
	Grant        string `json:"grant"` // "code" or "refresh"
	Code         string `json:"code,omitempty"`
	RedirectURI  string `json:"redirect_uri,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	SenderEmail  string `json:"sender_email,omitempty"`
	SenderName   string `json:"sender_name,omitempty"`
}

// TokenHandler exchanges or refreshes a provider token and installs the
// resulting access token as the mailer's OAuth transport.
func TokenHandler(oauth *service.OAuthClient, mailer *service.Mailer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var token *service.TokenResponse
		var err error
		switch req.Grant {
		case "code":
			token, err = oauth.ExchangeCode(r.Context(), req.Code, req.RedirectURI)
		case "refresh":
			token, err = oauth.RefreshToken(r.Context(), req.RefreshToken)
		default:
			http.Error(w, "grant must be code or refresh", http.StatusBadRequest)
			return
		}
		if err != nil {
			slog.Error("token request failed", "grant", req.Grant, "error", err)
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		if req.SenderEmail != "" {
			mailer.SetOAuth(&service.OAuthCredentials{
				AccessToken: token.AccessToken,
				FromEmail:   req.SenderEmail,
				FromName:    req.SenderName,
			})
		}

		writeJSON(w, http.StatusOK, token)
	}
}
