package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"potracker/internal/service"
)

type wireAttachment struct {
	Filename    string `json:"filename"`
	Content     string `json:"content"`
	Encoding    string `json:"encoding"`
	CID         string `json:"cid"`
	ContentType string `json:"contentType"`
}

type sendEmailRequest struct {
	Type  string          `json:"type"`
	Auth  json.RawMessage `json:"auth"`
	Email struct {
		From        string           `json:"from"`
		FromName    string           `json:"from_name"`
		To          string           `json:"to"`
		ToName      string           `json:"to_name"`
		Subject     string           `json:"subject"`
		HTML        string           `json:"html"`
		Attachments []wireAttachment `json:"attachments"`
	} `json:"email"`
}

type sendEmailResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SendEmailHandler exposes the dispatcher as a standalone relay: credentials
// travel with the request, one delivery attempt is made, and the provider's
// raw error text is surfaced on failure.
func SendEmailHandler(mailer *service.Mailer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendEmailRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, sendEmailResponse{Error: "invalid json"})
			return
		}

		msg := service.Message{
			From:     req.Email.From,
			FromName: req.Email.FromName,
			To:       req.Email.To,
			ToName:   req.Email.ToName,
			Subject:  req.Email.Subject,
			HTML:     req.Email.HTML,
		}
		for _, att := range req.Email.Attachments {
			content, err := base64.StdEncoding.DecodeString(att.Content)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, sendEmailResponse{Error: "attachment content must be base64"})
				return
			}
			msg.Attachments = append(msg.Attachments, service.Attachment{
				Filename:    att.Filename,
				Content:     content,
				ContentType: att.ContentType,
				CID:         att.CID,
			})
		}

		var messageID string
		switch req.Type {
		case service.TransportOAuth:
			var creds service.OAuthCredentials
			if err := json.Unmarshal(req.Auth, &creds); err != nil {
				writeJSON(w, http.StatusBadRequest, sendEmailResponse{Error: "invalid oauth credentials"})
				return
			}
			var err error
			messageID, err = mailer.SendViaOAuth(r.Context(), creds, msg)
			if err != nil {
				writeJSON(w, http.StatusBadGateway, sendEmailResponse{Error: err.Error()})
				return
			}
		case service.TransportSMTP:
			var cfg service.SMTPConfig
			if err := json.Unmarshal(req.Auth, &cfg); err != nil {
				writeJSON(w, http.StatusBadRequest, sendEmailResponse{Error: "invalid smtp config"})
				return
			}
			var err error
			messageID, err = mailer.SendViaSMTP(r.Context(), cfg, msg)
			if err != nil {
				writeJSON(w, http.StatusBadGateway, sendEmailResponse{Error: err.Error()})
				return
			}
		default:
			writeJSON(w, http.StatusBadRequest, sendEmailResponse{Error: "type must be oauth or smtp"})
			return
		}

		writeJSON(w, http.StatusOK, sendEmailResponse{Success: true, MessageID: messageID})
	}
}
