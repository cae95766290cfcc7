package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/smtp"
	"net/textproto"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNoTransport = errors.New("no email transport available")

const (
	TransportOAuth = "oauth"
	TransportSMTP  = "smtp"
	TransportNone  = "none"
)

type Message struct {
	From        string       `json:"from"`
	FromName    string       `json:"from_name"`
	To          string       `json:"to"`
	ToName      string       `json:"to_name"`
	Subject     string       `json:"subject"`
	HTML        string       `json:"html"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

type OAuthCredentials struct {
	AccessToken string `json:"access_token"`
	FromEmail   string `json:"from_email"`
	FromName    string `json:"from_name"`
}

type SMTPConfig struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FromEmail string `json:"from_email"`
	FromName  string `json:"from_name"`
}

// SelectTransport is a pure function of the configured credentials: the
// authenticated provider account wins when a token and sender are present,
// SMTP is the fallback, otherwise sends are skipped.
func SelectTransport(oauth *OAuthCredentials, smtpCfg *SMTPConfig) string {
	if oauth != nil && oauth.AccessToken != "" && oauth.FromEmail != "" {
		return TransportOAuth
	}
	if smtpCfg != nil && smtpCfg.Host != "" {
		return TransportSMTP
	}
	return TransportNone
}

// Mailer performs exactly one delivery attempt per call; retries are the
// caller's decision.
type Mailer struct {
	apiBase string
	client  *http.Client

	mu    sync.RWMutex
	oauth *OAuthCredentials
	smtp  *SMTPConfig

	// Swappable in tests; net/smtp offers no interface.
	smtpSend func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(apiBase string) *Mailer {
	return &Mailer{
		apiBase:  apiBase,
		client:   &http.Client{Timeout: 30 * time.Second},
		smtpSend: smtp.SendMail,
	}
}

func (m *Mailer) SetOAuth(creds *OAuthCredentials) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.oauth = creds
}

func (m *Mailer) SetSMTP(cfg *SMTPConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.smtp = cfg
}

// Send delivers through whichever transport the stored credentials select.
func (m *Mailer) Send(ctx context.Context, msg Message) (string, error) {
	m.mu.RLock()
	oauth, smtpCfg := m.oauth, m.smtp
	m.mu.RUnlock()

	switch SelectTransport(oauth, smtpCfg) {
	case TransportOAuth:
		return m.SendViaOAuth(ctx, *oauth, msg)
	case TransportSMTP:
		return m.SendViaSMTP(ctx, *smtpCfg, msg)
	default:
		return "", ErrNoTransport
	}
}

// SendViaOAuth submits the raw MIME message base64url-encoded to the mail
// provider's send endpoint with a bearer token.
func (m *Mailer) SendViaOAuth(ctx context.Context, creds OAuthCredentials, msg Message) (string, error) {
	if msg.From == "" {
		msg.From = creds.FromEmail
	}
	if msg.FromName == "" {
		msg.FromName = creds.FromName
	}

	raw, err := buildMIME(msg)
	if err != nil {
		return "", fmt.Errorf("build message: %w", err)
	}

	payload, err := json.Marshal(map[string]string{
		"raw": base64.URLEncoding.EncodeToString(raw),
	})
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	url := m.apiBase + "/gmail/v1/users/me/messages/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("mail provider error: %d, body: %s", resp.StatusCode, string(body))
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return result.ID, nil
}

func (m *Mailer) SendViaSMTP(_ context.Context, cfg SMTPConfig, msg Message) (string, error) {
	if msg.From == "" {
		msg.From = cfg.FromEmail
	}
	if msg.FromName == "" {
		msg.FromName = cfg.FromName
	}

	raw, err := buildMIME(msg)
	if err != nil {
		return "", fmt.Errorf("build message: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	if err := m.smtpSend(addr, auth, cfg.FromEmail, []string{msg.To}, raw); err != nil {
		return "", fmt.Errorf("smtp send: %w", err)
	}

	// SMTP reports no provider message id; issue a local one for the caller.
	return uuid.NewString(), nil
}

// buildMIME assembles an RFC 2822 message: an HTML body plus base64 parts
// whose Content-ID headers resolve the cid: references in the HTML.
func buildMIME(msg Message) ([]byte, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	htmlPart, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := htmlPart.Write([]byte(msg.HTML)); err != nil {
		return nil, err
	}

	for _, att := range msg.Attachments {
		part, err := w.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {att.ContentType},
			"Content-Transfer-Encoding": {"base64"},
			"Content-ID":                {"<" + att.CID + ">"},
			"Content-Disposition":       {fmt.Sprintf("inline; filename=%q", att.Filename)},
		})
		if err != nil {
			return nil, err
		}
		if _, err := part.Write([]byte(base64.StdEncoding.EncodeToString(att.Content))); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "From: %s <%s>\r\n", msg.FromName, msg.From)
	fmt.Fprintf(&out, "To: %s <%s>\r\n", msg.ToName, msg.To)
	fmt.Fprintf(&out, "Subject: %s\r\n", msg.Subject)
	out.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&out, "Content-Type: multipart/related; boundary=%q\r\n\r\n", w.Boundary())
	out.Write(body.Bytes())

	return out.Bytes(), nil
}
