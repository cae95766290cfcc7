package service

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"html"
	"sort"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"potracker/internal/model"
)

// Attachment is an email body part referenced from the HTML by its content
// id instead of being inlined as base64 data.
type Attachment struct {
	Filename    string `json:"filename"`
	Content     []byte `json:"content"`
	ContentType string `json:"contentType"`
	CID         string `json:"cid"`
}

const qrImageSize = 256

const invoiceShell = `<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background:#f4f4f5;font-family:Arial,Helvetica,sans-serif;color:{accentColor};">
<div style="max-width:600px;margin:0 auto;padding:24px;background:#ffffff;">
{sections}</div>
</body>
</html>`

// RenderInvoice assembles the invoice HTML from the template's enabled
// sections in ascending order index and returns the binary parts (QR code,
// base64 banner) as content-addressed attachments. Color substitution is
// literal; colors are validated at template save time.
func RenderInvoice(tpl model.InvoiceTemplate, order model.Order, lines []model.OrderLine) (string, []Attachment, error) {
	sections := make([]model.TemplateSection, len(tpl.Sections))
	copy(sections, tpl.Sections)
	sort.SliceStable(sections, func(i, j int) bool { return sections[i].Order < sections[j].Order })

	var attachments []Attachment
	var body strings.Builder

	for _, section := range sections {
		if !section.Enabled {
			continue
		}

		switch section.Kind {
		case model.SectionHeader:
			if tpl.Banner != "" {
				src := tpl.Banner
				if att, ok := dataURIAttachment(tpl.Banner, "banner"); ok {
					attachments = append(attachments, att)
					src = "cid:" + att.CID
				}
				fmt.Fprintf(&body, `<img src=%q alt="banner" style="width:100%%;display:block;"/>`+"\n", src)
			}
			fmt.Fprintf(&body, `<h1 style="color:{primaryColor};">%s</h1>`+"\n", html.EscapeString(tpl.HeaderText))
		case model.SectionGreeting:
			fmt.Fprintf(&body, `<p>Hi %s,</p><p>Thank you for your pre-order! Present the code below at pickup.</p>`+"\n",
				html.EscapeString(order.CustomerName))
		case model.SectionQR:
			png, err := qrcode.Encode(order.ConfirmationCode, qrcode.Medium, qrImageSize)
			if err != nil {
				return "", nil, fmt.Errorf("encode qr code: %w", err)
			}
			att := newAttachment(png, "image/png", "qr")
			attachments = append(attachments, att)
			fmt.Fprintf(&body, `<div style="text-align:center;"><img src="cid:%s" alt="confirmation qr" width="%d" height="%d"/><p style="font-size:20px;letter-spacing:4px;"><strong>%s</strong></p></div>`+"\n",
				att.CID, qrImageSize, qrImageSize, html.EscapeString(order.ConfirmationCode))
		case model.SectionItems:
			body.WriteString(`<table style="width:100%;border-collapse:collapse;">` + "\n")
			body.WriteString(`<tr style="background:{primaryColor};color:#ffffff;"><th style="padding:8px;text-align:left;">Item</th><th style="padding:8px;">Qty</th><th style="padding:8px;text-align:right;">Price</th></tr>` + "\n")
			for _, line := range lines {
				fmt.Fprintf(&body, `<tr><td style="padding:8px;border-bottom:1px solid #e5e7eb;">%s</td><td style="padding:8px;text-align:center;border-bottom:1px solid #e5e7eb;">%d</td><td style="padding:8px;text-align:right;border-bottom:1px solid #e5e7eb;">%.2f</td></tr>`+"\n",
					html.EscapeString(line.ProductName), line.Quantity, float64(line.Quantity)*line.UnitPrice)
			}
			body.WriteString("</table>\n")
		case model.SectionTotal:
			fmt.Fprintf(&body, `<p style="text-align:right;font-size:18px;"><strong>Total: %.2f</strong></p>`+"\n", order.TotalAmount)
		case model.SectionFooter:
			fmt.Fprintf(&body, `<p style="color:#6b7280;font-size:12px;">%s</p>`+"\n", html.EscapeString(tpl.FooterText))
		default:
			// Unknown section kinds emit nothing.
		}
	}

	// The replacer does not rescan replacement text, so colors are
	// substituted into the sections before they go into the shell.
	colors := strings.NewReplacer(
		"{primaryColor}", tpl.PrimaryColor,
		"{accentColor}", tpl.AccentColor,
	)
	doc := strings.Replace(colors.Replace(invoiceShell), "{sections}", colors.Replace(body.String()), 1)

	return doc, attachments, nil
}

// dataURIAttachment extracts a base64 data URI into an attachment part.
// Plain URLs are left in the HTML untouched.
func dataURIAttachment(uri, name string) (Attachment, bool) {
	if !strings.HasPrefix(uri, "data:") {
		return Attachment{}, false
	}
	meta, data, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return Attachment{}, false
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return Attachment{}, false
	}
	contentType := strings.TrimSuffix(meta, ";base64")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return newAttachment(raw, contentType, name), true
}

// newAttachment derives the content id from the part's bytes, so identical
// content always resolves to the same reference.
func newAttachment(content []byte, contentType, name string) Attachment {
	sum := sha256.Sum256(content)
	cid := fmt.Sprintf("%x@potracker", sum[:8])

	ext := "bin"
	if idx := strings.Index(contentType, "/"); idx >= 0 && idx+1 < len(contentType) {
		ext = contentType[idx+1:]
	}

	return Attachment{
		Filename:    fmt.Sprintf("%s.%s", name, ext),
		Content:     content,
		ContentType: contentType,
		CID:         cid,
	}
}
