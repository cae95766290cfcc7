package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"

	"potracker/internal/model"
)

var ErrInvalidColor = errors.New("invalid template color")

// Colors are substituted literally into the invoice HTML, so only plain hex
// values are accepted at save time.
var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

type TemplateService struct {
	db *sqlx.DB
}

func NewTemplateService(db *sqlx.DB) *TemplateService {
	return &TemplateService{db: db}
}

func DefaultTemplate() model.InvoiceTemplate {
	return model.InvoiceTemplate{
		Sections: []model.TemplateSection{
			{Kind: model.SectionHeader, Label: "Header", Enabled: true, Order: 0},
			{Kind: model.SectionGreeting, Label: "Greeting", Enabled: true, Order: 1},
			{Kind: model.SectionQR, Label: "Pickup QR", Enabled: true, Order: 2},
			{Kind: model.SectionItems, Label: "Items", Enabled: true, Order: 3},
			{Kind: model.SectionTotal, Label: "Total", Enabled: true, Order: 4},
			{Kind: model.SectionFooter, Label: "Footer", Enabled: true, Order: 5},
		},
		HeaderText:   "Your Pre-Order Invoice",
		FooterText:   "Thank you for ordering with us.",
		PrimaryColor: "#4f46e5",
		AccentColor:  "#111827",
	}
}

func (s *TemplateService) Get(ctx context.Context) (model.InvoiceTemplate, error) {
	var row struct {
		Sections     string `db:"sections"`
		HeaderText   string `db:"header_text"`
		FooterText   string `db:"footer_text"`
		PrimaryColor string `db:"primary_color"`
		AccentColor  string `db:"accent_color"`
		Banner       string `db:"banner"`
	}
	err := s.db.GetContext(ctx, &row, `
		SELECT sections, header_text, footer_text, primary_color, accent_color, banner
		FROM invoice_template WHERE id = 1
	`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DefaultTemplate(), nil
		}
		return model.InvoiceTemplate{}, fmt.Errorf("get template: %w", err)
	}

	tpl := model.InvoiceTemplate{
		HeaderText:   row.HeaderText,
		FooterText:   row.FooterText,
		PrimaryColor: row.PrimaryColor,
		AccentColor:  row.AccentColor,
		Banner:       row.Banner,
	}
	if err := json.Unmarshal([]byte(row.Sections), &tpl.Sections); err != nil {
		return model.InvoiceTemplate{}, fmt.Errorf("decode template sections: %w", err)
	}
	return tpl, nil
}

func (s *TemplateService) Update(ctx context.Context, tpl model.InvoiceTemplate) error {
	if !colorPattern.MatchString(tpl.PrimaryColor) || !colorPattern.MatchString(tpl.AccentColor) {
		return ErrInvalidColor
	}

	sections, err := json.Marshal(tpl.Sections)
	if err != nil {
		return fmt.Errorf("encode template sections: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO invoice_template (id, sections, header_text, footer_text, primary_color, accent_color, banner)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			sections = excluded.sections,
			header_text = excluded.header_text,
			footer_text = excluded.footer_text,
			primary_color = excluded.primary_color,
			accent_color = excluded.accent_color,
			banner = excluded.banner
	`, string(sections), tpl.HeaderText, tpl.FooterText, tpl.PrimaryColor, tpl.AccentColor, tpl.Banner)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	return nil
}
