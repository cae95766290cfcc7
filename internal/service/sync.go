package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"potracker/internal/model"
)

var ErrSyncAlreadyRunning = errors.New("sync pass already running")

// InvoiceSender is the slice of the mailer the sync engine needs.
type InvoiceSender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

type SyncResult struct {
	Imported int      `json:"imported"`
	Warnings []string `json:"warnings,omitempty"`
}

// Sync orchestrates one pass over all registered forms: fetch, map, dedup,
// ingest, invoice, mark. Forms and responses are processed strictly one at a
// time, which keeps the ledger's check-then-mark window race free.
type Sync struct {
	forms     *FormService
	provider  FormProvider
	catalog   *CatalogService
	orders    *OrderService
	ledger    *Ledger
	templates *TemplateService
	mailer    InvoiceSender

	running atomic.Bool
}

func NewSync(forms *FormService, provider FormProvider, catalog *CatalogService,
	orders *OrderService, ledger *Ledger, templates *TemplateService, mailer InvoiceSender) *Sync {
	return &Sync{
		forms:     forms,
		provider:  provider,
		catalog:   catalog,
		orders:    orders,
		ledger:    ledger,
		templates: templates,
		mailer:    mailer,
	}
}

func (s *Sync) Running() bool {
	return s.running.Load()
}

// Run executes a single sync pass. At most one pass is ever in flight: a
// request while one is running returns ErrSyncAlreadyRunning, which callers
// treat as a no-op rather than queuing.
func (s *Sync) Run(ctx context.Context) (*SyncResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSyncAlreadyRunning
	}
	defer s.running.Store(false)

	forms, err := s.forms.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}

	catalog, err := s.catalog.ByName(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	result := &SyncResult{}
	for _, form := range forms {
		if err := s.syncForm(ctx, form, catalog, result); err != nil {
			// A failed remote fetch aborts this form only; the rest of the
			// pass proceeds.
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("form %q: %v", form.Title, err))
			slog.Error("form sync failed", "form", form.ID, "error", err)
		}
	}

	slog.Info("sync pass finished", "imported", result.Imported, "warnings", len(result.Warnings))
	return result, nil
}

func (s *Sync) syncForm(ctx context.Context, form model.Form, catalog map[string]model.Product, result *SyncResult) error {
	questions, err := s.provider.GetFormDefinition(ctx, form.ID)
	if err != nil {
		return fmt.Errorf("fetch form definition: %w", err)
	}

	responses, err := s.provider.ListResponses(ctx, form.ID)
	if err != nil {
		return fmt.Errorf("fetch responses: %w", err)
	}

	for _, resp := range responses {
		synced, err := s.ledger.IsSynced(ctx, resp.ResponseID)
		if err != nil {
			return err
		}
		if synced {
			continue
		}

		mapped := MapResponse(questions, resp.TextValues(), catalog)
		for _, warning := range mapped.Warnings {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("response %s: %s", resp.ResponseID, warning))
			slog.Warn("partial import", "response", resp.ResponseID, "detail", warning)
		}

		if mapped.IsOrder() {
			if err := s.ingest(ctx, resp.ResponseID, mapped, result); err != nil {
				// Leave the response unmarked so the next pass retries it.
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("response %s: import failed: %v", resp.ResponseID, err))
				slog.Error("order import failed", "response", resp.ResponseID, "error", err)
				continue
			}
		}

		// Marked consumed whether or not it produced an order, and whether or
		// not its invoice email went out.
		if err := s.ledger.MarkSynced(ctx, resp.ResponseID, form.ID); err != nil {
			return err
		}
	}

	return s.forms.TouchSynced(ctx, form.ID)
}

func (s *Sync) ingest(ctx context.Context, responseID string, mapped MappedOrder, result *SyncResult) error {
	lines := make([]OrderLineInput, 0, len(mapped.Lines))
	for _, line := range mapped.Lines {
		lines = append(lines, OrderLineInput{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
	}

	order, err := s.orders.Create(ctx, CreateOrderInput{
		CustomerName:  mapped.CustomerName,
		CustomerEmail: mapped.CustomerEmail,
		Lines:         lines,
	})
	if err != nil {
		return err
	}
	result.Imported++
	slog.Info("order imported", "order", order.ID, "response", responseID, "code", order.ConfirmationCode)

	// The order is committed; a failed email downgrades to a warning and is
	// never retried through the sync path.
	if err := s.sendInvoice(ctx, *order); err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("order %s created, invoice email failed: %v", order.ID, err))
		slog.Warn("invoice email failed", "order", order.ID, "error", err)
	}

	return nil
}

func (s *Sync) sendInvoice(ctx context.Context, order model.Order) error {
	tpl, err := s.templates.Get(ctx)
	if err != nil {
		return err
	}

	lines, err := s.orders.Lines(ctx, order.ID)
	if err != nil {
		return err
	}

	html, attachments, err := RenderInvoice(tpl, order, lines)
	if err != nil {
		return err
	}

	_, err = s.mailer.Send(ctx, Message{
		To:          order.CustomerEmail,
		ToName:      order.CustomerName,
		Subject:     fmt.Sprintf("Your pre-order invoice (%s)", order.ConfirmationCode),
		HTML:        html,
		Attachments: attachments,
	})
	return err
}
