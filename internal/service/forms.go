package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"potracker/internal/model"
)

var ErrFormNotFound = errors.New("form not found")

// FormProvider is the remote contract the sync engine depends on. The HTTP
// client below implements it; tests substitute a fake.
type FormProvider interface {
	ListResponses(ctx context.Context, formID string) ([]model.FormResponse, error)
	GetFormDefinition(ctx context.Context, formID string) ([]model.FormQuestion, error)
}

// FormsClient talks to the form provider's REST API with a bearer token.
type FormsClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewFormsClient(baseURL, token string) *FormsClient {
	return &FormsClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type formResponsesPayload struct {
	Responses []model.FormResponse `json:"responses"`
}

type formDefinitionPayload struct {
	FormID string `json:"formId"`
	Items  []struct {
		ItemID       string `json:"itemId"`
		Title        string `json:"title"`
		QuestionItem *struct {
			Question struct {
				QuestionID string `json:"questionId"`
			} `json:"question"`
		} `json:"questionItem"`
	} `json:"items"`
}

func (c *FormsClient) ListResponses(ctx context.Context, formID string) ([]model.FormResponse, error) {
	var payload formResponsesPayload
	url := fmt.Sprintf("%s/v1/forms/%s/responses", c.baseURL, formID)
	if err := c.getJSON(ctx, url, &payload); err != nil {
		return nil, err
	}
	return payload.Responses, nil
}

// GetFormDefinition flattens the provider's item list to question id + title
// pairs, skipping items that carry no question.
func (c *FormsClient) GetFormDefinition(ctx context.Context, formID string) ([]model.FormQuestion, error) {
	var payload formDefinitionPayload
	url := fmt.Sprintf("%s/v1/forms/%s", c.baseURL, formID)
	if err := c.getJSON(ctx, url, &payload); err != nil {
		return nil, err
	}

	questions := make([]model.FormQuestion, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.QuestionItem == nil {
			continue
		}
		questions = append(questions, model.FormQuestion{
			ID:    item.QuestionItem.Question.QuestionID,
			Title: item.Title,
		})
	}
	return questions, nil
}

func (c *FormsClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status: %d, body: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// FormService is the local registry of forms feeding the order table.
type FormService struct {
	db *sqlx.DB
}

func NewFormService(db *sqlx.DB) *FormService {
	return &FormService{db: db}
}

func (s *FormService) Register(ctx context.Context, f model.Form) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO forms (id, title, edit_url, fill_url) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title, edit_url = excluded.edit_url, fill_url = excluded.fill_url`,
		f.ID, f.Title, f.EditURL, f.FillURL)
	if err != nil {
		return fmt.Errorf("register form: %w", err)
	}
	return nil
}

func (s *FormService) List(ctx context.Context) ([]model.Form, error) {
	var forms []model.Form
	err := s.db.SelectContext(ctx, &forms,
		`SELECT id, title, edit_url, fill_url, last_synced_at FROM forms ORDER BY title ASC`)
	if err != nil {
		return nil, fmt.Errorf("query forms: %w", err)
	}
	return forms, nil
}

// Delete removes a form registration; its ledger entries cascade with it.
func (s *FormService) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM forms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete form: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFormNotFound
	}
	return nil
}

func (s *FormService) Get(ctx context.Context, id string) (*model.Form, error) {
	var f model.Form
	err := s.db.GetContext(ctx, &f,
		`SELECT id, title, edit_url, fill_url, last_synced_at FROM forms WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("get form: %w", err)
	}
	return &f, nil
}

func (s *FormService) TouchSynced(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE forms SET last_synced_at = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("touch form sync time: %w", err)
	}
	return nil
}
