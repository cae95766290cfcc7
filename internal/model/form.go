package model

import "time"

type Form struct {
	ID           string     `json:"id" db:"id"`
	Title        string     `json:"title" db:"title"`
	EditURL      string     `json:"edit_url" db:"edit_url"`
	FillURL      string     `json:"fill_url" db:"fill_url"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty" db:"last_synced_at"`
}

// SyncedResponse is an append-only ledger entry. Presence of a response id is
// the sole dedup signal; the id is global, so a response is consumed at most
// once system-wide.
type SyncedResponse struct {
	ResponseID string    `json:"response_id" db:"response_id"`
	FormID     string    `json:"form_id" db:"form_id"`
	SyncedAt   time.Time `json:"synced_at" db:"synced_at"`
}

type FormQuestion struct {
	ID    string `json:"question_id"`
	Title string `json:"title"`
}

// FormResponse mirrors the provider payload: every field past the response id
// is optional and must be treated as possibly missing.
type FormResponse struct {
	ResponseID string                `json:"responseId"`
	CreateTime string                `json:"createTime,omitempty"`
	Answers    map[string]FormAnswer `json:"answers,omitempty"`
}

type FormAnswer struct {
	QuestionID  string       `json:"questionId"`
	TextAnswers *TextAnswers `json:"textAnswers,omitempty"`
}

type TextAnswers struct {
	Answers []TextAnswer `json:"answers"`
}

type TextAnswer struct {
	Value string `json:"value"`
}

// TextValues flattens the nested answer structure to question id -> first
// text value, dropping answers with no text payload.
func (r FormResponse) TextValues() map[string]string {
	values := make(map[string]string, len(r.Answers))
	for questionID, a := range r.Answers {
		if a.TextAnswers == nil || len(a.TextAnswers.Answers) == 0 {
			continue
		}
		values[questionID] = a.TextAnswers.Answers[0].Value
	}
	return values
}
