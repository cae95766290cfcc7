package service

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"potracker/internal/database"
	"potracker/internal/model"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	// A second pool connection would see a different in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.InitSchema(db))
	return db
}

func textAnswer(questionID, value string) model.FormAnswer {
	return model.FormAnswer{
		QuestionID:  questionID,
		TextAnswers: &model.TextAnswers{Answers: []model.TextAnswer{{Value: value}}},
	}
}
