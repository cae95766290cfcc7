package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateService(t *testing.T) {
	ctx := context.Background()
	templates := NewTemplateService(newTestDB(t))

	t.Run("default template when nothing stored", func(t *testing.T) {
		tpl, err := templates.Get(ctx)
		require.NoError(t, err)
		assert.Len(t, tpl.Sections, 6)
		assert.Equal(t, "#4f46e5", tpl.PrimaryColor)
	})

	t.Run("round trip", func(t *testing.T) {
		tpl := DefaultTemplate()
		tpl.HeaderText = "Bakery Pre-Orders"
		tpl.PrimaryColor = "#ff8800"
		tpl.Sections[0].Enabled = false
		require.NoError(t, templates.Update(ctx, tpl))

		got, err := templates.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Bakery Pre-Orders", got.HeaderText)
		assert.Equal(t, "#ff8800", got.PrimaryColor)
		assert.False(t, got.Sections[0].Enabled)
	})

	t.Run("rejects non-hex colors", func(t *testing.T) {
		tpl := DefaultTemplate()
		tpl.PrimaryColor = `"><script>`
		err := templates.Update(ctx, tpl)
		assert.ErrorIs(t, err, ErrInvalidColor)
	})
}
