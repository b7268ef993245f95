package service

import (
	"errors"
	"testing"

	"prompt-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	vars := TemplateVars{Text: "hello", Context: "greeting", Exclude: "keep X", LangAbbr: "es"}

	cases := []struct {
		name     string
		template string
		want     string
	}{
		{"named fields", "Translate to {lang_abbr}: {text} ({context}). {exclude}", "Translate to es: hello (greeting). keep X"},
		{"manual positional", "{1}|{0}|{3}|{2}|{0}", "greeting|hello|es|keep X|hello"},
		{"auto positional", "{} / {} / {}", "hello / greeting / keep X"},
		{"escaped braces", "{{literal}} {text} }}{{", "{literal} hello }{"},
		{"no fields", "plain text", "plain text"},
		{"named mixed with auto", "{text} {}", "hello hello"},
		{"unicode around fields", "Переведи: «{text}»", "Переведи: «hello»"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := RenderTemplate(tc.template, vars)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRenderTemplate_Errors(t *testing.T) {
	vars := TemplateVars{Text: "hello"}

	cases := []struct {
		name     string
		template string
	}{
		{"unknown field", "Translate {word}"},
		{"lone closing brace", "Translate } {text}"},
		{"unclosed field", "Translate {text"},
		{"index out of range", "{4}"},
		{"too many auto fields", "{}{}{}{}{}"},
		{"manual then auto", "{0} {}"},
		{"auto then manual", "{} {1}"},
		{"format spec", "{text:>10}"},
		{"attribute access", "{text.upper}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := RenderTemplate(tc.template, vars)
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrTemplateRender))
		})
	}
}

func TestRenderTemplate_ValuesAreNotReinterpreted(t *testing.T) {
	// Фигурные скобки внутри значений подставляются как есть
	got, err := RenderTemplate("A: {text}", TemplateVars{Text: "{context} }{"})
	require.NoError(t, err)
	assert.Equal(t, "A: {context} }{", got)
}
