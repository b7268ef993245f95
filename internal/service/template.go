package service

import (
	"fmt"
	"strconv"
	"strings"

	"prompt-server/internal/models"
)

// TemplateVars - значения, подставляемые в шаблон промпта.
type TemplateVars struct {
	Text     string
	Context  string
	Exclude  string
	LangAbbr string
}

// Порядок позиционных полей {0}..{3}
var templateFieldNames = [...]string{"text", "context", "exclude", "lang_abbr"}

func (v TemplateVars) positional() [4]string {
	return [4]string{v.Text, v.Context, v.Exclude, v.LangAbbr}
}

func (v TemplateVars) named(name string) (string, bool) {
	for i, field := range templateFieldNames {
		if field == name {
			return v.positional()[i], true
		}
	}
	return "", false
}

type numberingMode int

const (
	numberingNone numberingMode = iota
	numberingAuto
	numberingManual
)

// RenderTemplate подставляет vars в шаблон по правилам str.format:
// {text} {context} {exclude} {lang_abbr}, позиционные {0}..{3} или {} по порядку,
// {{ и }} дают литеральные скобки. Ручную и автоматическую нумерацию смешивать нельзя.
// Спецификаторы формата ({text:>10}, {text!r}) и доступ к атрибутам не поддерживаются.
func RenderTemplate(template string, vars TemplateVars) (string, error) {
	var sb strings.Builder
	sb.Grow(len(template) + len(vars.Text) + len(vars.Context) + len(vars.Exclude))

	mode := numberingNone
	autoIndex := 0
	values := vars.positional()

	for i := 0; i < len(template); i++ {
		c := template[i]
		switch c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				sb.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(template[i+1:], '}')
			if end < 0 {
				return "", fmt.Errorf("%w: single '{' encountered at position %d", models.ErrTemplateRender, i)
			}
			field := template[i+1 : i+1+end]
			i += end + 1

			switch {
			case field == "":
				if mode == numberingManual {
					return "", fmt.Errorf("%w: cannot switch from manual field specification to automatic field numbering", models.ErrTemplateRender)
				}
				mode = numberingAuto
				if autoIndex >= len(values) {
					return "", fmt.Errorf("%w: replacement index %d out of range", models.ErrTemplateRender, autoIndex)
				}
				sb.WriteString(values[autoIndex])
				autoIndex++
			case isDigits(field):
				if mode == numberingAuto {
					return "", fmt.Errorf("%w: cannot switch from automatic field numbering to manual field specification", models.ErrTemplateRender)
				}
				mode = numberingManual
				idx, err := strconv.Atoi(field)
				if err != nil || idx >= len(values) {
					return "", fmt.Errorf("%w: replacement index %s out of range", models.ErrTemplateRender, field)
				}
				sb.WriteString(values[idx])
			case strings.ContainsAny(field, "{:!.["):
				return "", fmt.Errorf("%w: unsupported replacement field {%s}", models.ErrTemplateRender, field)
			default:
				val, ok := vars.named(field)
				if !ok {
					return "", fmt.Errorf("%w: unknown field %q", models.ErrTemplateRender, field)
				}
				sb.WriteString(val)
			}
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				sb.WriteByte('}')
				i++
				continue
			}
			return "", fmt.Errorf("%w: single '}' encountered at position %d", models.ErrTemplateRender, i)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
