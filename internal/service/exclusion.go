package service

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"prompt-server/internal/models"
)

// Маркеры вокруг терминов, которые провайдер не должен переводить.
const (
	KeepOpen  = "<keep>"
	KeepClose = "</keep>"
)

// normalizeTerms убирает дубликаты и пустые термины, сортирует от длинных к коротким.
func normalizeTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		if strings.TrimSpace(term) == "" {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}
	sort.SliceStable(out, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(out[i]), utf8.RuneCountInString(out[j])
		if li != lj {
			return li > lj
		}
		return out[i] < out[j]
	})
	return out
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ProtectExcluded оборачивает точные вхождения терминов в <keep>...</keep>.
// Один проход слева направо, длинные термины первыми, поэтому вложенности не бывает:
// "cat" внутри уже обёрнутого "category" не трогается. Граница слова проверяется
// только с той стороны, где сам термин начинается или заканчивается буквой/цифрой.
func ProtectExcluded(text string, terms []string) string {
	ordered := normalizeTerms(terms)
	if len(ordered) == 0 || text == "" {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))
	prev := rune(-1)

	for i := 0; i < len(text); {
		matched := ""
		for _, term := range ordered {
			if strings.HasPrefix(text[i:], term) && atWordBoundary(text, i, term, prev) {
				matched = term
				break
			}
		}
		if matched != "" {
			sb.WriteString(KeepOpen)
			sb.WriteString(matched)
			sb.WriteString(KeepClose)
			i += len(matched)
			prev, _ = utf8.DecodeLastRuneInString(matched)
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		sb.WriteString(text[i : i+size])
		prev = r
		i += size
	}
	return sb.String()
}

func atWordBoundary(text string, start int, term string, prev rune) bool {
	first, _ := utf8.DecodeRuneInString(term)
	if isWordRune(first) && prev >= 0 && isWordRune(prev) {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(term)
	end := start + len(term)
	if isWordRune(last) && end < len(text) {
		next, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(next) {
			return false
		}
	}
	return true
}

// StripMarkers снимает маркеры только с пар <keep>term</keep> для терминов запроса.
// Любые другие вхождения <keep> и </keep> (в тексте пользователя или в ответе
// провайдера) остаются как есть, поэтому StripMarkers(ProtectExcluded(t, terms), terms) == t.
func StripMarkers(s string, terms []string) string {
	ordered := normalizeTerms(terms)
	if len(ordered) == 0 || !strings.Contains(s, KeepOpen) {
		return s
	}
	// Длинные термины первыми: при совпадении в одной позиции выигрывает первая пара
	pairs := make([]string, 0, 2*len(ordered))
	for _, term := range ordered {
		pairs = append(pairs, KeepOpen+term+KeepClose, term)
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

// RenderExclude собирает значение {exclude}: инструкция и список защищённых терминов.
func RenderExclude(ex models.Exclude) string {
	// В инструкции термины идут в исходном порядке
	ordered := make([]string, 0, len(ex.ExceptionList))
	seen := make(map[string]struct{}, len(ex.ExceptionList))
	for _, term := range ex.ExceptionList {
		if strings.TrimSpace(term) == "" {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		ordered = append(ordered, KeepOpen+term+KeepClose)
	}

	instruction := strings.TrimSpace(ex.Exception)
	list := strings.Join(ordered, ", ")
	switch {
	case instruction == "":
		return list
	case list == "":
		return instruction
	default:
		return instruction + " " + list
	}
}
