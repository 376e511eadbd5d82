package web

import (
	"html/template"
	"math"
	"strings"
	"time"
)

const readingWordsPerMinute = 200

// Helpers returns the template helper set. It is built once at startup
// and handed to the renderer; nothing mutates it afterwards.
func Helpers() template.FuncMap {
	return template.FuncMap{
		"dateFull":       dateFull,
		"dateLong":       dateLong,
		"timeShort":      timeShort,
		"replaceHyphens": replaceHyphens,
		"wordCount":      wordCount,
		"characterCount": func(s string) int { return len(s) },
		"readingTime":    readingTime,
		"plus":           func(a, b int) int { return a + b },
		"minus":          func(a, b int) int { return a - b },
	}
}

func dateFull(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("Jan 2, 2006 03:04 PM")
}

func dateLong(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

func timeShort(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("03:04 PM")
}

func replaceHyphens(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(strings.ReplaceAll(s, "-", " "))
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func readingTime(s string) int {
	words := wordCount(s)
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / readingWordsPerMinute))
}
