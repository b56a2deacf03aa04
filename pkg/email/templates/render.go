// Package templates renders the HTML bodies of ledger mails.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed html/*.html
var files embed.FS

var printer = message.NewPrinter(language.MustParse("en-IN"))

var tpl = template.Must(template.New("mail").Funcs(template.FuncMap{
	"money": Money,
	"date":  Date,
	"upper": strings.ToUpper,
}).ParseFS(files, "html/*.html"))

// Render executes the named template (file name without extension) with data.
func Render(name string, data any) (string, error) {
	t := tpl.Lookup(name + ".html")
	if t == nil {
		return "", fmt.Errorf("templates: %q not found", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("templates: render %q: %w", name, err)
	}
	return buf.String(), nil
}

// Has reports whether a template exists.
func Has(name string) bool {
	return tpl.Lookup(name+".html") != nil
}

// Money formats an amount in minor units with the currency symbol.
// Unknown codes fall back to INR.
func Money(minor int64, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		unit = currency.INR
	}
	return printer.Sprint(currency.Symbol(unit.Amount(float64(minor) / 100)))
}

// Date formats t as dd-mm-yyyy in UTC; nil renders as "-".
func Date(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format("02-01-2006")
}
