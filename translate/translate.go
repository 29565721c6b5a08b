//go:build !tinygo

// Package translate renders user-visible messages through a locale-aware
// printer.
package translate

import (
	"log"
	"sync"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	printerOnce sync.Once
	printer     *message.Printer
)

// fallback is used when the host reports no usable locale.
var fallback = language.AmericanEnglish

func loadPrinter() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("mcucore: locale: %v", err)
	}

	tag := fallback
	if len(locales) != 0 {
		tag = message.MatchLanguage(locales...)
	}

	printer = message.NewPrinter(tag)
}

// Printer returns the shared message printer.
func Printer() *message.Printer {
	printerOnce.Do(loadPrinter)
	return printer
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return Printer().Sprintf(key, args...)
}
