// Package i18n holds the user-visible messages of the studio and renders them
// for a locale through golang.org/x/text/message printers.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Key identifies a message in the catalog.
type Key string

const (
	MsgNoImages          Key = "no_images"
	MsgReadFailed        Key = "read_failed"
	MsgEmptyResult       Key = "empty_result"
	MsgUnexpected        Key = "unexpected"
	MsgGenerationFailed  Key = "generation_failed"
	MsgUnknownGeneration Key = "unknown_generation"
	MsgCopyUnavailable   Key = "copy_unavailable"
	MsgCopyFailed        Key = "copy_failed"
	// MsgVerbatim prints its argument unchanged.
	MsgVerbatim Key = "verbatim"
)

const (
	LocaleEnglish    = "en"
	LocaleIndonesian = "id"
)

var supported = []language.Tag{language.English, language.Indonesian}

var entries = map[Key][2]string{
	MsgNoImages: {
		"Please upload at least one image first.",
		"Unggah setidaknya satu gambar terlebih dahulu.",
	},
	MsgReadFailed: {
		"Failed to read image files.",
		"Gagal membaca berkas gambar.",
	},
	MsgEmptyResult: {
		"The AI could not generate an image from the response. Please try again.",
		"AI tidak dapat membuat gambar dari respons. Silakan coba lagi.",
	},
	MsgUnexpected: {
		"An unexpected error occurred.",
		"Terjadi kesalahan yang tidak terduga.",
	},
	MsgGenerationFailed: {
		"Failed to generate image: %s",
		"Gagal membuat gambar: %s",
	},
	MsgUnknownGeneration: {
		"An unknown error occurred during image generation.",
		"Terjadi kesalahan yang tidak diketahui saat membuat gambar.",
	},
	MsgCopyUnavailable: {
		"Copying not supported or no image to copy.",
		"Penyalinan tidak didukung atau tidak ada gambar untuk disalin.",
	},
	MsgCopyFailed: {
		"Failed to copy image to clipboard.",
		"Gagal menyalin gambar ke papan klip.",
	},
	MsgVerbatim: {"%s", "%s"},
}

var (
	cat     = buildCatalog()
	matcher = language.NewMatcher(supported)
)

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, texts := range entries {
		for i, tag := range supported {
			if err := b.SetString(tag, string(key), texts[i]); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// Keys lists every catalog key; handy for exporting the catalog to clients.
func Keys() []Key {
	return []Key{
		MsgNoImages, MsgReadFailed, MsgEmptyResult, MsgUnexpected,
		MsgGenerationFailed, MsgUnknownGeneration, MsgCopyUnavailable, MsgCopyFailed,
	}
}

// Text renders key for locale. Unknown locales fall back to English.
func Text(locale string, key Key, args ...any) string {
	return printer(locale).Sprintf(string(key), args...)
}

func printer(locale string) *message.Printer {
	tag := language.English
	if Normalize(locale) == LocaleIndonesian {
		tag = language.Indonesian
	}
	return message.NewPrinter(tag, message.Catalog(cat))
}

// Normalize maps any locale string onto a supported locale, defaulting to en.
func Normalize(locale string) string {
	if m := Match(locale); m != "" {
		return m
	}
	return LocaleEnglish
}

// Match resolves an Accept-Language style value to a supported locale. It
// returns "" when nothing in the value matches with reasonable confidence.
func Match(accept string) string {
	accept = strings.TrimSpace(accept)
	if accept == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return ""
	}
	_, idx, conf := matcher.Match(tags...)
	if conf < language.High {
		return ""
	}
	if supported[idx] == language.Indonesian {
		return LocaleIndonesian
	}
	return LocaleEnglish
}

// ForCountry returns the locale preferred for an ISO country code.
func ForCountry(country string) string {
	switch strings.ToUpper(strings.TrimSpace(country)) {
	case "":
		return ""
	case "ID":
		return LocaleIndonesian
	default:
		return LocaleEnglish
	}
}

// Catalog returns every message rendered for locale.
func Catalog(locale string) map[Key]string {
	p := printer(locale)
	out := make(map[Key]string, len(entries))
	for _, key := range Keys() {
		if key == MsgGenerationFailed {
			continue
		}
		out[key] = p.Sprintf(string(key))
	}
	return out
}
