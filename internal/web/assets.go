// Package web は画面テンプレートと静的ファイル、共通の描画処理を提供します。
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"slices"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFiles embed.FS

//go:embed static/*
var staticFiles embed.FS

// PlaceholderImage は写真が無い社員に表示する画像です。
const PlaceholderImage = "https://via.placeholder.com/50"

var funcs = template.FuncMap{
	"join":       strings.Join,
	"inc":        func(i int) int { return i + 1 },
	"has":        slices.Contains[[]string, string],
	"formatDate": formatDate,
	"photo": func(src string) string {
		if src == "" {
			return PlaceholderImage
		}
		return src
	},
}

// formatDate は日付を 13-Feb-21 の形式で表示します。time.Time のほか、
// Time() (time.Time, bool) を持つ値を受け付けます。解釈できなければ空文字です。
func formatDate(v any) string {
	var t time.Time
	switch d := v.(type) {
	case time.Time:
		t = d
	case interface{ Time() (time.Time, bool) }:
		var ok bool
		if t, ok = d.Time(); !ok {
			return ""
		}
	default:
		return ""
	}
	if t.IsZero() {
		return ""
	}
	return t.Format("02-Jan-06")
}

// Templates は埋め込みテンプレートをすべて読み込みます。
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFiles, "templates/*.html")
}

// MustTemplates は Templates の失敗時に panic します。
func MustTemplates() *template.Template {
	return template.Must(Templates())
}

// StaticFS は /static 配下で配信するファイルシステムを返します。
func StaticFS() http.FileSystem {
	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(static)
}
