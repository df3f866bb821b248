package template

import (
	"html/template"
	"io"
)

var Index *template.Template
var Coin *template.Template
var Login *template.Template
var Register *template.Template

func Init() {
	Index = template.Must(template.ParseFiles(
		"template/base.tmpl",
		"template/index.tmpl",
	))
	Coin = template.Must(template.ParseFiles(
		"template/base.tmpl",
		"template/coin.tmpl",
	))
	Login = template.Must(template.ParseFiles(
		"template/base.tmpl",
		"template/login.tmpl",
	))
	Register = template.Must(template.ParseFiles(
		"template/base.tmpl",
		"template/register.tmpl",
	))
}

func Render(tmpl *template.Template, writer io.Writer, data interface{}) {
	tmpl.ExecuteTemplate(writer, "base", data)
}
