package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/home.html
var templatesFS embed.FS

var homeTemplate = template.Must(template.ParseFS(templatesFS, "templates/home.html"))

type endpoint struct {
	Method      string
	Path        string
	Description string
}

var homePage = struct {
	Title     string
	Endpoints []endpoint
}{
	Title: "User API",
	Endpoints: []endpoint{
		{"GET", "/api/users", "list all users"},
		{"POST", "/api/users", "create a user"},
		{"GET", "/api/users/{id}", "fetch one user"},
		{"PATCH", "/api/users/{id}", "rename a user"},
		{"DELETE", "/api/users/{id}", "delete a user"},
	},
}

// Home serves the static informational page. The page never changes, so it is rendered once.
func Home() http.HandlerFunc {
	var buf bytes.Buffer
	err := homeTemplate.Execute(&buf, homePage)
	if err != nil {
		panic(err)
	}
	page := buf.Bytes()

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(page)
	}
}
