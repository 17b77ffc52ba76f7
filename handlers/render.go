package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"contact-book/models"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = map[string]*template.Template{
	"login":    parsePage("login.html"),
	"register": parsePage("register.html"),
	"index":    parsePage("index.html"),
	"form":     parsePage("form.html"),
}

func parsePage(name string) *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/"+name))
}

// pageData is what every template receives
type pageData struct {
	Title    string
	User     *models.User
	Flash    *Flash
	Next     string
	Query    string
	Contacts []models.Contact
}

// render executes the named page inside the layout. The flash is consumed here.
func render(w http.ResponseWriter, r *http.Request, page string, data pageData) {
	data.User = UserFromContext(r.Context())
	data.Flash = popFlash(w, r)

	var buf bytes.Buffer
	if err := pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		logRequest(r, "error", "Template failed", zap.String("page", page), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
