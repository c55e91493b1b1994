package admin

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
)

// adminTemplates holds the parsed templates for the admin UI.
var adminTemplates *template.Template

// basePath holds the base path for URLs in templates
var basePath = "/"

// funcMap provides template helper functions used across templates.
var funcMap = template.FuncMap{
	"basePath": func() string {
		return basePath
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"foodTags": func(s *string) []string {
		if s == nil || *s == "" {
			return nil
		}
		parts := strings.Split(*s, ", ")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	},
	"shorten": func(s *string, n int) string {
		if s == nil {
			return ""
		}
		r := []rune(*s)
		if len(r) <= n {
			return *s
		}
		return string(r[:n]) + "…"
	},
}

// LoadTemplates parses all admin templates from the provided filesystem. It should be called at application startup.
func LoadTemplates(fsys fs.FS) error {
	t, err := template.New("").Funcs(funcMap).ParseFS(fsys, "*.tmpl")
	if err != nil {
		return err
	}
	adminTemplates = t
	return nil
}

// SetBasePath sets the base path for URLs in templates.
func SetBasePath(path string) {
	basePath = path
}

// ExecuteTemplate renders a named template to the ResponseWriter.
func ExecuteTemplate(w http.ResponseWriter, name string, data interface{}) error {
	if adminTemplates == nil {
		return fmt.Errorf("templates not loaded: call admin.LoadTemplates at startup")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return adminTemplates.ExecuteTemplate(w, name, data)
}
