package handlers

import (
	"fmt"
	"html/template"
	"net/url"
	"nuncio/internal/utils"
	"path/filepath"
	"time"

	"github.com/gin-contrib/multitemplate"
)

// Views lists every page template. Each is rendered inside the base layout.
var Views = []string{
	"auth/login.html",
	"auth/register.html",
	"story/list.html",
	"story/detail.html",
	"story/submit.html",
	"user/profile.html",
	"search.html",
	"error.html",
	"pages/about.html",
	"pages/faq.html",
	"pages/rules.html",
	"pages/contact.html",
	"pages/contributing.html",
}

// TemplateFuncs are the helpers available to every template.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"add": func(a, b int) int {
			return a + b
		},
		"timeAgo": func(t time.Time) string {
			return utils.TimeAgo(t, time.Now())
		},
		"markdown": utils.RenderMarkdown,
		"domain":   utils.Domain,
		"urlquery": url.QueryEscape,
	}
}

// LoadTemplates builds the renderer from templatesDir/layouts, /includes
// and /views.
func LoadTemplates(templatesDir string) (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(filepath.Join(templatesDir, "layouts", "*.html"))
	if err != nil {
		return nil, err
	}
	if len(layouts) == 0 {
		return nil, fmt.Errorf("no layouts in %s", templatesDir)
	}
	includes, err := filepath.Glob(filepath.Join(templatesDir, "includes", "*.html"))
	if err != nil {
		return nil, err
	}

	funcMap := TemplateFuncs()
	for _, view := range Views {
		files := make([]string, 0, len(layouts)+len(includes)+1)
		files = append(files, layouts...)
		files = append(files, includes...)
		files = append(files, filepath.Join(templatesDir, "views", view))
		r.AddFromFilesFuncs(view, funcMap, files...)
	}
	return r, nil
}
