package server

import (
	"net/http"
	"strings"

	"donorlink/pkg/types"
)

func (s *Service) renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) error {
	accountID, _ := r.Context().Value(contextKeyAccountID).(string)
	email, _ := r.Context().Value(contextKeyEmail).(string)

	if setter, ok := data.(types.NavbarDataSetter); ok {
		setter.SetNavbarData(types.NavbarData{
			IsAuthenticated: accountID != "",
			AccountID:       accountID,
			Email:           email,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return s.templates.ExecuteTemplate(w, templateName, data)
}

// basePage picks up flash messages passed along in the notice and error query
// parameters.
func (s *Service) basePage(r *http.Request, title string) types.BasePageData {
	return types.BasePageData{
		Title:  title,
		Notice: strings.TrimSpace(r.URL.Query().Get("notice")),
		Error:  strings.TrimSpace(r.URL.Query().Get("error")),
	}
}
