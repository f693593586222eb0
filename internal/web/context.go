package web

import (
	"net/http"

	"github.com/JonMunkholm/sheetload/internal/i18n"
)

// requestLanguage picks the message language for a load: an explicit
// "language" form or query value first, then Accept-Language, then the
// service default.
func (s *Server) requestLanguage(r *http.Request) i18n.Language {
	if v := r.FormValue("language"); v != "" {
		if lang, ok := i18n.Parse(v); ok {
			return lang
		}
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		return i18n.Match(accept)
	}
	return s.service.DefaultLanguage()
}
