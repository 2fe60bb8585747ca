package httpapi

import (
	"github.com/labstack/echo/v4"

	"horse.fit/shloka/internal/globaltime"
	"horse.fit/shloka/internal/language"
)

func (s *Server) handleHealth(c echo.Context) error {
	return success(c, map[string]any{
		"service":             "shloka",
		"time":                globaltime.UTC(),
		"provider_configured": s.provider != nil,
	})
}

func (s *Server) handleLanguages(c echo.Context) error {
	return success(c, map[string]any{
		"source":  language.Source(),
		"targets": language.Targets(),
	})
}
