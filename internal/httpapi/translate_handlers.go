package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/labstack/echo/v4"

	"horse.fit/shloka/internal/translation"
)

const maxRequestBodyBytes = 1 << 20

type translateTextRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang"`
}

type translateWordRequest struct {
	Word       string `json:"word"`
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang"`
}

// handleTranslate proxies a full passage. The provider's body code decides
// the outcome; a 2xx HTTP status alone is not treated as success.
func (s *Server) handleTranslate(c echo.Context) error {
	var body translateTextRequest
	if err := decodeJSONBody(c, &body); err != nil {
		s.logger.Warn().Err(err).Msg("translate request body rejected")
		return proxyFailure(c, translation.NewError(translation.KindValidation, translation.MsgInvalidRequestBody, err))
	}
	if s.provider == nil {
		return proxyFailure(c, translation.ErrAPIKeyNotConfigured)
	}

	resp, err := s.provider.Translate(c.Request().Context(), translation.TranslateRequest{
		Text:        body.Text,
		SourceLang:  s.sourceLangOrDefault(body.SourceLang),
		TargetLang:  body.TargetLang,
		Granularity: translation.GranularityPassage,
	})
	if err != nil {
		classified := translation.AsError(err)
		s.logger.Error().
			Err(err).
			Str("kind", string(classified.Kind)).
			Str("target_lang", body.TargetLang).
			Msg("translate upstream call failed")
		return proxyFailure(c, classified)
	}

	if failure := translation.InterpretPassage(resp); failure != nil {
		s.logger.Warn().
			Str("kind", string(failure.Kind)).
			Int("http_status", resp.HTTPStatus).
			Int("code", resp.Code).
			Str("provider_msg", resp.Msg).
			Str("target_lang", body.TargetLang).
			Msg("translate rejected by provider")
		return proxyFailure(c, failure)
	}

	return passthrough(c, resp.Body)
}

// handleTranslateWord proxies a single-word lookup. Failures collapse into a
// single generic error since word hovers are best effort.
func (s *Server) handleTranslateWord(c echo.Context) error {
	var body translateWordRequest
	if err := decodeJSONBody(c, &body); err != nil {
		s.logger.Warn().Err(err).Msg("translate-word request body rejected")
		return proxyFailure(c, translation.NewError(translation.KindValidation, translation.MsgInvalidRequestBody, err))
	}
	if s.provider == nil {
		return proxyFailure(c, translation.ErrAPIKeyNotConfigured)
	}

	resp, err := s.provider.Translate(c.Request().Context(), translation.TranslateRequest{
		Text:        body.Word,
		SourceLang:  s.sourceLangOrDefault(body.SourceLang),
		TargetLang:  body.TargetLang,
		Granularity: translation.GranularityWord,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("word", body.Word).Msg("word translation error")
		return proxyFailure(c, translation.NewError(translation.KindUpstream, translation.MsgTranslationFailed, err))
	}

	if failure := translation.InterpretWord(resp); failure != nil {
		s.logger.Warn().
			Int("http_status", resp.HTTPStatus).
			Str("word", body.Word).
			Msg("word translation error")
		return proxyFailure(c, failure)
	}

	return passthrough(c, resp.Body)
}

func (s *Server) sourceLangOrDefault(raw string) string {
	if trimmed := strings.TrimSpace(raw); trimmed != "" {
		return trimmed
	}
	return s.opts.SourceLang
}

// decodeJSONBody requires a single JSON object; field presence is not checked.
func decodeJSONBody(c echo.Context, dst any) error {
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxRequestBodyBytes))
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return fmt.Errorf("request body is empty")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}
