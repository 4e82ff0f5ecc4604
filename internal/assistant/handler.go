/*
Package assistant implements the three AI endpoints: chat, food
recommendation and activity recommendation. Every handler runs the same
pipeline: bearer token -> context bundle -> prompt -> Gemini -> normalized reply.
*/
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"PantauSiKecil_AI/internal/backend"
	"PantauSiKecil_AI/internal/geminiservice"
	"PantauSiKecil_AI/internal/utility"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

/* =================================================================================
							DTOs (Data Transfer Objects)
=================================================================================*/

// ChatRequest is the body of POST /chat. Message is trimmed and must not be
// blank; an empty or whitespace-only message is rejected with 400 before any
// upstream call.
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

// ChatResponse is the success envelope of POST /chat.
type ChatResponse struct {
	Success bool            `json:"success"`
	UserID  json.RawMessage `json:"user_id"`
	Reply   string          `json:"reply"`
}

// RecommendationResponse is the success envelope of both recommendation endpoints.
type RecommendationResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ErrorResponse is the error envelope of every endpoint.
type ErrorResponse struct {
	Success     bool    `json:"success"`
	Detail      string  `json:"detail"`
	RawResponse *string `json:"raw_response,omitempty"`
}

/*=================================================================================
									DEPENDENCIES
=================================================================================*/

// ContextFetcher assembles the user's context bundle.
type ContextFetcher interface {
	FetchContext(ctx context.Context, token string, kind backend.Kind) (backend.Bundle, error)
}

// Generator produces model text for a prompt.
type Generator interface {
	Generate(ctx context.Context, req geminiservice.Request) (string, error)
}

// Handler serves the AI endpoints.
type Handler struct {
	contexts ContextFetcher
	model    Generator
}

// NewHandler wires the handler to its collaborators.
func NewHandler(contexts ContextFetcher, model Generator) *Handler {
	return &Handler{contexts: contexts, model: model}
}

/*=================================================================================
									HANDLERS
=================================================================================*/

// Chat answers a free-text question grounded on the caller's data.
func (h *Handler) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "Invalid request format"})
	}
	req.Message = strings.TrimSpace(req.Message)
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "message is required"})
	}

	bundle, reply, err := h.run(c, geminiservice.UseCaseChat, req.Message)
	if err != nil {
		return h.fail(c, err)
	}

	text, _ := reply.(string)
	return c.JSON(http.StatusOK, ChatResponse{
		Success: true,
		UserID:  bundle.UserID(),
		Reply:   text,
	})
}

// FoodRecommendation returns breakfast, lunch and dinner suggestions.
func (h *Handler) FoodRecommendation(c echo.Context) error {
	return h.recommend(c, geminiservice.UseCaseFoodRecommendation)
}

// ActivityRecommendation returns today's activity plan.
func (h *Handler) ActivityRecommendation(c echo.Context) error {
	return h.recommend(c, geminiservice.UseCaseActivityRecommendation)
}

func (h *Handler) recommend(c echo.Context, useCase geminiservice.UseCase) error {
	_, data, err := h.run(c, useCase, "")
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, RecommendationResponse{Success: true, Data: data})
}

// run is the shared pipeline. The returned reply is a string for chat and the
// decoded JSON document for structured use cases.
func (h *Handler) run(c echo.Context, useCase geminiservice.UseCase, message string) (backend.Bundle, any, error) {
	ctx := c.Request().Context()
	logger := zerolog.Ctx(ctx).With().Str("use_case", string(useCase)).Logger()

	token := utility.BearerToken(c)
	if token == "" {
		logger.Debug().Msg("No bearer token, forwarding request unauthenticated")
	}

	bundle, err := h.contexts.FetchContext(ctx, token, useCase.ContextKind())
	if err != nil {
		return nil, nil, err
	}

	prompt, err := geminiservice.Compose(useCase, bundle, message)
	if err != nil {
		return nil, nil, err
	}

	raw, err := h.model.Generate(ctx, geminiservice.Request{
		UseCase: useCase,
		Prompt:  prompt,
		Schema:  useCase.Schema(),
	})
	if err != nil {
		return nil, nil, err
	}

	if !useCase.Structured() {
		reply, err := geminiservice.Normalize(raw, false)
		return bundle, reply, err
	}

	data, violations, err := geminiservice.NormalizeWithSchema(raw, useCase.Schema())
	if err != nil {
		return nil, nil, err
	}
	if len(violations) > 0 {
		logger.Warn().Strs("violations", violations).Msg("Model reply does not match the documented schema")
	}

	return bundle, data, nil
}

// fail maps the error taxonomy onto a status code and error envelope.
func (h *Handler) fail(c echo.Context, err error) error {
	logger := zerolog.Ctx(c.Request().Context())

	var formatErr *geminiservice.ResponseFormatError
	switch {
	case errors.Is(err, geminiservice.ErrEmptyMessage):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "message is required"})

	case errors.Is(err, backend.ErrUpstreamUnavailable):
		logger.Error().Err(err).Msg("Upstream backend unavailable")
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Detail: "Gagal mengambil data user dari backend: " + err.Error(),
		})

	case errors.As(err, &formatErr):
		logger.Error().Err(err).Str("raw_response", formatErr.Raw).Msg("Model returned malformed JSON")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Detail:      "Format respons AI tidak valid: " + formatErr.Err.Error(),
			RawResponse: utility.StringPtr(formatErr.Raw),
		})

	default:
		logger.Error().Err(err).Msg("AI request failed")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: err.Error()})
	}
}
