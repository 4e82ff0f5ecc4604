package geminiservice

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"PantauSiKecil_AI/internal/backend"
)

// UseCase selects persona, task rules and output mode of a prompt.
type UseCase string

const (
	UseCaseChat                   UseCase = "chat"
	UseCaseFoodRecommendation     UseCase = "food-recommendation"
	UseCaseActivityRecommendation UseCase = "activity-recommendation"
)

// ErrEmptyMessage is returned when a chat prompt has no question.
var ErrEmptyMessage = errors.New("chat message is empty")

// promptProfile is the static configuration of one use case.
type promptProfile struct {
	persona     string
	rules       string
	schema      *GeminiSchema
	contextKind backend.Kind
}

var profiles = map[UseCase]promptProfile{
	UseCaseChat: {
		persona:     ChatPersona,
		rules:       ChatRules,
		contextKind: backend.KindChat,
	},
	UseCaseFoodRecommendation: {
		persona:     FoodPersona,
		rules:       structuredRules,
		schema:      FoodRecommendationSchema,
		contextKind: backend.KindFoodRecommendation,
	},
	UseCaseActivityRecommendation: {
		persona:     ActivityPersona,
		rules:       structuredRules,
		schema:      ActivityRecommendationSchema,
		contextKind: backend.KindActivityRecommendation,
	},
}

// Structured reports whether the use case expects a JSON reply.
func (u UseCase) Structured() bool {
	return profiles[u].schema != nil
}

// Schema returns the response schema of a structured use case, nil for chat.
func (u UseCase) Schema() *GeminiSchema {
	return profiles[u].schema
}

// ContextKind returns the bundle kind the use case is grounded on.
func (u UseCase) ContextKind() backend.Kind {
	return profiles[u].contextKind
}

// Compose builds the single text prompt sent to the model:
// persona, (chat) app description, the serialized bundle, output rules and,
// for chat, the user's question last.
func Compose(useCase UseCase, bundle backend.Bundle, message string) (string, error) {
	p, ok := profiles[useCase]
	if !ok {
		return "", fmt.Errorf("unknown use case %q", useCase)
	}

	message = strings.TrimSpace(message)
	if useCase == UseCaseChat && message == "" {
		return "", ErrEmptyMessage
	}

	contextJSON, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize context bundle: %w", err)
	}

	var b strings.Builder
	b.WriteString(p.persona)
	b.WriteString("\n\n")

	if useCase == UseCaseChat {
		b.WriteString(SectionAppDescription + "\n")
		b.WriteString(AppDescription)
		b.WriteString("\n\n")
	}

	b.WriteString(SectionUserContext + "\n")
	b.Write(contextJSON)
	b.WriteString("\n\n")

	b.WriteString(SectionRules + "\n")
	b.WriteString(p.rules)
	if p.schema != nil {
		schemaJSON, err := json.MarshalIndent(p.schema.JSONSchema(), "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to render response schema: %w", err)
		}
		b.Write(schemaJSON)
	}

	if useCase == UseCaseChat {
		b.WriteString("\n\n")
		b.WriteString(SectionQuestion + " ")
		b.WriteString(message)
	}

	return b.String(), nil
}
