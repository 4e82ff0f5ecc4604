package geminiservice

import (
	"encoding/json"
	"strings"
	"testing"

	"PantauSiKecil_AI/internal/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBundle() backend.Bundle {
	return backend.Bundle{
		backend.KeyUserID:      json.RawMessage(`7`),
		backend.KeyUserProfile: json.RawMessage(`{"data":{"fullName":"Siti","allergy":"udang"}}`),
		backend.KeyFoodDatabase: json.RawMessage(`{"data":[{"id":3,"foodName":"Bayam Bening"}]}`),
	}
}

// assertOrdered checks that every marker occurs in prompt, in the given order.
func assertOrdered(t *testing.T, prompt string, markers ...string) {
	t.Helper()
	last := -1
	for _, m := range markers {
		idx := strings.Index(prompt, m)
		if !assert.GreaterOrEqual(t, idx, 0, "missing %q", m) {
			return
		}
		assert.Greater(t, idx, last, "%q out of order", m)
		last = idx
	}
}

func TestCompose_Chat(t *testing.T) {
	prompt, err := Compose(UseCaseChat, testBundle(), "  Bolehkah saya minum kopi?  ")
	require.NoError(t, err)

	assertOrdered(t, prompt,
		"MediBot",
		SectionAppDescription,
		"PantauSiKecil adalah aplikasi AI",
		SectionUserContext,
		`"fullName": "Siti"`,
		SectionRules,
		SectionQuestion+" Bolehkah saya minum kopi?",
	)
	assert.True(t, strings.HasSuffix(prompt, "Bolehkah saya minum kopi?"), "question comes last")
	assert.NotContains(t, prompt, "SKEMA JSON")
}

func TestCompose_ChatRequiresMessage(t *testing.T) {
	_, err := Compose(UseCaseChat, testBundle(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestCompose_FoodRecommendation(t *testing.T) {
	prompt, err := Compose(UseCaseFoodRecommendation, testBundle(), "")
	require.NoError(t, err)

	assertOrdered(t, prompt,
		"ahli gizi",
		SectionUserContext,
		`"foodName": "Bayam Bening"`,
		SectionRules,
		"HANYA satu objek JSON",
		`"nutrisi_kurang"`,
	)
	assert.NotContains(t, prompt, SectionAppDescription)
	assert.NotContains(t, prompt, SectionQuestion)
	assert.Contains(t, prompt, `"breakfast"`)
}

func TestCompose_ActivityRecommendation(t *testing.T) {
	prompt, err := Compose(UseCaseActivityRecommendation, testBundle(), "ignored")
	require.NoError(t, err)

	assertOrdered(t, prompt,
		"kebugaran prenatal",
		SectionUserContext,
		SectionRules,
		`"today_recommendation"`,
	)
	for _, field := range []string{"trimester_specific", "health_considerations", "summary"} {
		assert.Contains(t, prompt, `"`+field+`"`)
	}
	assert.NotContains(t, prompt, "ignored")
}

func TestCompose_UnknownUseCase(t *testing.T) {
	_, err := Compose(UseCase("horoscope"), testBundle(), "x")
	assert.Error(t, err)
}

func TestCompose_IsDeterministic(t *testing.T) {
	a, err := Compose(UseCaseFoodRecommendation, testBundle(), "")
	require.NoError(t, err)
	b, err := Compose(UseCaseFoodRecommendation, testBundle(), "")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestUseCaseProfiles(t *testing.T) {
	assert.False(t, UseCaseChat.Structured())
	assert.Nil(t, UseCaseChat.Schema())
	assert.Equal(t, backend.KindChat, UseCaseChat.ContextKind())

	assert.True(t, UseCaseFoodRecommendation.Structured())
	assert.Same(t, FoodRecommendationSchema, UseCaseFoodRecommendation.Schema())
	assert.Equal(t, backend.KindFoodRecommendation, UseCaseFoodRecommendation.ContextKind())

	assert.True(t, UseCaseActivityRecommendation.Structured())
	assert.Equal(t, backend.KindActivityRecommendation, UseCaseActivityRecommendation.ContextKind())
}
