package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

// Kind selects which sections a context bundle carries.
type Kind string

const (
	KindChat                   Kind = "chat"
	KindFoodRecommendation     Kind = "food-recommendation"
	KindActivityRecommendation Kind = "activity-recommendation"
)

// Bundle keys. Values are the raw JSON bodies returned by the backend.
const (
	KeyUserID               = "user_id"
	KeyUserData             = "user_data"
	KeyUserProfile          = "user_profile"
	KeyUserFoodTrack        = "user_food_track"
	KeyUserActivityTrack    = "user_activity_track"
	KeyUserActivityToday    = "user_activity_today"
	KeyUserActivityHistory  = "user_activity_history"
	KeyUserNutritionSummary = "user_nutrition_summary"
	KeyUserNutritionNeed    = "user_nutrition_need"
	KeyFoodDatabase         = "database-food"
	KeyActivityDatabase     = "database-activity"
)

// The backend has no "all time" query, so history requests span a fixed range.
const (
	historyStartDate = "1945-08-17"
	historyEndDate   = "2045-08-17"
)

// Bundle is the aggregated, request-scoped context of one user.
type Bundle map[string]json.RawMessage

// UserID returns the identity resolved from /api/auth/me as raw JSON
// (the backend may use numeric or string ids).
func (b Bundle) UserID() json.RawMessage {
	return b[KeyUserID]
}

// Section describes one upstream call and the bundle key it fills.
type Section struct {
	Key  string
	Path func(userID, today string) string
}

var (
	profileSection = Section{KeyUserProfile, func(id, _ string) string {
		return userPath(id, "/profile", nil)
	}}
	mealsSection = Section{KeyUserFoodTrack, func(id, today string) string {
		return userPath(id, "/nutrition/meals", url.Values{"date": {today}})
	}}
	nutritionSummarySection = Section{KeyUserNutritionSummary, func(id, today string) string {
		return userPath(id, "/nutrition/summary", url.Values{"date": {today}})
	}}
	nutritionNeedsSection = Section{KeyUserNutritionNeed, func(id, _ string) string {
		return userPath(id, "/nutrition/needs", nil)
	}}
	activityTodaySection = Section{KeyUserActivityToday, func(id, _ string) string {
		return userPath(id, "/activities/today", nil)
	}}
	foodDatabaseSection = Section{KeyFoodDatabase, func(_, _ string) string {
		return "/api/nutrition/food"
	}}
	activityDatabaseSection = Section{KeyActivityDatabase, func(_, _ string) string {
		return "/api/activities"
	}}
)

func activityHistorySection(key string) Section {
	return Section{key, func(id, _ string) string {
		return userPath(id, "/activities/history", url.Values{
			"startDate": {historyStartDate},
			"endDate":   {historyEndDate},
		})
	}}
}

// contextSections lists, per kind, the calls issued after identity resolution.
var contextSections = map[Kind][]Section{
	KindChat: {
		profileSection,
		mealsSection,
		activityHistorySection(KeyUserActivityTrack),
		activityTodaySection,
		nutritionSummarySection,
		nutritionNeedsSection,
	},
	KindFoodRecommendation: {
		profileSection,
		mealsSection,
		nutritionSummarySection,
		nutritionNeedsSection,
		foodDatabaseSection,
	},
	KindActivityRecommendation: {
		profileSection,
		mealsSection,
		activityTodaySection,
		activityHistorySection(KeyUserActivityHistory),
		activityDatabaseSection,
	},
}

// Sections returns the section keys fetched for kind, in request order.
func Sections(kind Kind) []string {
	keys := make([]string, 0, len(contextSections[kind]))
	for _, s := range contextSections[kind] {
		keys = append(keys, s.Key)
	}
	return keys
}

// ErrUpstreamUnavailable matches every failure to reach or read the backend.
var ErrUpstreamUnavailable = errors.New("upstream backend unavailable")

// UpstreamError describes a failed call to the backend API.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("GET %s (status %d): %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("GET %s: %v", e.Endpoint, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Is reports every UpstreamError as ErrUpstreamUnavailable.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}
