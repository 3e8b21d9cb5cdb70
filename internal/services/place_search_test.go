package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insertapp/insert/internal/config"
	"github.com/insertapp/insert/internal/validation"
	"github.com/insertapp/insert/pkg/models"
)

type fakeKakaoServer struct {
	*httptest.Server

	keywordCalls  int
	categoryCalls map[string]int
	lastAuth      string
}

func newFakeKakaoServer(t *testing.T) *fakeKakaoServer {
	t.Helper()

	fake := &fakeKakaoServer{categoryCalls: map[string]int{}}
	fake.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fake.lastAuth = r.Header.Get("Authorization")

		switch r.URL.Path {
		case "/v2/local/search/keyword.json":
			fake.keywordCalls++
			if r.URL.Query().Get("query") == "없는 행사장" {
				writeKakaoResponse(w, nil, true)
				return
			}
			writeKakaoResponse(w, []map[string]interface{}{
				{"id": "venue-1", "place_name": "인스파이어 아레나", "x": "126.61", "y": "37.44"},
			}, true)

		case "/v2/local/search/category.json":
			code := r.URL.Query().Get("category_group_code")
			fake.categoryCalls[code]++
			writeKakaoResponse(w, categoryFixtures(code), true)

		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(fake.Close)
	return fake
}

func writeKakaoResponse(w http.ResponseWriter, documents []map[string]interface{}, isEnd bool) {
	if documents == nil {
		documents = []map[string]interface{}{}
	}
	resp := map[string]interface{}{
		"documents": documents,
		"meta":      map[string]interface{}{"is_end": isEnd, "total_count": len(documents)},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func categoryFixtures(code string) []map[string]interface{} {
	switch code {
	case groupCodeAttraction:
		return []map[string]interface{}{
			{
				"id": "act-1", "place_name": "시립 미술관",
				"category_name":     "문화,예술 > 미술관",
				"road_address_name": "인천 중구 문화로 1",
				"x":                 "126.62", "y": "37.45", "distance": "420",
			},
		}
	case groupCodeCulture:
		return []map[string]interface{}{
			{
				"id": "act-2", "place_name": "아트 갤러리 전시관",
				"category_name": "문화,예술 > 갤러리",
				"address_name":  "인천 중구 예술로 2",
				"x":             "126.63", "y": "37.46", "distance": "800",
			},
		}
	case groupCodeRestaurant:
		return []map[string]interface{}{
			{
				"id": "din-1", "place_name": "와인 레스토랑",
				"category_name": "음식점 > 양식",
				"x":             "126.64", "y": "37.47", "distance": "300",
			},
		}
	case groupCodeCafe:
		return []map[string]interface{}{
			{
				"id": "caf-1", "place_name": "산책로 북카페",
				"category_name": "음식점 > 카페",
				"x":             "126.65", "y": "37.48", "distance": "650",
			},
		}
	}
	return nil
}

func newTestKakaoGateway(t *testing.T, baseURL string) *KakaoPlaceGateway {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)

	validator, err := validation.NewSchemaValidator()
	require.NoError(t, err)

	return NewKakaoPlaceGateway(&config.PlacesConfig{
		BaseURL:      baseURL,
		APIKey:       "test-key",
		Timeout:      2 * time.Second,
		RadiusMeters: 2000,
		PageSize:     15,
	}, validator, logger)
}

func TestKakaoPlaceGateway_SearchNear(t *testing.T) {
	server := newFakeKakaoServer(t)
	gateway := newTestKakaoGateway(t, server.URL)

	places, err := gateway.SearchNear(context.Background(), "인스파이어 아레나", 45)
	require.NoError(t, err)
	require.Len(t, places, 4)

	byName := map[string]models.CandidatePlace{}
	for _, p := range places {
		byName[p.Name] = p
	}

	museum, ok := byName["시립 미술관"]
	require.True(t, ok)
	assert.Equal(t, models.CategoryActivity, museum.Category)
	require.NotNil(t, museum.Description)
	assert.Equal(t, "문화,예술 > 미술관", *museum.Description)
	require.NotNil(t, museum.Address)
	assert.Equal(t, "인천 중구 문화로 1", *museum.Address)
	require.NotNil(t, museum.DistanceKm)
	assert.InDelta(t, 0.42, *museum.DistanceKm, 0.001)
	require.NotNil(t, museum.Latitude)
	assert.InDelta(t, 37.45, *museum.Latitude, 0.001)

	assert.Equal(t, models.CategoryDining, byName["와인 레스토랑"].Category)
	assert.Equal(t, models.CategoryCafe, byName["산책로 북카페"].Category)

	assert.Equal(t, "KakaoAK test-key", server.lastAuth)
}

func TestKakaoPlaceGateway_SearchNearByCategory(t *testing.T) {
	server := newFakeKakaoServer(t)
	gateway := newTestKakaoGateway(t, server.URL)

	places, err := gateway.SearchNearByCategory(context.Background(), "인스파이어 아레나", models.CategoryCafe, 15)
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "산책로 북카페", places[0].Name)
	assert.Equal(t, models.CategoryCafe, places[0].Category)

	// Only the cafe group should have been queried.
	assert.Equal(t, 1, server.categoryCalls[groupCodeCafe])
	assert.Zero(t, server.categoryCalls[groupCodeRestaurant])
}

func TestKakaoPlaceGateway_UnknownVenue(t *testing.T) {
	server := newFakeKakaoServer(t)
	gateway := newTestKakaoGateway(t, server.URL)

	places, err := gateway.SearchNear(context.Background(), "없는 행사장", 45)
	require.NoError(t, err)
	assert.Empty(t, places)
	assert.Zero(t, len(server.categoryCalls))
}

func TestKakaoPlaceGateway_VenueCoordinatesCached(t *testing.T) {
	server := newFakeKakaoServer(t)
	gateway := newTestKakaoGateway(t, server.URL)

	_, err := gateway.SearchNearByCategory(context.Background(), "인스파이어 아레나", models.CategoryDining, 15)
	require.NoError(t, err)
	_, err = gateway.SearchNearByCategory(context.Background(), "인스파이어 아레나", models.CategoryDining, 15)
	require.NoError(t, err)

	assert.Equal(t, 1, server.keywordCalls)
	assert.Equal(t, 2, server.categoryCalls[groupCodeRestaurant])
}

func TestKakaoPlaceGateway_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	gateway := newTestKakaoGateway(t, server.URL)

	_, err := gateway.SearchNear(context.Background(), "인스파이어 아레나", 45)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestKakaoPlaceGateway_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"documents": [{"id": "x"}]}`))
	}))
	defer server.Close()

	gateway := newTestKakaoGateway(t, server.URL)

	_, err := gateway.SearchNear(context.Background(), "인스파이어 아레나", 45)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed provider response")
}
