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

func newTestRankingSignal(t *testing.T, baseURL string) *TextRankingSignal {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)

	validator, err := validation.NewSchemaValidator()
	require.NoError(t, err)

	return NewTextRankingSignal(&config.RankingConfig{
		Enabled: true,
		BaseURL: baseURL,
		Timeout: 2 * time.Second,
		TopN:    10,
	}, validator, logger)
}

func rankingCandidates(names ...string) []models.CandidatePlace {
	places := make([]models.CandidatePlace, len(names))
	for i, name := range names {
		places[i] = models.CandidatePlace{ID: name, Name: name, Category: models.CategoryDining}
	}
	return places
}

func TestTextRankingSignal_Rank(t *testing.T) {
	var received rankingRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ranking": [2, 0, 1]}`))
	}))
	defer server.Close()

	signal := newTestRankingSignal(t, server.URL)

	ranking, err := signal.Rank(
		context.Background(),
		rankingCandidates("와인 레스토랑", "국밥집", "칵테일 다이닝"),
		models.ProfileCouple,
		models.TransportWalk,
		"조용한 데이트 코스",
	)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0, 1}, ranking)

	assert.Equal(t, []string{"와인 레스토랑", "국밥집", "칵테일 다이닝"}, received.Places)
	assert.Equal(t, "COUPLE", received.ProfileType)
	assert.Equal(t, "WALK", received.TransportMethod)
	assert.Equal(t, "조용한 데이트 코스", received.Conditions)
	assert.Equal(t, 10, received.TopN)
}

func TestTextRankingSignal_DropsOutOfRangeIndices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ranking": [1, 7, 0]}`))
	}))
	defer server.Close()

	signal := newTestRankingSignal(t, server.URL)

	ranking, err := signal.Rank(
		context.Background(),
		rankingCandidates("국밥집", "카페"),
		models.ProfileAlone,
		models.TransportSubway,
		"혼밥",
	)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, ranking)
}

func TestTextRankingSignal_EmptyCandidates(t *testing.T) {
	signal := newTestRankingSignal(t, "http://127.0.0.1:0")

	ranking, err := signal.Rank(context.Background(), nil, models.ProfileAlone, models.TransportWalk, "")
	require.NoError(t, err)
	assert.Nil(t, ranking)
}

func TestTextRankingSignal_EndpointFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	signal := newTestRankingSignal(t, server.URL)

	_, err := signal.Rank(
		context.Background(),
		rankingCandidates("국밥집"),
		models.ProfileAlone,
		models.TransportWalk,
		"",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestTextRankingSignal_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ranking": ["first", "second"]}`))
	}))
	defer server.Close()

	signal := newTestRankingSignal(t, server.URL)

	_, err := signal.Rank(
		context.Background(),
		rankingCandidates("국밥집"),
		models.ProfileAlone,
		models.TransportWalk,
		"",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed ranking response")
}
