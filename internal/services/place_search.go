package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/insertapp/insert/internal/config"
	"github.com/insertapp/insert/internal/validation"
	"github.com/insertapp/insert/pkg/models"
)

// Kakao local-search category group codes.
const (
	groupCodeAttraction = "AT4"
	groupCodeCulture    = "CT1"
	groupCodeRestaurant = "FD6"
	groupCodeCafe       = "CE7"
)

// Kakao caps paginated category searches at 3 pages of 15 results.
const maxProviderPages = 3

// KakaoPlaceGateway implements PlaceSearchGateway against the Kakao local
// REST API: the venue is resolved to coordinates once via keyword search,
// then candidates come from category searches around those coordinates.
type KakaoPlaceGateway struct {
	httpClient *http.Client
	cfg        *config.PlacesConfig
	validator  *validation.SchemaValidator
	logger     *logrus.Logger

	// venue name -> venueCoords; venues repeat across backfill rounds
	venueCache sync.Map
}

type venueCoords struct {
	x string // longitude
	y string // latitude
}

type kakaoDocument struct {
	ID                string `json:"id"`
	PlaceName         string `json:"place_name"`
	CategoryName      string `json:"category_name"`
	CategoryGroupCode string `json:"category_group_code"`
	AddressName       string `json:"address_name"`
	RoadAddressName   string `json:"road_address_name"`
	X                 string `json:"x"`
	Y                 string `json:"y"`
	Distance          string `json:"distance"`
}

type kakaoSearchResponse struct {
	Documents []kakaoDocument `json:"documents"`
	Meta      struct {
		IsEnd      bool `json:"is_end"`
		TotalCount int  `json:"total_count"`
	} `json:"meta"`
}

func NewKakaoPlaceGateway(cfg *config.PlacesConfig, validator *validation.SchemaValidator, logger *logrus.Logger) *KakaoPlaceGateway {
	return &KakaoPlaceGateway{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		validator:  validator,
		logger:     logger,
	}
}

// SearchNear returns roughly count candidates around the venue, drawn evenly
// from the activity, dining and cafe category groups. An unknown venue or an
// empty provider result yields an empty slice, not an error.
func (g *KakaoPlaceGateway) SearchNear(ctx context.Context, venueName string, count int) ([]models.CandidatePlace, error) {
	coords, ok, err := g.resolveVenue(ctx, venueName)
	if err != nil {
		return nil, err
	}
	if !ok {
		g.logger.WithField("venue", venueName).Warn("Venue not found by provider")
		return nil, nil
	}

	perGroup := (count + 2) / 3
	groups := []struct {
		codes    []string
		category models.Category
	}{
		{[]string{groupCodeAttraction, groupCodeCulture}, models.CategoryActivity},
		{[]string{groupCodeRestaurant}, models.CategoryDining},
		{[]string{groupCodeCafe}, models.CategoryCafe},
	}

	var results []models.CandidatePlace
	for _, group := range groups {
		places, err := g.fetchGroup(ctx, coords, group.codes, group.category, perGroup)
		if err != nil {
			return nil, err
		}
		results = append(results, places...)
	}

	if len(results) > count {
		results = results[:count]
	}
	return results, nil
}

// SearchNearByCategory returns candidates scoped to one category, used by
// backfill rounds.
func (g *KakaoPlaceGateway) SearchNearByCategory(ctx context.Context, venueName string, category models.Category, count int) ([]models.CandidatePlace, error) {
	coords, ok, err := g.resolveVenue(ctx, venueName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var codes []string
	switch category {
	case models.CategoryActivity:
		codes = []string{groupCodeAttraction, groupCodeCulture}
	case models.CategoryDining:
		codes = []string{groupCodeRestaurant}
	case models.CategoryCafe:
		codes = []string{groupCodeCafe}
	default:
		return nil, fmt.Errorf("unknown category: %s", category)
	}

	return g.fetchGroup(ctx, coords, codes, category, count)
}

func (g *KakaoPlaceGateway) fetchGroup(ctx context.Context, coords venueCoords, codes []string, category models.Category, count int) ([]models.CandidatePlace, error) {
	var results []models.CandidatePlace
	for _, code := range codes {
		if len(results) >= count {
			break
		}
		places, err := g.fetchCategory(ctx, coords, code, category, count-len(results))
		if err != nil {
			return nil, err
		}
		results = append(results, places...)
	}
	return results, nil
}

func (g *KakaoPlaceGateway) fetchCategory(ctx context.Context, coords venueCoords, code string, category models.Category, count int) ([]models.CandidatePlace, error) {
	var results []models.CandidatePlace

	for page := 1; page <= maxProviderPages && len(results) < count; page++ {
		params := url.Values{}
		params.Set("category_group_code", code)
		params.Set("x", coords.x)
		params.Set("y", coords.y)
		params.Set("radius", strconv.Itoa(g.cfg.RadiusMeters))
		params.Set("sort", "distance")
		params.Set("size", strconv.Itoa(g.cfg.PageSize))
		params.Set("page", strconv.Itoa(page))

		resp, err := g.get(ctx, "/v2/local/search/category.json", params)
		if err != nil {
			return nil, err
		}

		for _, doc := range resp.Documents {
			results = append(results, docToCandidate(doc, category))
			if len(results) >= count {
				break
			}
		}

		if resp.Meta.IsEnd {
			break
		}
	}

	return results, nil
}

// resolveVenue finds the venue's coordinates via keyword search. The second
// return value is false when the provider knows no such place.
func (g *KakaoPlaceGateway) resolveVenue(ctx context.Context, venueName string) (venueCoords, bool, error) {
	if cached, ok := g.venueCache.Load(venueName); ok {
		return cached.(venueCoords), true, nil
	}

	params := url.Values{}
	params.Set("query", venueName)
	params.Set("size", "1")

	resp, err := g.get(ctx, "/v2/local/search/keyword.json", params)
	if err != nil {
		return venueCoords{}, false, err
	}
	if len(resp.Documents) == 0 {
		return venueCoords{}, false, nil
	}

	coords := venueCoords{x: resp.Documents[0].X, y: resp.Documents[0].Y}
	g.venueCache.Store(venueName, coords)
	return coords, true, nil
}

func (g *KakaoPlaceGateway) get(ctx context.Context, path string, params url.Values) (*kakaoSearchResponse, error) {
	reqURL := g.cfg.BaseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider request: %w", err)
	}
	req.Header.Set("Authorization", "KakaoAK "+g.cfg.APIKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	if err := g.validator.ValidatePlaceSearchResponse(body); err != nil {
		return nil, fmt.Errorf("malformed provider response: %w", err)
	}

	var parsed kakaoSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}

	return &parsed, nil
}

func docToCandidate(doc kakaoDocument, category models.Category) models.CandidatePlace {
	c := models.CandidatePlace{
		ID:       doc.ID,
		Name:     doc.PlaceName,
		Category: category,
	}

	if doc.CategoryName != "" {
		description := doc.CategoryName
		c.Description = &description
	}

	address := doc.RoadAddressName
	if address == "" {
		address = doc.AddressName
	}
	if address != "" {
		c.Address = &address
	}

	if lat, err := strconv.ParseFloat(doc.Y, 64); err == nil {
		c.Latitude = &lat
	}
	if lon, err := strconv.ParseFloat(doc.X, 64); err == nil {
		c.Longitude = &lon
	}
	if meters, err := strconv.ParseFloat(doc.Distance, 64); err == nil {
		km := meters / 1000.0
		c.DistanceKm = &km
	}

	return c
}
