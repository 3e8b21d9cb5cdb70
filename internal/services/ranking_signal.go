package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/insertapp/insert/internal/config"
	"github.com/insertapp/insert/internal/validation"
	"github.com/insertapp/insert/pkg/models"
)

// TextRankingSignal asks a remote text-generation endpoint to order the
// candidate list for the request. It is best-effort enrichment only: every
// error path returns an error that the caller swallows, and the pipeline
// proceeds heuristic-only.
type TextRankingSignal struct {
	httpClient *http.Client
	cfg        *config.RankingConfig
	validator  *validation.SchemaValidator
	logger     *logrus.Logger
}

type rankingRequest struct {
	Places          []string `json:"places"`
	ProfileType     string   `json:"profile_type"`
	TransportMethod string   `json:"transport_method"`
	Conditions      string   `json:"conditions"`
	TopN            int      `json:"top_n"`
}

type rankingResponse struct {
	Ranking []int `json:"ranking"`
}

func NewTextRankingSignal(cfg *config.RankingConfig, validator *validation.SchemaValidator, logger *logrus.Logger) *TextRankingSignal {
	return &TextRankingSignal{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		validator:  validator,
		logger:     logger,
	}
}

// Rank returns candidate indices in preference order. Indices outside the
// candidate range are dropped rather than propagated.
func (r *TextRankingSignal) Rank(
	ctx context.Context,
	candidates []models.CandidatePlace,
	profile models.ProfileType,
	transport models.TransportMethod,
	conditions string,
) ([]int, error) {

	if len(candidates) == 0 {
		return nil, nil
	}

	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}

	payload, err := json.Marshal(rankingRequest{
		Places:          names,
		ProfileType:     string(profile),
		TransportMethod: string(transport),
		Conditions:      conditions,
		TopN:            r.cfg.TopN,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ranking request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build ranking request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ranking request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ranking endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read ranking response: %w", err)
	}

	if err := r.validator.ValidateRankingResponse(body); err != nil {
		return nil, fmt.Errorf("malformed ranking response: %w", err)
	}

	var parsed rankingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode ranking response: %w", err)
	}

	var ranking []int
	for _, idx := range parsed.Ranking {
		if idx >= 0 && idx < len(candidates) {
			ranking = append(ranking, idx)
		}
	}

	r.logger.WithField("ranked", len(ranking)).Debug("Ranking signal received")
	return ranking, nil
}
