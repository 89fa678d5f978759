package nhtsa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"car-finder/internal/contextkeys"
	"car-finder/internal/core/domain"
	"car-finder/internal/core/port"

	"golang.org/x/time/rate"
)

// Client расшифровывает VIN через публичный vPIC API NHTSA.
// Запросы ограничены по частоте, чтобы не упереться в лимиты API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(baseURL string, rps float64) *Client {
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

type decodeResponse struct {
	Count   int            `json:"Count"`
	Results []decodeResult `json:"Results"`
}

type decodeResult struct {
	VIN       string `json:"VIN"`
	Make      string `json:"Make"`
	Model     string `json:"Model"`
	ModelYear string `json:"ModelYear"`
	Trim      string `json:"Trim"`
	BodyClass string `json:"BodyClass"`
	DriveType string `json:"DriveType"`
	FuelType  string `json:"FuelTypePrimary"`
}

func (c *Client) Decode(ctx context.Context, vin string) (*domain.VehicleInfo, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	clientLogger := logger.WithFields(port.Fields{
		"component": "NHTSAClient",
		"method":    "Decode",
		"vin":       vin,
	})

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	reqURL := fmt.Sprintf("%s/decodevinvaluesextended/%s?format=json", c.baseURL, url.PathEscape(vin))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		clientLogger.Error("Failed to perform request to NHTSA", err, nil)
		return nil, fmt.Errorf("nhtsa request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("nhtsa returned non-success status code %d: %s", resp.StatusCode, string(bodyBytes))
		clientLogger.Error("Received error response from NHTSA", err, port.Fields{"status_code": resp.StatusCode})
		return nil, err
	}

	var decoded decodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		clientLogger.Error("Failed to decode NHTSA response", err, nil)
		return nil, fmt.Errorf("failed to decode nhtsa response: %w", err)
	}

	if len(decoded.Results) == 0 {
		return nil, nil
	}
	r := decoded.Results[0]
	if r.Make == "" && r.Model == "" && r.ModelYear == "" {
		clientLogger.Debug("NHTSA knows nothing about this VIN", nil)
		return nil, nil
	}

	info := &domain.VehicleInfo{
		VIN:       r.VIN,
		Make:      r.Make,
		Model:     r.Model,
		ModelYear: r.ModelYear,
		Trim:      r.Trim,
		BodyClass: r.BodyClass,
		DriveType: r.DriveType,
		FuelType:  r.FuelType,
	}
	if info.VIN == "" {
		info.VIN = vin
	}
	return info, nil
}
