package irradiance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"Helio/internal/log"

	"golang.org/x/time/rate"
)

// OpenMeteo reads daily shortwave radiation sums from the Open-Meteo
// historical weather archive.
type OpenMeteo struct {
	BaseURL string
	Client  *http.Client
	Limiter *rate.Limiter
}

// NewOpenMeteo creates an archive client. An empty baseURL defaults to the
// public archive; rps <= 0 disables request pacing.
func NewOpenMeteo(baseURL string, timeout time.Duration, rps float64) *OpenMeteo {
	if baseURL == "" {
		baseURL = "https://archive-api.open-meteo.com"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &OpenMeteo{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
		Limiter: limiter,
	}
}

type archiveResponse struct {
	Daily *struct {
		Time      []string   `json:"time"`
		Shortwave []*float64 `json:"shortwave_radiation_sum"`
	} `json:"daily"`
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// DailyHorizontal performs a single request; retries belong to Retrying.
func (c *OpenMeteo) DailyHorizontal(ctx context.Context, lat, lon float64, date time.Time) (float64, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	u, err := url.Parse(c.BaseURL + "/v1/archive")
	if err != nil {
		return 0, fmt.Errorf("invalid base URL: %w", err)
	}
	day := date.Format("2006-01-02")
	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("start_date", day)
	q.Set("end_date", day)
	q.Set("daily", "shortwave_radiation_sum")
	q.Set("timezone", "UTC")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	log.Debugw("irradiance response", "status", resp.StatusCode, "date", day, "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return 0, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var body archiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	if body.Error {
		return 0, fmt.Errorf("archive error: %s", body.Reason)
	}
	if body.Daily == nil || len(body.Daily.Shortwave) == 0 || body.Daily.Shortwave[0] == nil {
		return 0, fmt.Errorf("%w: %s at %.4f,%.4f", ErrNoData, day, lat, lon)
	}
	return *body.Daily.Shortwave[0] * MJToKWh, nil
}
