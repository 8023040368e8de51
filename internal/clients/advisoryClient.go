package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/RobsonDevCode/lockaudit/internal/clients/models"
	"github.com/RobsonDevCode/lockaudit/internal/configuration"
	"github.com/sony/gobreaker"
)

var (
	// connection, timeout or unexpected status talking to the advisory service
	ErrTransport = errors.New("advisory service transport failure")
	// the service explicitly rejected the request (auth or quota)
	ErrAuthOrQuota = errors.New("advisory service rejected the request")
	// the response body could not be mapped to advisories
	ErrResponseSchema = errors.New("advisory service response schema invalid")
)

type AdvisoryClientService interface {
	SubmitPayload(payload models.AuditPayload, ctx context.Context) ([]models.Advisory, error)
}

type AdvisoryClient struct {
	client  *http.Client
	cb      *gobreaker.CircuitBreaker
	baseUrl *url.URL
}

func NewAdvisoryClient(config *configuration.Config) (*AdvisoryClient, error) {
	client := &http.Client{
		Timeout: time.Duration(config.AdvisoryClientSettings.TimeoutSeconds) * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	cbSettings := gobreaker.Settings{
		Name:        "advisory-client",
		MaxRequests: 5,
		Interval:    3 * time.Second,
		Timeout:     20 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			fmt.Printf("Circuit breaker state changed from %v to %v\n", from, to)
		},
	}

	baseUrl, err := url.Parse(config.AdvisoryClientSettings.BaseUrl)
	if err != nil {
		return nil, fmt.Errorf("error parsing base url to a url type, %w", err)
	}
	cb := gobreaker.NewCircuitBreaker(cbSettings)

	return &AdvisoryClient{
		client:  client,
		cb:      cb,
		baseUrl: baseUrl,
	}, nil
}

// SubmitPayload posts one audit payload to the advisory service, one outbound
// call per invocation and no retry, the engine decides what a failure means.
func (c *AdvisoryClient) SubmitPayload(payload models.AuditPayload, ctx context.Context) ([]models.Advisory, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal audit payload: %w", err)
	}

	cbResult, err := c.cb.Execute(func() (interface{}, error) {
		request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseUrl.String(), bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create http request: %w", err)
		}
		request.Header.Set("Content-Type", "application/json")

		response, err := c.client.Do(request)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransport, err)
		}
		defer response.Body.Close()

		if response.StatusCode != http.StatusOK {
			return nil, handleAdvisoryClientError(response)
		}

		responseBody, err := io.ReadAll(response.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: reading response body: %v", ErrTransport, err)
		}

		return json.RawMessage(responseBody), nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrTransport, err)
		}
		return nil, err
	}

	raw, ok := cbResult.(json.RawMessage)
	if !ok {
		return nil, fmt.Errorf("unexpected response type when converting response")
	}

	// parsed outside the breaker, a malformed body is local to the response
	// and must never accumulate into an open circuit
	return parseAdvisories(raw)
}

// parseAdvisories accepts both response shapes the service is known to emit,
// an object keyed by advisory id and a bare array.
func parseAdvisories(raw json.RawMessage) ([]models.Advisory, error) {
	trimmed := strings.TrimSpace(string(raw))
	var advisories []models.Advisory

	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(raw, &advisories); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResponseSchema, err)
		}
	} else {
		var wrapped models.AdvisoriesResponse
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResponseSchema, err)
		}
		if wrapped.Advisories == nil {
			return nil, fmt.Errorf("%w: advisories object is missing", ErrResponseSchema)
		}
		for _, advisory := range wrapped.Advisories {
			advisories = append(advisories, advisory)
		}
	}

	for _, advisory := range advisories {
		if advisory.ModuleName == "" || advisory.VulnerableVersions == "" {
			return nil, fmt.Errorf("%w: advisory is missing module name or vulnerable range", ErrResponseSchema)
		}
	}

	return advisories, nil
}

func handleAdvisoryClientError(response *http.Response) error {
	var clientError models.Error
	// body decode is best effort, the status code is what classifies the failure
	_ = json.NewDecoder(response.Body).Decode(&clientError)

	switch response.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d, %v", ErrAuthOrQuota, response.StatusCode, clientError)
	default:
		return fmt.Errorf("%w: status %d, %v", ErrTransport, response.StatusCode, clientError)
	}
}
