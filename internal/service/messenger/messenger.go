package messenger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"com.charlotteservicehub.autotext/internal/boot"
	"com.charlotteservicehub.autotext/internal/model"
)

// Service submits outbound messages to the HTTP SMS gateway. Long bodies
// are split into parts; each part carries its own correlation ID which the
// gateway echoes back in delivery receipts. Submission is at-most-once:
// the service never retries.
type Service struct {
	gatewayURL string
	apiKey     string
	client     *http.Client
}

func New(config *boot.Config) *Service {
	return &Service{
		gatewayURL: config.Gateway.URL,
		apiKey:     config.Gateway.APIKey,
		client:     &http.Client{Timeout: config.Gateway.Timeout},
	}
}

type gatewayPart struct {
	ID   string `json:"id"`
	Body string `json:"body"`
}

type gatewayRequest struct {
	To    string        `json:"to"`
	Parts []gatewayPart `json:"parts"`
}

// Send submits a message and returns the part correlation IDs on success.
func (s *Service) Send(number, body string) ([]string, error) {
	if s.gatewayURL == "" {
		return nil, fmt.Errorf("no SMS gateway configured")
	}

	parts := SplitParts(body)
	request := gatewayRequest{To: number}
	partIDs := make([]string, 0, len(parts))
	for _, part := range parts {
		id := model.CreateID()
		partIDs = append(partIDs, id)
		request.Parts = append(request.Parts, gatewayPart{ID: id, Body: part})
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("marshalling gateway request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.gatewayURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submitting to gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	return partIDs, nil
}
