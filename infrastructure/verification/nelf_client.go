package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"celestia/domain/entities"

	log "github.com/sirupsen/logrus"
)

const (
	institutionsPath      = "/services/institutions"
	instituteDetailsPath  = "/student/verify/institute-details"
	examRecordVerifyPath  = "/student/register/jamb/verify"
	maxResponseBodyBytes  = 1 << 20
	defaultRequestTimeout = 15 * time.Second
)

// nelfResponse is the provider's common response shape
type nelfResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// NELFClient verifies students against the national student loan registry
type NELFClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewNELFClient creates a client for the provider at baseURL
func NewNELFClient(baseURL string, timeout time.Duration) *NELFClient {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &NELFClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ListInstitutions returns the institutions known to the provider
func (c *NELFClient) ListInstitutions(ctx context.Context) ([]entities.Institution, error) {
	data, err := c.do(ctx, http.MethodGet, institutionsPath, nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch institutions: %w", err)
	}

	var institutions []entities.Institution
	if err := json.Unmarshal(data, &institutions); err != nil {
		return nil, fmt.Errorf("%w: malformed institutions payload: %v", entities.ErrVerificationFailed, err)
	}
	return institutions, nil
}

// VerifyInstitute checks a matriculation number and returns the bearer token
// needed for the exam record check
func (c *NELFClient) VerifyInstitute(ctx context.Context, matricNumber, providerID string) (string, error) {
	body := map[string]string{
		"matric_number": matricNumber,
		"provider_id":   providerID,
	}
	data, err := c.do(ctx, http.MethodPost, instituteDetailsPath, body, "")
	if err != nil {
		return "", fmt.Errorf("institute verification failed: %w", err)
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.Token == "" {
		return "", fmt.Errorf("%w: institute verification returned no token", entities.ErrVerificationFailed)
	}
	return payload.Token, nil
}

// VerifyExamRecord checks the exam number and date of birth and returns the
// student's verified profile
func (c *NELFClient) VerifyExamRecord(ctx context.Context, dateOfBirth, examNumber, token string) (*entities.StudentProfile, error) {
	body := map[string]string{
		"date_of_birth": dateOfBirth,
		"jamb_number":   examNumber,
	}
	data, err := c.do(ctx, http.MethodPost, examRecordVerifyPath, body, token)
	if err != nil {
		return nil, fmt.Errorf("exam record verification failed: %w", err)
	}

	var profile entities.StudentProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("%w: malformed student profile: %v", entities.ErrVerificationFailed, err)
	}
	if profile.RegNumber == "" {
		return nil, fmt.Errorf("%w: student profile has no registration number", entities.ErrVerificationFailed)
	}
	return &profile, nil
}

// do sends a request and returns the data field of a successful response.
// Transport errors, non-200 codes and status=false all map to ErrVerificationFailed.
func (c *NELFClient) do(ctx context.Context, method, path string, body any, bearer string) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrVerificationFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", entities.ErrVerificationFailed, err)
	}

	log.WithFields(log.Fields{
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("Verification provider responded")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned HTTP %d", entities.ErrVerificationFailed, resp.StatusCode)
	}

	var envelope nelfResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", entities.ErrVerificationFailed, err)
	}
	if !envelope.Status {
		return nil, fmt.Errorf("%w: %s", entities.ErrVerificationFailed, envelope.Message)
	}
	return envelope.Data, nil
}
