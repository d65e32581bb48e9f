package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"rosterly/internal/models"
	"rosterly/internal/store"
)

const defaultMembershipTimeout = 10 * time.Second

// MembershipClient calls the membership admission API over HTTP. The base URL
// comes from MEMBERSHIP_SERVICE_URL, so the admission service can live in the
// same process or in another one; either way the call is bounded by the
// client timeout.
type MembershipClient struct {
	BaseURL string
	Client  *http.Client
}

func NewMembershipClient() (*MembershipClient, error) {
	baseURL := os.Getenv("MEMBERSHIP_SERVICE_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("MEMBERSHIP_SERVICE_URL environment variable is not set")
	}

	timeout := defaultMembershipTimeout
	if raw := os.Getenv("MEMBERSHIP_CALL_TIMEOUT_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return nil, fmt.Errorf("invalid MEMBERSHIP_CALL_TIMEOUT_SECONDS: %q", raw)
		}
		timeout = time.Duration(seconds) * time.Second
	}

	return &MembershipClient{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}, nil
}

type membershipResponse struct {
	Status         string                     `json:"status"`
	Message        string                     `json:"message"`
	Data           *models.OrganizationMember `json:"data"`
	OrganizationID string                     `json:"organization_id"`
	Limit          int                        `json:"limit"`
}

// AddMember issues the admission call and maps remote errors back onto the
// domain error types, so callers cannot tell a remote admission service from
// an in-process one.
func (c *MembershipClient) AddMember(ctx context.Context, organizationID, userID string) (*models.OrganizationMember, error) {
	endpoint := fmt.Sprintf("%s/organizations/%s/members/add", c.BaseURL, organizationID)

	payload, err := json.Marshal(map[string]string{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal add-member request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create add-member request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("add-member call failed: %w", err)
	}
	defer resp.Body.Close()

	var res membershipResponse
	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("failed to decode add-member response (status %d): %w", resp.StatusCode, err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		if res.Data == nil {
			return nil, fmt.Errorf("add-member response missing membership data")
		}
		return res.Data, nil
	case http.StatusNotFound:
		return nil, store.ErrNotFound
	case http.StatusConflict:
		if res.OrganizationID != "" {
			return nil, &CapacityError{OrganizationID: res.OrganizationID, Limit: res.Limit}
		}
		return nil, fmt.Errorf("add-member conflict: %s", res.Message)
	default:
		return nil, fmt.Errorf("unexpected add-member status %d: %s", resp.StatusCode, res.Message)
	}
}
