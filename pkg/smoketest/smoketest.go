// Package smoketest exercises the tenant-scoped API surface end to end:
// login, tenant-scoped customer creation and customer listing. It replaces
// the old ad-hoc curl script with a typed client whose verdicts can also be
// asserted on in tests.
package smoketest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/zphere-io/tenantctl/pkg/orchestrator"
)

// Client talks to the backend API. BaseURL should already include the API
// prefix, e.g. http://localhost:8000/api/v1.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Session is the authenticated context returned by Login. The organization
// fields feed the tenant-identifying headers on every subsequent request.
type Session struct {
	AccessToken      string
	UserEmail        string
	Role             string
	OrganizationID   string
	OrganizationSlug string
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	User        struct {
		Email          string `json:"email"`
		Role           string `json:"role"`
		OrganizationID string `json:"organization_id"`
		Organization   struct {
			Name string `json:"name"`
			Slug string `json:"slug"`
		} `json:"organization"`
	} `json:"user"`
}

// Login authenticates against the login endpoint and extracts the access
// token and organization context from the JSON response.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/auth/login", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &orchestrator.RemoteRequestError{Status: resp.StatusCode, Body: body}
	}

	var parsed loginResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse login response: %w", err)
	}
	if parsed.AccessToken == "" {
		return nil, fmt.Errorf("login response carried no access token")
	}

	return &Session{
		AccessToken:      parsed.AccessToken,
		UserEmail:        parsed.User.Email,
		Role:             parsed.User.Role,
		OrganizationID:   parsed.User.OrganizationID,
		OrganizationSlug: parsed.User.Organization.Slug,
	}, nil
}

// TenantHeaders returns the headers that scope a request to the session's
// organization.
func (s *Session) TenantHeaders() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+s.AccessToken)
	h.Set("Content-Type", "application/json")
	h.Set("X-Tenant-Type", "tenant")
	h.Set("X-Tenant-Slug", s.OrganizationSlug)
	h.Set("X-Tenant-Id", s.OrganizationID)
	return h
}

// TokenExpiry parses the access token without verifying its signature and
// returns the exp claim. The smoke test holds no signing key; this only
// checks the token is well formed and not already expired.
func (s *Session) TokenExpiry() (time.Time, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(s.AccessToken, claims); err != nil {
		return time.Time{}, fmt.Errorf("malformed access token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("access token has no exp claim")
	}
	return exp.Time, nil
}

// Customer mirrors the API's customer payload.
type Customer struct {
	ID          string `json:"id,omitempty"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	CompanyName string `json:"company_name,omitempty"`
}

// CreateCustomer issues a tenant-scoped customer creation and returns the
// response status alongside the created customer when the backend sent one.
func (c *Client) CreateCustomer(ctx context.Context, s *Session, cust Customer) (int, *Customer, error) {
	payload, err := json.Marshal(cust)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/customers/", bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header = s.TenantHeaders()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("customer creation request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}

	if resp.StatusCode != http.StatusCreated {
		return resp.StatusCode, nil, nil
	}

	var created Customer
	if err := json.Unmarshal(body, &created); err != nil {
		return resp.StatusCode, nil, nil
	}
	return resp.StatusCode, &created, nil
}

// ListCustomers issues a tenant-scoped customer list.
func (c *Client) ListCustomers(ctx context.Context, s *Session) (int, []Customer, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/customers/", nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header = s.TenantHeaders()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("customer list request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil, nil
	}

	var customers []Customer
	if err := json.Unmarshal(body, &customers); err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to parse customer list: %w", err)
	}
	return resp.StatusCode, customers, nil
}

// Verdict classifies a customer-creation response status.
type Verdict string

const (
	VerdictCreated          Verdict = "customer created"
	VerdictPermissionDenied Verdict = "permission denied"
	VerdictAuthFailed       Verdict = "authentication failed"
	VerdictUnexpected       Verdict = "unexpected status"
)

// ClassifyCreate maps a creation status code to its verdict.
func ClassifyCreate(status int) Verdict {
	switch status {
	case http.StatusCreated:
		return VerdictCreated
	case http.StatusForbidden:
		return VerdictPermissionDenied
	case http.StatusUnauthorized:
		return VerdictAuthFailed
	default:
		return VerdictUnexpected
	}
}

// Run executes the full smoke sequence, printing a verdict per step. Any
// verdict other than created is an error so pipelines notice.
func (c *Client) Run(ctx context.Context, email, password string, out io.Writer) error {
	session, err := c.Login(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Authenticated as %s (%s)\n", session.UserEmail, session.Role)

	if exp, err := session.TokenExpiry(); err == nil {
		fmt.Fprintf(out, "Access token expires at %s\n", exp.Format(time.RFC3339))
	}

	status, created, err := c.CreateCustomer(ctx, session, Customer{
		FirstName:   "John",
		LastName:    "Doe",
		Email:       "john@example.com",
		CompanyName: "Acme Corp",
	})
	if err != nil {
		return err
	}

	verdict := ClassifyCreate(status)
	fmt.Fprintf(out, "Create customer: %s (status %d)\n", verdict, status)
	if verdict != VerdictCreated {
		return fmt.Errorf("customer creation: %s (status %d)", verdict, status)
	}
	if created != nil && created.ID != "" {
		fmt.Fprintf(out, "Created customer %s\n", created.ID)
	}

	status, customers, err := c.ListCustomers(ctx, session)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("customer list returned status %d", status)
	}
	fmt.Fprintf(out, "Customers visible in tenant: %d\n", len(customers))

	return nil
}
