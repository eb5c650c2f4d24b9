package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/veloraworld/velora-backend/pkg/config"
	pkgerrors "github.com/veloraworld/velora-backend/pkg/errors"
	"github.com/veloraworld/velora-backend/pkg/logger"
)

var (
	errServiceIDRequired  = errors.New("email service id is required")
	errTemplateIDRequired = errors.New("email template id is required")
	errUserIDRequired     = errors.New("email user id is required")
)

// Client sends transactional emails through the template relay API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	serviceID  string
	templateID string
	userID     string
	logger     *logger.Logger
}

// NewClient validates the relay credentials and builds the sender.
func NewClient(cfg config.EmailConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.ServiceID) == "" {
		return nil, errServiceIDRequired
	}
	if strings.TrimSpace(cfg.TemplateID) == "" {
		return nil, errTemplateIDRequired
	}
	if strings.TrimSpace(cfg.UserID) == "" {
		return nil, errUserIDRequired
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.emailjs.com/api/v1.0"
	}

	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		serviceID:  cfg.ServiceID,
		templateID: cfg.TemplateID,
		userID:     cfg.UserID,
		logger:     logg,
	}, nil
}

type sendRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	TemplateParams map[string]any `json:"template_params"`
}

// Send posts the template parameters to the relay. The relay renders the
// template itself, so callers only supply the variable substitutions.
func (c *Client) Send(ctx context.Context, params map[string]any) error {
	body, err := json.Marshal(sendRequest{
		ServiceID:      c.serviceID,
		TemplateID:     c.templateID,
		UserID:         c.userID,
		TemplateParams: params,
	})
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	url := c.baseURL + "/email/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "email relay unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if c.logger != nil {
			c.logger.Info(c.logger.WithField(ctx, "template_id", c.templateID), "email dispatched")
		}
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("email relay returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
}
