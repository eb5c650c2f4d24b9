package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veloraworld/velora-backend/pkg/config"
	pkgerrors "github.com/veloraworld/velora-backend/pkg/errors"
)

func validEmailConfig(baseURL string) config.EmailConfig {
	return config.EmailConfig{
		BaseURL:    baseURL,
		ServiceID:  "svc_123",
		TemplateID: "tpl_order",
		UserID:     "user_abc",
	}
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(config.EmailConfig{TemplateID: "t", UserID: "u"}, nil)
	assert.ErrorIs(t, err, errServiceIDRequired)

	_, err = NewClient(config.EmailConfig{ServiceID: "s", UserID: "u"}, nil)
	assert.ErrorIs(t, err, errTemplateIDRequired)

	_, err = NewClient(config.EmailConfig{ServiceID: "s", TemplateID: "t"}, nil)
	assert.ErrorIs(t, err, errUserIDRequired)
}

func TestSendPostsTemplateParams(t *testing.T) {
	var captured sendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/email/send", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(validEmailConfig(server.URL), nil)
	require.NoError(t, err)

	err = client.Send(context.Background(), map[string]any{
		"order_id":      "ord-1",
		"customer_name": "Ada",
	})
	require.NoError(t, err)

	assert.Equal(t, "svc_123", captured.ServiceID)
	assert.Equal(t, "tpl_order", captured.TemplateID)
	assert.Equal(t, "user_abc", captured.UserID)
	assert.Equal(t, "ord-1", captured.TemplateParams["order_id"])
}

func TestSendMapsRelayFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad template", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client, err := NewClient(validEmailConfig(server.URL), nil)
	require.NoError(t, err)

	err = client.Send(context.Background(), map[string]any{})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
}
