package httpclient

import (
	"context"
	"testing"
	"time"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/caseservice/config"
)

func TestFromCentralConfig(t *testing.T) {
	cfg := FromCentralConfig(config.UpstreamConfig{BaseURL: "http://ums/", RetryCount: 2})
	assert.Equal(t, "http://ums", cfg.BaseURL)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, 2, cfg.RetryCount)

	cfg = FromCentralConfig(config.UpstreamConfig{BaseURL: "http://ums", TimeoutSeconds: 2})
	assert.Equal(t, 2*time.Second, cfg.Timeout)
}

func TestCheckStatus(t *testing.T) {
	defer gock.Off()

	client := New(Config{BaseURL: "http://upstream.local"})
	gock.InterceptClient(client.GetClient())

	tests := []struct {
		status int
		want   error
	}{
		{200, nil},
		{401, ErrUnauthorized},
		{403, ErrUnauthorized},
		{404, ErrNotFound},
		{500, ErrUnavailable},
		{502, ErrUnavailable},
	}
	for _, tt := range tests {
		gock.New("http://upstream.local").Get("/thing").Reply(tt.status)

		err := CheckStatus(client.R().SetContext(context.Background()).Get("/thing"))
		if tt.want == nil {
			assert.NoError(t, err, "status %d", tt.status)
		} else {
			assert.ErrorIs(t, err, tt.want, "status %d", tt.status)
		}
	}
}

func TestCheckStatusTransportError(t *testing.T) {
	defer gock.Off()

	client := New(Config{BaseURL: "http://upstream.local"})
	gock.InterceptClient(client.GetClient())
	gock.New("http://upstream.local").Get("/thing").ReplyError(assert.AnError)

	err := CheckStatus(client.R().Get("/thing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}
