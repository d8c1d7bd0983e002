package predictor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/synaptica-ai/cvdrisk/pkg/common/httpclient"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const maxArtifactBytes = 8 << 20

type RegistryOptions struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	Timeout      time.Duration
	Attempts     int
}

// HTTPSource downloads artifacts from a model registry at
// <base>/models/<model>/latest. When client credentials are configured the
// requests carry an OAuth2 bearer token.
type HTTPSource struct {
	baseURL  string
	client   *http.Client
	attempts int
}

func NewHTTPSource(opts RegistryOptions) (*HTTPSource, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, fmt.Errorf("model registry URL required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 3
	}

	client := httpclient.New(opts.Timeout)
	if opts.ClientID != "" {
		if opts.TokenURL == "" {
			return nil, fmt.Errorf("token URL required for client credentials")
		}
		cc := &clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     opts.TokenURL,
			Scopes:       opts.Scopes,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, client)
		client = cc.Client(ctx)
		client.Timeout = opts.Timeout
	}

	return &HTTPSource{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		client:   client,
		attempts: opts.Attempts,
	}, nil
}

func (s *HTTPSource) Describe() string {
	return "http:" + s.baseURL
}

func (s *HTTPSource) Fetch(ctx context.Context, model string) ([]byte, error) {
	target := fmt.Sprintf("%s/models/%s/latest", s.baseURL, url.PathEscape(model))
	var content []byte
	err := httpclient.Retry(ctx, s.attempts, 200*time.Millisecond, httpclient.IsRetriable, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			return &httpclient.StatusError{Code: resp.StatusCode, URL: target}
		}
		content, err = io.ReadAll(io.LimitReader(resp.Body, maxArtifactBytes))
		return err
	})
	if err != nil {
		if statusErr, ok := err.(*httpclient.StatusError); ok && statusErr.Code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, target)
		}
		return nil, err
	}
	return content, nil
}
