package es

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
)

type Config struct {
	URL      string
	User     string
	Password string
	// Transport overrides the HTTP transport; nil uses the client default.
	Transport http.RoundTripper
}

// NewClient connects and checks the cluster with an Info call.
func NewClient(ctx context.Context, cfg Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("elasticsearch info: %s: %s", res.Status(), body)
	}

	return client, nil
}
