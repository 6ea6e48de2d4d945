package devops

import (
	"context"
	"errors"
	"time"
)

// Client is the interface for interacting with the Azure DevOps work item tracking API.
type Client interface {
	GetWorkItemUpdates(ctx context.Context, id int) ([]UpdateDTO, error)
	GetWorkItem(ctx context.Context, id int) (*WorkItemDTO, error)
	QueryWorkItemIDs(ctx context.Context, queryID string) ([]int, error)
}

// Config holds the authentication and connection settings for Azure DevOps.
type Config struct {
	BaseURL      string
	Organization string
	Project      string

	// Personal Access Token, sent as basic auth with an empty user name.
	Token string

	// Performance Settings
	RequestsPerSecond float64
	Timeout           time.Duration
}

const (
	DefaultBaseURL = "https://dev.azure.com"
	APIVersion     = "7.0"
)

// Errors returned by Client implementations. Callers classify failures with errors.Is.
var (
	ErrUnauthorized = errors.New("azure devops authentication failed")
	ErrNotFound     = errors.New("azure devops resource not found")
	ErrRateLimited  = errors.New("azure devops rate limit exceeded")
	ErrUnavailable  = errors.New("azure devops unavailable")
)

// NewClient creates a new Azure DevOps client based on the provided configuration.
func NewClient(cfg Config) Client {
	return NewRESTClient(cfg)
}
