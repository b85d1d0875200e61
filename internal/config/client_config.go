package config

import "time"

type ClientConfig interface {
	GetHTTPTimeout() time.Duration
	GetLoginPath() string
}

type Client struct{}

var _ ClientConfig = Client{}

func (Client) GetHTTPTimeout() time.Duration {
	return 30 * time.Second
}

func (Client) GetLoginPath() string {
	return "/login"
}
