package otel

// Config holds OTEL exporter configuration.
type Config struct {
	Endpoint       string
	Enabled        bool
	Insecure       bool
	ServiceVersion string
}
