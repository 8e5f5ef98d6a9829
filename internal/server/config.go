package server

// Config represents the configuration of the Server.
type Config struct {
	// Address for the HTTP server to listen on. It serves metrics and
	// status.
	HTTPAddr string `yaml:"http_addr"`
	// Address for the gRPC server to listen on. It serves the health
	// service. Empty disables gRPC.
	GRPCAddr string `yaml:"grpc_addr"`
}

// Default sets the default values for the configuration.
func (m *Config) Default() {
	m.HTTPAddr = "[::1]:14180"
	m.GRPCAddr = "[::1]:14181"
}
