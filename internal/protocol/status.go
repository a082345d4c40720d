package protocol

// Status is returned by the HTTP status endpoint.
type Status struct {
	Name             string `json:"name"`
	IP               string `json:"ip"`
	GesturePort      int    `json:"gesture_port"`
	DiscoveryPort    int    `json:"discovery_port"`
	ActiveSessions   int    `json:"active_sessions"`
	WebSocketClients int    `json:"websocket_clients"`
	Platform         string `json:"platform"`
	Version          string `json:"version"`
}
