// Package server owns the listening endpoint and the broadcast loop
// lifetime. It exposes the WebSocket stream endpoint that accepts clients,
// performs the welcome handshake and watches each connection until it
// closes, plus the observability endpoints (health, metrics, version,
// stats).
package server
