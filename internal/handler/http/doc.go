// Package http implements the relay's HTTP surface: the live event stream
// (server-sent events), the control endpoints that restart or log out the
// chat client, the status and history reads, the version endpoint and the
// static dashboard. Tracing, access logging, optional control-token
// authentication and response compression are handled here before requests
// reach the service layer.
package http
