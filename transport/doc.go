// Package transport abstracts one physical connection to a peer.
//
// A Conn is a single connect-to-close lifecycle of the underlying
// socket: it can send payloads, report its ready state, and delivers
// inbound traffic as an ordered event stream ending in exactly one
// close event. The Dialer establishes connections; the WebSocket
// implementation is built on gorilla/websocket.
//
// Session management (reconnects, keepalive, queuing) lives in the
// session package. This package deliberately knows nothing about it.
package transport
