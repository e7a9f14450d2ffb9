// Package session provides a resilient session layer over a websocket
// transport.
//
// A Session is one long-lived logical handle over a sequence of
// physical connections to a single peer. The Supervisor hides the
// connect/reconnect cycle behind it: it dials with a timeout, runs a
// keepalive receiver plus command and dispatch loops for the lifetime
// of each physical connection, classifies failures, and reconnects
// with exponential backoff until a clean close, retry exhaustion, or
// shutdown ends the session.
//
// Producer and consumer timing is decoupled from transport timing:
// Session.Send enqueues and never blocks, sends issued while
// disconnected are delivered in order once reconnected, and inbound
// payloads are handed to the caller's OnMessage handler in wire order.
package session
