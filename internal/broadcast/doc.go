// Package broadcast implements the bridge between the synchronous pose
// source and the asynchronous WebSocket fan-out.
//
// The SampleQueue decouples the producer cadence from the broadcast cadence.
// The Broadcaster drains the queue on a short poll interval and fans each
// batch out to a point-in-time snapshot of the ClientRegistry. Per-connection
// write goroutines with bounded buffers keep one stalled client from delaying
// the others; a failed or stalled send evicts only that client.
package broadcast
