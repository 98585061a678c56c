// # Go CLI Client for the OpenAI Realtime Voice API
//
// This repository provides a Go client and two interactive command-line programs for real-time, two-way voice conversations with an AI assistant over the OpenAI Realtime API WebSocket endpoint. It handles microphone capture, low-latency audio playback, function-call dispatch to registered tools, and interruption of in-flight responses.
package realtime
