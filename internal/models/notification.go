// internal/models/notification.go
package models

// Template is a reusable message from the externally managed catalog.
// Body may contain literal \n sequences.
type Template struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// RenderedMessage is the output of one render pass.
type RenderedMessage struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
