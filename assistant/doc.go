// Package assistant defines the boundary to the automated assistant peer.
//
// The assistant is an external collaborator: given a prompt, the prior
// conversation and optional media it returns response text. It never fails
// into the messaging core; problems are reported in-band as text.
//
// Tool calls issued by the assistant are parsed into a closed set of typed
// variants by ParseToolCall before anything acts on them.
package assistant
