// Package chat models the per-order conversation between buyer, seller and
// transporter: a bounded, ephemeral message log with a flood gate.
package chat
