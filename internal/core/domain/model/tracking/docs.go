// Package tracking holds live entity positions and the transporter movement
// model used by the location tracker.
package tracking
