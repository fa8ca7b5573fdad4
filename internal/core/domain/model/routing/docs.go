// Package routing defines the route value objects shared by the routing
// client and the route provider.
package routing
