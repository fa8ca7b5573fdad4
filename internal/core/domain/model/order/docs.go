// Package order holds the Order aggregate and its status state machine.
//
// The package includes:
//   - Order: the aggregate root tying buyer, seller, transporter and items together
//   - Status: the lifecycle state machine with its transition table
//   - Party: an immutable snapshot of one participant
//   - Item: one priced order line
//
// Key business rules:
//   - Status follows Created -> TransportAssigned -> PickedUp -> InTransit -> Delivered -> Completed
//   - Cancelled is reachable from Created, TransportAssigned and PickedUp through the table,
//     and from any non-terminal status through Cancel
//   - A transporter is assigned exactly once, only while the order is Created
//   - The delivery fee is round(total × 0.10 + 50)
package order
