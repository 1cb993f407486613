// Package lamp implements the core orchestration for street lamp nodes:
// the persistent lamp registry, the control/delete pipelines, and the
// fire-and-forget device command format.
//
// # Model
//
// A lamp Record is keyed by node_id and tied to the LoRa gateway
// (gw_id) it is reachable through. Records carry the commanded state
// (lamp_state, lamp_dim) plus the last sensor readings the node
// reported (lux, current_a). Field names match the JSON wire format
// shared with the gateway firmware.
//
// # Pipelines
//
// Control is an atomic upsert: an unknown node is registered with
// column defaults, a known node absorbs only the fields present in the
// request. Every mutation is written to the activity trail before the
// device command is published; publishing is best-effort and never
// fails the operation. Delete requires both identifiers to match and
// commands the node off after removal.
//
// Node IDs double as numeric device addresses in control topics.
// Non-numeric node IDs fall back to the shared maintenance address.
package lamp
