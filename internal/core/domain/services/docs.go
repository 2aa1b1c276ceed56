// Package services contains domain services implementing business logic that
// spans multiple aggregates:
//
//   - CompositionEngine: validates the 1 CUBE + 1 VIP + 6 TIC box composition
//     with per-code reasons, so operators can re-scan exactly the offending
//     units.
//   - ReusePolicy: computes the minimum remaining transit time a returning box
//     needs to skip inspection, from per-sede/per-model/per-capacity-class
//     configuration with a hard fallback.
//   - SedeGuard: decides whether a mutation may move units across warehouses,
//     producing the structured conflict that lets the caller re-issue the
//     request with explicit authorization.
//
// Domain services are stateless; they operate on aggregates loaded by the
// application layer and never touch persistence themselves.
package services
