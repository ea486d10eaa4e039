// Package analytics computes the rolling 30-day customer and revenue metrics
// of a SaaS transactions table.
//
// # Windows
//
// Every metric is derived from two adjacent half-open periods anchored at an
// analysis date a:
//
//	current  = [a-30d, a)
//	previous = [a-60d, a-30d)
//
// Window is the only place these bounds are computed. Both engines partition
// records through it.
//
// # Engines
//
// ComputeCustomerMetrics and ComputeRevenueMetrics are pure: they never mutate
// the table, never fail and return identical results for identical input.
// Ratios without a meaningful denominator are reported as unset Null values
// instead of zero.
//
// # Validation
//
// Validate runs the structural and coverage checks in a fixed order and
// returns the first failure as a *ValidationError. Callers use it to decide
// between a full report and a degraded one.
package analytics
