// Package agent holds the request parsing shared by the specialized
// agents: heuristic query parsing and natural-language date ranges. The
// agents themselves live in the subpackages disease, records, and
// scheduling.
package agent
