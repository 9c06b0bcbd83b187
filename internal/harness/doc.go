// Package harness runs contract scenarios against the kvstore capability.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: get_requires_contains
//	description: "Client Get on a missing name is rejected before the store sees it"
//	mode: client            # client | implement | both
//	delegate: memory        # memory | sqlite
//	faults: [negative_size] # optional, see kvstore.Faults
//	setup:                  # applied to the raw delegate, no contract
//	  - op: Put
//	    name: seed
//	    value: "1"
//	steps:
//	  - op: Get
//	    name: hoge
//	    expect:
//	      violation: "contains must be true"
//	assertions:
//	  - type: delegate_calls
//	    op: Get
//	    count: 0
//	  - type: state
//	    expect: { seed: "1" }
//
// A step without expect must succeed. Otherwise exactly one of result,
// violation or error is given; violation and error match by substring.
//
// # Assertion Types
//
//   - delegate_calls: calls of op that reached the delegate, hook queries included
//   - trace_count: trace steps of op, optionally only those with the given outcome
//   - state: exact final contents of the delegate
//
// # Deterministic Testing
//
// Every step is stamped by testutil.StepClock and SQLite delegates
// use a private in-memory database, so a scenario always yields the same
// trace. Traces are compared against golden files with goldie.
package harness
