// Package testutil provides deterministic doubles for the order state
// machine: a virtual-time scheduler, fixed token sequences, stub stock-out
// selectors and a resettable sequence clock.
//
// The scenario harness is built on these doubles, so a scenario produces
// byte-identical traces on every run.
package testutil
