// Package fuel reconstructs tank-to-tank refueling cycles from a fuel log and
// derives consumption and cost figures from them.
//
// Every function here is a pure function of its input: nothing is cached,
// no I/O happens, and no input is mutated. Rates that cannot be computed are
// returned as unavailable model.Rate values instead of zero or NaN.
package fuel
