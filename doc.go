// Package gocas is an embeddable computer algebra engine for Go.
//
// Expressions are canonical trees over exact rationals (math/big.Rat):
// every arithmetic result is merged and reduced, so two equal
// expressions always print the same string.
//
//   - Parsing with user operators, brackets, functions and preprocessors
//   - Differentiation, integration, partial fractions, Laplace transforms
//   - Expansion, factoring, simplification and Taylor series
//   - Exact and numeric equation solving
//   - JSON trees and compiled float64 evaluators
//
// All state lives on a Session. A Session is not safe for concurrent use;
// create one per goroutine.
package gocas
