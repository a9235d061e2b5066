// Package classify analyzes retrieval queries before any embedding work.
//
// A query is classified for intent (greeting, inappropriate, how-to,
// question) and complexity (simple, complex). The orchestrator uses the
// analysis to pick a retrieval strategy, and to skip embedding and search
// entirely for greetings and unsafe queries.
//
// Two classifiers are provided. HeuristicClassifier is pure pattern
// matching and never fails. ModelClassifier asks an LLM for a verdict and
// falls back to the heuristic result on any error, so classification as a
// whole can never fail a retrieval call.
package classify
