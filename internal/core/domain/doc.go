// Package domain holds the types every other coursemate package shares:
// chunks and the filters that select them, citations, answers and their
// streamed events, chat sessions, settings and the sentinel errors.
//
// It imports nothing outside the standard library. Adapters and services
// depend on domain; domain depends on none of them.
package domain
