// Package domain contains the core study entities and value objects:
// vocabulary items, review states, sessions, session cards, and the answer
// ratings that drive scheduling. It is independent of any specific
// infrastructure or delivery mechanism.
package domain
