// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting for the study API. It adapts HTTP concerns to the
// session, review, and stats services, keeping transport details out of the
// business logic.
package api
