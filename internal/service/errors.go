package service

import "net/http"

// Error is a business-rule failure with a status and a message that is safe
// to show the client. Datastore and upstream internals never end up here.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func badRequest(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

func notFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Message: msg}
}

func internal(msg string) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: msg}
}
