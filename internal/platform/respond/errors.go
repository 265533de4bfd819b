package respond

import (
	"net/http"
	"strconv"
)

// ProblemDetails is an RFC 9457 problem document. It doubles as an error so
// handlers can return it and have NewHTTPErrorHandler write it unchanged.
type ProblemDetails struct {
	Type     string `json:"type"               cbor:"type"               example:"about:blank"`
	Title    string `json:"title"              cbor:"title"              example:"Method Not Allowed"`
	Status   int    `json:"status"             cbor:"status"             example:"405"`
	Detail   string `json:"detail,omitempty"   cbor:"detail,omitempty"   example:"method POST not allowed"`
	Instance string `json:"instance,omitempty" cbor:"instance,omitempty" example:"/greeting"`
}

// Problem returns an about:blank problem titled after status.
func Problem(status int, detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
}

func (p *ProblemDetails) Error() string {
	s := strconv.Itoa(p.Status) + " " + p.Title
	if p.Detail != "" {
		s += ": " + p.Detail
	}
	return s
}

// StatusCode lets Echo read the status without unwrapping.
func (p *ProblemDetails) StatusCode() int {
	return p.Status
}
