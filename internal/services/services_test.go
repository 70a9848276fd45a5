package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlist/internal/shared"
)

// recordedRequest captures a call made through [scriptedTransport].
type recordedRequest struct {
	Method string
	URL    string
	Header http.Header
	Form   url.Values
}

type scriptedReply struct {
	resp *Response
	err  error
}

// scriptedTransport replays replies in order and records every request.
type scriptedTransport struct {
	replies  []scriptedReply
	requests []recordedRequest
}

func newScriptedTransport(replies ...scriptedReply) *scriptedTransport {
	return &scriptedTransport{replies: replies}
}

func (s *scriptedTransport) next(req recordedRequest) (*Response, error) {
	s.requests = append(s.requests, req)
	if len(s.replies) == 0 {
		return nil, fmt.Errorf("unexpected request %s %s", req.Method, req.URL)
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return reply.resp, reply.err
}

func (s *scriptedTransport) Get(ctx context.Context, rawURL string, header http.Header) (*Response, error) {
	return s.next(recordedRequest{Method: http.MethodGet, URL: rawURL, Header: header})
}

func (s *scriptedTransport) PostForm(ctx context.Context, rawURL string, header http.Header, form url.Values) (*Response, error) {
	return s.next(recordedRequest{Method: http.MethodPost, URL: rawURL, Header: header, Form: form})
}

func jsonReply(status int, body string) scriptedReply {
	return scriptedReply{resp: &Response{StatusCode: status, Body: []byte(body)}}
}

func statusReply(status int) scriptedReply {
	return scriptedReply{resp: &Response{StatusCode: status, Body: []byte(`{"error":{"status":` + fmt.Sprint(status) + `}}`)}}
}

func faultReply(msg string) scriptedReply {
	return scriptedReply{err: fmt.Errorf("%w: %s", shared.ErrAPIRequest, msg)}
}

var errNetwork = errors.New("network error")

func quietLogger() *log.Logger {
	return shared.NewLogger(io.Discard)
}

func bufferedLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := shared.NewLogger(&buf)
	logger.SetLevel(log.DebugLevel)
	return logger, &buf
}
