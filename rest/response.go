package rest

import (
	"fmt"
	"net/http"

	"github.com/spotifreak/spotifreak/codec"
	"github.com/spotifreak/spotifreak/ioutils"
)

// Response wraps the raw http.Response returned by Client.Execute.
type Response struct {
	raw    *http.Response
	client *Client
}

// IsSuccess reports whether the response status is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r.raw.StatusCode >= 200 && r.raw.StatusCode < 300
}

// GetError returns a non-nil error when the response status is not a
// success.
func (r *Response) GetError() (err error) {
	if !r.IsSuccess() {
		err = fmt.Errorf("server responded with status code %d and status text %s",
			r.raw.StatusCode, r.raw.Status)
	}
	return
}

// Decode reads the response body into v using the codec selected by the
// response's Content-Type header.
func (r *Response) Decode(v interface{}) (err error) {
	var c codec.Codec
	if r.IsSuccess() {
		defer ioutils.CloserFunc(r.raw.Body)
		contentType := r.raw.Header.Get(ContentTypeHeader)
		c, err = codec.Get(contentType, r.client.options.codecOptions)
		if err == nil {
			err = c.Read(r.raw.Body, v)
		}
	} else {
		err = r.GetError()
	}
	return
}

// Status returns the http status text of the response.
func (r *Response) Status() string {
	return r.Raw().Status
}

// StatusCode returns the http status code of the response.
func (r *Response) StatusCode() int {
	return r.Raw().StatusCode
}

// Raw returns the backing http.Response.
func (r *Response) Raw() *http.Response {
	return r.raw
}
