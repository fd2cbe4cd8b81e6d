// Copyright 2019 Tamás Gulácsi
//
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

var maxRetries = 3

// openInput opens src: stdin for "" or "-", an HTTP GET for http(s) URLs,
// a local file otherwise.
func openInput(ctx context.Context, src string) (io.ReadCloser, error) {
	if src == "" || src == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	if !(strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")) {
		fh, err := os.Open(src)
		if err != nil {
			return nil, errors.Wrap(err, "open "+src)
		}
		return fh, nil
	}

	req, err := retryablehttp.NewRequest("GET", src, nil)
	if err != nil {
		return nil, errors.Wrap(err, src)
	}
	resp, err := newHTTPClient().Do(req.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrap(err, "GET "+src)
	}
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		return nil, errors.Wrap(errors.New(resp.Status), "GET "+src+": "+string(b))
	}
	return resp.Body, nil
}

func newHTTPClient() *retryablehttp.Client {
	cl := retryablehttp.NewClient()
	cl.RetryMax = maxRetries
	cl.Logger = nil
	cl.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, nth int) {
		if nth > 0 {
			log.Printf("%s %s: retry #%d", req.Method, req.URL, nth)
		}
	}
	return cl
}
