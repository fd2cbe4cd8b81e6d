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
	"bytes"
	"log"
	"net/http"
	"strconv"

	"github.com/UNO-SOFT/formed2formbar/transform"
)

// convertHandler converts the formed document POSTed to it.
//
// Query parameters: repeat-group=NAME, list=1, exclude-grouped=1.
type convertHandler struct{}

func (convertHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" && r.Method != "PUT" {
		w.Header().Set("Allow", "POST, PUT")
		http.Error(w, "only POST and PUT are allowed", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()
	q := r.URL.Query()
	P := transform.FormedProcessor{RepeatGroup: q.Get("repeat-group")}
	P.ListGroups, _ = strconv.ParseBool(q.Get("list"))
	P.ExcludeGrouped, _ = strconv.ParseBool(q.Get("exclude-grouped"))

	var buf bytes.Buffer
	if err := P.ProcessStream(&buf, r.Body); err != nil {
		log.Printf("%s %s: %+v", r.Method, r.URL, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if P.ListGroups {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	}
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}
