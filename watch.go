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
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rjeczalik/notify"

	"github.com/UNO-SOFT/formed2formbar/transform"
)

var eventsToWatch = []notify.Event{notify.Create, notify.Write, notify.Rename}

const convertAttempts = 5

func watchConvert(ctx context.Context, P *transform.FormedProcessor, dstDir, srcDir string, suffix string, concurrency int) error {
	if concurrency < 1 {
		concurrency = 1
	}
	if err := checkWatchDirs(dstDir, srcDir, suffix); err != nil {
		return err
	}
	tokens := make(chan struct{}, concurrency)
	eventCh := make(chan notify.EventInfo, 16)
	if err := notify.Watch(srcDir, eventCh, eventsToWatch...); err != nil {
		return errors.Wrap(err, "watch "+srcDir)
	}
	defer notify.Stop(eventCh)
	log.Printf("Watching %q, writing to %q.", srcDir, dstDir)

	for {
		var evt notify.EventInfo
		select {
		case <-ctx.Done():
			return nil
		case evt = <-eventCh:
		}
		src := evt.Path()
		dst, ok := watchDestination(dstDir, src, suffix)
		if !ok {
			continue
		}
		go func() {
			// let the writer finish
			time.Sleep(time.Second)
			select {
			case tokens <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-tokens }()
			for i := 0; i < convertAttempts; i++ {
				err := convertFile(ctx, P, dst, src)
				if err == nil {
					log.Printf("Converted %q to %q.", src, dst)
					return
				}
				log.Printf("%+v", err)
				time.Sleep(time.Duration(i) * time.Second)
			}
		}()
	}
}

// watchDestination returns the output path for src, and false for files that
// are not formed documents or are our own output.
func watchDestination(dstDir, src, suffix string) (string, bool) {
	bn := filepath.Base(src)
	if !strings.HasSuffix(bn, ".xml") {
		return "", false
	}
	base := strings.TrimSuffix(bn, ".xml")
	if suffix != "" && strings.HasSuffix(base, suffix) {
		return "", false
	}
	return filepath.Join(dstDir, base+suffix+".xml"), true
}

// checkWatchDirs refuses an empty suffix when the output lands in the watched
// directory, as every output file would be converted again.
func checkWatchDirs(dstDir, srcDir, suffix string) error {
	if suffix != "" {
		return nil
	}
	dst, err := filepath.Abs(dstDir)
	if err != nil {
		return errors.Wrap(err, dstDir)
	}
	src, err := filepath.Abs(srcDir)
	if err != nil {
		return errors.Wrap(err, srcDir)
	}
	if dst == src {
		return errors.Errorf("empty suffix with the same source and destination directory %q", src)
	}
	return nil
}
