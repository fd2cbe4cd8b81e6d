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
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/UNO-SOFT/formed2formbar/transform"
)

func main() {
	if err := Main(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func Main() error {
	var concurrency = 4
	app := kingpin.New("formed2formbar", "Convert a formed XML form definition into a formbar form definition.")

	var P transform.FormedProcessor
	cmdConvert := app.Command("convert", "convert formed XML to formbar").Default()
	convSrc := cmdConvert.Arg("formed.xml", "input file (- for stdin, or http(s) URL)").Required().String()
	convDst := cmdConvert.Flag("outfile", "output file").Short('o').Default("-").String()
	cmdConvert.Flag("list-modules", "list all modules/repeat groups").Short('l').BoolVar(&P.ListGroups)
	cmdConvert.Flag("repeat-group", "convert only the given repeat group").Short('r').StringVar(&P.RepeatGroup)
	cmdConvert.Flag("exclude-grouped", "leave out the fields of repeat groups from the whole-document conversion").BoolVar(&P.ExcludeGrouped)

	cmdServe := app.Command("serve", "serve conversions over HTTP")
	cmdServeAddress := cmdServe.Arg("address", "address to listen on").Required().String()

	fileSuffix := "-formbar"
	var watchSrc, watchDst string
	cmdWatch := app.Command("watch", "watch a directory and convert all appearing files")
	cmdWatch.Arg("src", "source path to watch").Required().ExistingDirVar(&watchSrc)
	cmdWatch.Arg("dst", "destination path").Required().ExistingDirVar(&watchDst)
	cmdWatch.Flag("suffix", "suffix of converted files").Default(fileSuffix).StringVar(&fileSuffix)
	cmdWatch.Flag("concurrency", "maximum number of conversions running in parallel").Default(strconv.Itoa(concurrency)).IntVar(&concurrency)
	cmdWatch.Flag("repeat-group", "convert only the given repeat group").Short('r').StringVar(&P.RepeatGroup)
	cmdWatch.Flag("exclude-grouped", "leave out the fields of repeat groups from the whole-document conversion").BoolVar(&P.ExcludeGrouped)
	watchServeAddress := cmdWatch.Flag("http", "HTTP address to listen on").String()

	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	go func() {
		<-sigCh
		cancel()
		time.Sleep(time.Second)
		os.Exit(1)
	}()
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	switch cmd {
	case cmdConvert.FullCommand():
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := convertFile(ctx, &P, *convDst, *convSrc)
		cancel()
		return err

	case cmdServe.FullCommand():
		http.Handle("/", convertHandler{})
		log.Println("Listening on " + *cmdServeAddress)
		return http.ListenAndServe(*cmdServeAddress, nil)

	case cmdWatch.FullCommand():
		http.Handle("/", convertHandler{})
		grp, ctx := errgroup.WithContext(ctx)
		if *watchServeAddress != "" {
			grp.Go(func() error {
				log.Println("Listening on " + *watchServeAddress)
				return http.ListenAndServe(*watchServeAddress, nil)
			})
		}
		grp.Go(func() error {
			return watchConvert(ctx, &P, watchDst, watchSrc, fileSuffix, concurrency)
		})
		return grp.Wait()
	}
	return nil
}

var stdout = os.Stdout

// convertFile converts src into dst.
// dst is created only after the conversion succeeded.
// Repeat group listings always go to stdout.
func convertFile(ctx context.Context, P *transform.FormedProcessor, dst, src string) error {
	inp, err := openInput(ctx, src)
	if err != nil {
		return err
	}
	defer inp.Close()

	var buf bytes.Buffer
	if err = P.ProcessStream(&buf, inp); err != nil {
		return errors.WithMessage(err, src)
	}
	if err = inp.Close(); err != nil {
		return errors.Wrap(err, "close "+src)
	}

	out := stdout
	if dst != "" && dst != "-" && !P.ListGroups {
		if out, err = os.Create(dst); err != nil {
			return errors.Wrap(err, "create "+dst)
		}
		defer out.Close()
	}
	if _, err = out.Write(buf.Bytes()); err != nil {
		return errors.Wrap(err, "write "+out.Name())
	}
	if out == stdout {
		return nil
	}
	return errors.Wrap(out.Close(), "close "+dst)
}
