/*
 * Copyright 2021 ByteDance Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/dexopt"
	"github.com/cloudwego/dexopt/debug"
	"github.com/cloudwego/dexopt/ir"
	"github.com/cloudwego/dexopt/ir/asm"
	"github.com/fatih/color"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var (
	allTransitives  = flag.Bool("all-transitives", false, "also remove copies that are no longer read")
	deleteRedundant = flag.Bool("delete-redundant", false, "also remove copies whose destination already holds the value")
	workers         = flag.Int("workers", 0, "number of methods optimized concurrently (0 for the default)")
	verbose         = flag.Int("v", 0, "log verbosity, 1 for info and 2 for debug")
	output          = flag.String("o", "", "write the result into this file instead of stdout")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dexopt [options] <classes.sexpr>")
		flag.PrintDefaults()
	}

	/* parse the command line */
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	/* configure logging */
	commonlog.Configure(*verbose, nil)
	path := flag.Arg(0)
	startTime := time.Now()

	/* load the source file */
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read file: %v\n", err)
		os.Exit(1)
	}

	/* assemble the classes */
	scope, err := asm.ParseScopeFile(path, string(source))
	if err != nil {
		reportError(path, string(source), err)
		os.Exit(1)
	}

	/* build the options */
	options := []dexopt.Option{
		dexopt.WithAllTransitives(*allTransitives),
		dexopt.WithDeleteRedundant(*deleteRedundant),
	}
	if *workers > 0 {
		options = append(options, dexopt.WithMaxWorkers(*workers))
	}

	/* run all the passes */
	if err = optimize(scope, options); err != nil {
		color.Red("Optimization failed: %v", err)
		os.Exit(1)
	}

	/* write the result */
	result := asm.FormatScope(scope)
	if *output == "" {
		fmt.Print(result)
	} else if err = os.WriteFile(*output, []byte(result), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write file: %v\n", err)
		os.Exit(1)
	}

	/* report the statistics */
	st := debug.GetStats()
	color.Green(
		"Optimized %s in %s: %d fields resolved, %d uses rewritten, %d copies removed",
		path,
		time.Since(startTime).Round(time.Microsecond),
		st.FinalInline.Fields,
		st.CopyProp.Rewrites,
		st.CopyProp.Deletes,
	)
}

func optimize(scope ir.Scope, options []dexopt.Option) (err error) {
	defer func() {
		if v := recover(); v != nil {
			if ie, ok := v.(dexopt.InvariantError); ok {
				err = ie
			} else {
				panic(v)
			}
		}
	}()
	dexopt.Optimize(scope, options...)
	return
}

// reportError prints a caret-style syntax error message.
func reportError(path string, src string, err error) {
	var se asm.SyntaxError
	if !errors.As(err, &se) {
		color.Red("Unexpected error: %s", err)
		return
	}

	/* locate the offending line */
	pos := se.Pos
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("Syntax error in %s: %s", path, se.Reason)
		return
	}

	/* print the line with a caret under the column */
	red := color.New(color.FgRed).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(os.Stderr, "%s: %s\n", red("error"), se.Reason)
	fmt.Fprintf(os.Stderr, "  ┌─ %s:%d:%d\n", path, pos.Line, pos.Column)
	fmt.Fprintf(os.Stderr, "%3d│%s\n", pos.Line, lines[pos.Line-1])
	fmt.Fprintf(os.Stderr, "   │%s\n", bold(strings.Repeat(" ", max(0, pos.Column-1))+"^"))
}
