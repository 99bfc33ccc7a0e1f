// Copyright (c) 2026 desokit Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/desotools/desokit/cmd/desokit/internal/golang/base"
)

// set with -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var CmdVersion = &base.Command{
	UsageLine: "desokit version",
	Short:     "print version and exit",
	Long: `
# Version Command

Prints version and exits, not much else to say.
`,
	Run: versionRun,
}

func versionRun(ctx context.Context, cmd *base.Command, args []string) error {
	printVersion(os.Stdout, buildVersion())
	return nil
}

// buildVersion returns the version set at link time, or the module version
// when installed with "go install".
func buildVersion() string {
	if version != "dev" {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return version
}

func printVersion(w io.Writer, v string) {
	fmt.Fprintf(w, "desokit %s (commit: %s) built on: %s, %s/%s\n", v, commit, date, runtime.GOOS, runtime.GOARCH)
}
