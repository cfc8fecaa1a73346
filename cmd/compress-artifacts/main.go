// Command compress-artifacts gzips model artifacts in place, writing
// <file>.gz next to each argument. The service reads either form.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/aneeb02/footyPredatorr/internal/adapters/artifact"
)

const bytesPerMB = 1024 * 1024

func main() {
	level := flag.Int("level", artifact.DefaultLevel, "gzip compression level (1-9)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-level n] <artifact> [artifact...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	failed := false
	for _, path := range flag.Args() {
		st, err := artifact.Compress(path, path+".gz", *level)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
			continue
		}
		fmt.Printf("%s: %.2f MB -> %.2f MB (%s)\n", path,
			float64(st.InputBytes)/bytesPerMB, float64(st.OutputBytes)/bytesPerMB, st.Destination)
	}
	if failed {
		os.Exit(1)
	}
}
