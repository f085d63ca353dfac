// Command quadforest builds a forest from a connectivity file, balances
// and repartitions it, and reports the resulting checksum. Rank 0 reads
// and broadcasts the connectivity so every process in the group builds
// from identical bytes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/datatrails/go-datatrails-quadforest/connectivity"
	"github.com/datatrails/go-datatrails-quadforest/forest"
	"github.com/datatrails/go-datatrails-quadforest/qtree"
	"github.com/datatrails/go-datatrails-quadforest/transport"
)

func main() {
	connPath := flag.String("connectivity", "", "path to a text-format connectivity file")
	balanceMode := flag.String("balance", "face-corner", "balance mode: complete, face, face-corner")
	logLevel := flag.String("log-level", "INFO", "log level")
	printConn := flag.Bool("print-connectivity", false, "print the parsed connectivity tables on rank 0 before balancing")
	flag.Parse()

	logger.New(*logLevel)
	log := logger.Sugar.WithServiceName("quadforest")

	if err := run(*connPath, *balanceMode, *printConn, log); err != nil {
		log.Errorf("quadforest: %v", err)
		os.Exit(1)
	}
}

func run(connPath, balanceMode string, printConn bool, log logger.Logger) error {
	if connPath == "" {
		return fmt.Errorf("quadforest: -connectivity is required")
	}
	mode, err := parseBalanceMode(balanceMode)
	if err != nil {
		return err
	}

	comm := transport.NewLocalComm()
	ctx := context.Background()

	var raw []byte
	if comm.CommRank() == 0 {
		file, err := os.Open(connPath)
		if err != nil {
			return fmt.Errorf("quadforest: reading %s: %w", connPath, err)
		}
		parsed, err := connectivity.ParseText(file)
		file.Close()
		if err != nil {
			return fmt.Errorf("quadforest: parsing %s: %w", connPath, err)
		}
		if raw, err = parsed.MarshalBcast(); err != nil {
			return fmt.Errorf("quadforest: encoding connectivity: %w", err)
		}
	}
	raw, err = comm.Bcast(ctx, 0, raw)
	if err != nil {
		return fmt.Errorf("quadforest: broadcasting connectivity: %w", err)
	}
	conn, err := connectivity.UnmarshalBcast(raw)
	if err != nil {
		return fmt.Errorf("quadforest: decoding connectivity: %w", err)
	}

	if printConn && comm.CommRank() == 0 {
		fmt.Println(formatConnectivity(conn))
	}

	f, err := forest.NewFromConnectivity(ctx, comm, comm, conn)
	if err != nil {
		return fmt.Errorf("quadforest: building forest: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Infof("quadforest: close: %v", cerr)
		}
	}()

	if err := f.Balance(ctx, mode); err != nil {
		return fmt.Errorf("quadforest: balancing: %w", err)
	}

	shipped, err := f.Repartition(ctx, cumulativeToCounts(f.State.LastQuadIndex))
	if err != nil {
		return fmt.Errorf("quadforest: repartitioning: %w", err)
	}

	log.Infof("quadforest: rank %d holds %d trees, checksum %x, %d quadrants shipped",
		comm.CommRank(), len(f.Local.Trees), f.Checksum(), shipped)
	return nil
}

// cumulativeToCounts turns a GlobalState.LastQuadIndex-style running total
// back into a per-rank count, the shape Forest.Repartition takes. Passing a
// forest's own current counts back in is a no-op repartition, exercising
// the same code path a real rebalancing round would use.
func cumulativeToCounts(cum []int64) []int64 {
	counts := make([]int64, len(cum))
	var prev int64
	for i, c := range cum {
		counts[i] = c - prev
		prev = c
	}
	return counts
}

// formatConnectivity renders a Connectivity's tables the way
// p4est_connectivity_print dumps them before a run starts: tree/vertex
// counts followed by each tree's face-neighbor and face-code row.
func formatConnectivity(c *connectivity.Connectivity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "connectivity: %d trees, %d vertices\n", c.NumTrees, c.NumVertices)
	for t := 0; t < c.NumTrees; t++ {
		fmt.Fprintf(&b, "  tree %d: to_tree=%v to_face=%v\n",
			t, c.TreeToTree[4*t:4*t+4], c.TreeToFace[4*t:4*t+4])
	}
	return strings.TrimRight(b.String(), "\n")
}

func parseBalanceMode(s string) (qtree.Mode, error) {
	switch s {
	case "complete":
		return qtree.ModeComplete, nil
	case "face":
		return qtree.ModeFace, nil
	case "face-corner":
		return qtree.ModeFaceCorner, nil
	default:
		return 0, fmt.Errorf("quadforest: unknown balance mode %q", s)
	}
}
