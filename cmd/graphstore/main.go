// Package main provides the graphstore CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orneryd/graphstore/pkg/config"
	"github.com/orneryd/graphstore/pkg/graphstore"
	"github.com/orneryd/graphstore/pkg/query"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "graphstore",
		Short: "graphstore - embedded graph knowledge store",
		Long: `graphstore is an in-process graph knowledge store: immutable
nodes and edges, a reversible diff log, tiered residency, and an
AND-composed query planner, all behind a single Core Facade.`,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("graphstore v%s\n", version)
		},
	})

	var runtimeLimit, warmLimit int
	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the seed scenarios end to end and print the resulting export",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd, args, runtimeLimit, warmLimit)
		},
	}
	demoCmd.Flags().IntVar(&runtimeLimit, "runtime-limit", 2, "runtime-tier residency limit passed to Store.Config")
	demoCmd.Flags().IntVar(&warmLimit, "warm-limit", 100, "warm-tier residency limit passed to Store.Config")
	rootCmd.AddCommand(demoCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runDemo walks the canonical insert/query/delete, rollback,
// rollback-to-timestamp, connected-node traversal, pruning, and
// unhashable-property scenarios against one store, then prints its
// export as JSON.
func runDemo(cmd *cobra.Command, args []string, runtimeLimit, warmLimit int) error {
	cfg := *config.DefaultConfig()
	cfg.RuntimeLimit = runtimeLimit
	cfg.WarmLimit = warmLimit
	s := graphstore.New(graphstore.WithConfig(cfg))
	defer s.Close()
	ctx := context.Background()

	fmt.Println("inserting seed nodes and edges...")
	alice, err := s.InsertNode("Person", map[string]any{"name": "alice", "age": int64(30)})
	if err != nil {
		return fmt.Errorf("insert alice: %w", err)
	}
	bob, err := s.InsertNode("Person", map[string]any{"name": "bob", "age": int64(25)})
	if err != nil {
		return fmt.Errorf("insert bob: %w", err)
	}
	carol, err := s.InsertNode("Person", map[string]any{"name": "carol", "tags": []any{"urgent", "reviewed"}})
	if err != nil {
		return fmt.Errorf("insert carol: %w", err)
	}
	if _, err := s.InsertEdge(alice.Node.ID(), bob.Node.ID(), "knows", map[string]any{"since": int64(2020)}); err != nil {
		return fmt.Errorf("insert edge alice->bob: %w", err)
	}
	if _, err := s.InsertEdge(alice.Node.ID(), carol.Node.ID(), "knows", nil); err != nil {
		return fmt.Errorf("insert edge alice->carol: %w", err)
	}

	fmt.Println("querying by label and property...")
	res, err := s.QueryNodes(ctx, query.NodeQuery{Label: "Person", Properties: map[string]any{"name": "alice"}})
	if err != nil {
		return fmt.Errorf("query alice: %w", err)
	}
	fmt.Printf("  found %d node(s) named alice\n", len(res.Items))

	fmt.Println("traversing alice's outgoing knows edges...")
	conn, err := s.QueryConnectedNodes(ctx, query.ConnectedQuery{Start: alice.Node.ID(), Relationship: "knows", Direction: query.Outgoing})
	if err != nil {
		return fmt.Errorf("traverse: %w", err)
	}
	fmt.Printf("  alice knows %d node(s)\n", len(conn.Items))

	fmt.Println("deleting bob and rolling back the delete...")
	if _, err := s.DeleteNode(bob.Node.ID()); err != nil {
		return fmt.Errorf("delete bob: %w", err)
	}
	if err := s.Rollback(1); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}

	cutoff := s.DiffHistory()[len(s.DiffHistory())-1].Timestamp
	if _, err := s.InsertNode("Person", map[string]any{"name": "dave"}); err != nil {
		return fmt.Errorf("insert dave: %w", err)
	}
	fmt.Println("rolling back to a recorded timestamp...")
	if err := s.RollbackToTimestamp(cutoff); err != nil {
		return fmt.Errorf("rollback to timestamp: %w", err)
	}

	fmt.Printf("pruning using the configured runtime/warm limits (%d/%d)...\n", s.Config().RuntimeLimit, s.Config().WarmLimit)
	moved, err := s.PruneDefault()
	if err != nil {
		return fmt.Errorf("prune: %w", err)
	}
	fmt.Printf("  demoted %d entit(y/ies) one tier colder; a collaborator running its own scheduler would wait %s between calls like this (Store.Config().AutoPruneInterval)\n", moved, s.Config().AutoPruneInterval)

	fmt.Println("looking up carol's unhashable tags property...")
	tagged, err := s.QueryNodes(ctx, query.NodeQuery{Properties: map[string]any{"tags": []any{"urgent", "reviewed"}}})
	if err != nil {
		return fmt.Errorf("query tags: %w", err)
	}
	fmt.Printf("  found %d node(s) tagged [urgent reviewed]\n", len(tagged.Items))

	snap, err := s.Export()
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	out, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	fmt.Println()
	fmt.Println(string(out))
	return nil
}
