package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/geosphere/internal/distance"
	"github.com/Faultbox/geosphere/internal/logger"
)

var (
	queryFace int
	fromFace  int
	toFace    int
)

// adjacencyCmd lists the neighbors of one face
var adjacencyCmd = &cobra.Command{
	Use:   "adjacency",
	Short: "List the faces sharing a vertex with a face",
	Long: `Builds the sphere at the configured level and prints the ids of every
face that shares at least one vertex with --face, in ascending order.

Example:
  geosphere adjacency --level 1 --face 7`,
	RunE: runAdjacency,
}

// distanceCmd answers a graph distance query
var distanceCmd = &cobra.Command{
	Use:   "distance",
	Short: "Print the hop distance between two faces",
	Long: `Builds the sphere at the configured level and prints the fewest
vertex-sharing steps between --from and --to, with its display band.

Example:
  geosphere distance --level 2 --from 1 --to 200`,
	RunE: runDistance,
}

func init() {
	adjacencyCmd.Flags().IntVarP(&queryFace, "face", "f", 1, "Face id")

	distanceCmd.Flags().IntVar(&fromFace, "from", 1, "Source face id")
	distanceCmd.Flags().IntVar(&toFace, "to", 1, "Target face id")
}

func runAdjacency(cmd *cobra.Command, args []string) error {
	mesh, idx, err := buildIndexed(newBuilder(cfg), cfg, cfg.Sphere.Level)
	if err != nil {
		return err
	}
	if err := checkFace(mesh, queryFace); err != nil {
		return err
	}

	neighbors := idx.Neighbors(queryFace)
	logger.Log.Debug("adjacency query",
		zap.Stringer("face", mesh.Ref(queryFace)),
		zap.Int("degree", len(neighbors)))

	fmt.Fprintf(cmd.OutOrStdout(), "face %d (level %d): %d neighbors %v\n",
		queryFace, mesh.Level, len(neighbors), neighbors)
	return nil
}

func runDistance(cmd *cobra.Command, args []string) error {
	mesh, idx, err := buildIndexed(newBuilder(cfg), cfg, cfg.Sphere.Level)
	if err != nil {
		return err
	}
	for _, id := range []int{fromFace, toFace} {
		if err := checkFace(mesh, id); err != nil {
			return err
		}
	}

	oracle := distance.NewOracle(idx, distance.WithLogger(logger.Named("distance")))
	d, err := oracle.DistanceRef(mesh.Ref(fromFace), mesh.Ref(toFace))
	if err != nil {
		return err
	}

	band := distance.Classify(d)
	c := distance.DefaultPalette().Color(band)
	out := cmd.OutOrStdout()
	if d == distance.Unreachable {
		fmt.Fprintf(out, "%d -> %d: unreachable (%s #%02x%02x%02x)\n", fromFace, toFace, band, c.R, c.G, c.B)
		return nil
	}
	fmt.Fprintf(out, "%d -> %d: %d hops (%s #%02x%02x%02x)\n", fromFace, toFace, d, band, c.R, c.G, c.B)
	return nil
}
