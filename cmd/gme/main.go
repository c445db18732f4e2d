package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cstarkjp/GME/internal/composite"
	"github.com/cstarkjp/GME/internal/config"
	"github.com/cstarkjp/GME/internal/export"
	"github.com/cstarkjp/GME/internal/job"
	"github.com/cstarkjp/GME/internal/storage"
	"github.com/cstarkjp/GME/internal/tui"
	"github.com/cstarkjp/GME/internal/viz"
)

var (
	dataDir    string
	configFile string
	verbose    bool

	eta        float64
	mu         float64
	betaType   string
	varphiType string
	ibcType    string
	xiv0       float64

	method     string
	endTime    float64
	rays       int
	tolerance  float64
	isochrones int
	geodesic   bool
	noSave     bool
	outFile    string

	plotWidth  int
	plotHeight int
	plotCurves int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gme",
		Short: "erosion surface evolution by Hamiltonian ray tracing",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gme", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "trace ray families and resolve isochrones",
		RunE:  runSolve,
	}
	solveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	solveCmd.Flags().Float64Var(&eta, "eta", 1.5, "erosion process exponent")
	solveCmd.Flags().Float64Var(&mu, "mu", 0.75, "flow exponent")
	solveCmd.Flags().StringVar(&betaType, "beta", "sin", "erosion law (sin|tan)")
	solveCmd.Flags().StringVar(&varphiType, "varphi", "ramp", "flow model (ramp|ramp-flat)")
	solveCmd.Flags().StringVar(&ibcType, "ibc", "planar", "initial profile (planar|convex-up|concave-up)")
	solveCmd.Flags().Float64Var(&xiv0, "xiv0", 30, "boundary lowering rate")
	solveCmd.Flags().StringVar(&method, "method", "dopri5", "stepper (rk4|dopri5|itrap)")
	solveCmd.Flags().Float64Var(&endTime, "time", 0.04, "integration horizon")
	solveCmd.Flags().IntVar(&rays, "rays", 101, "rays per family")
	solveCmd.Flags().Float64Var(&tolerance, "tol", 1e-8, "adaptive step tolerance")
	solveCmd.Flags().IntVar(&isochrones, "isochrones", 30, "isochrone count")
	solveCmd.Flags().BoolVar(&geodesic, "geodesic", false, "also trace geodesic companions")
	solveCmd.Flags().BoolVar(&noSave, "no-save", false, "skip run persistence")
	solveCmd.Flags().StringVar(&outFile, "out", "", "write full solution JSON to file")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "solve with live progress view",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liveCmd.Flags().Float64Var(&endTime, "time", 0.04, "integration horizon")
	liveCmd.Flags().IntVar(&rays, "rays", 101, "rays per family")
	liveCmd.Flags().BoolVar(&geodesic, "geodesic", false, "also trace geodesic companions")
	liveCmd.Flags().BoolVar(&noSave, "no-save", false, "skip run persistence")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot isochrones from a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 20, "plot height")
	plotCmd.Flags().IntVar(&plotCurves, "curves", 8, "max curves shown")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export isochrones from a saved run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "gme.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.Save(path, config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	}

	rootCmd.AddCommand(solveCmd, liveCmd, listCmd, plotCmd, exportCmd, initCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zc.Build()
}

// buildConfig merges the config file, when given, with command line
// overrides. A flag the user set explicitly wins over the file value.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	override := func(name string, apply func()) {
		if cmd.Flags().Lookup(name) != nil && (configFile == "" || cmd.Flags().Changed(name)) {
			apply()
		}
	}
	override("eta", func() { cfg.Model.Eta = eta })
	override("mu", func() { cfg.Model.Mu = mu })
	override("beta", func() { cfg.Model.Beta = betaType })
	override("varphi", func() { cfg.Model.Varphi = varphiType })
	override("ibc", func() { cfg.Model.IBC = ibcType })
	override("xiv0", func() { cfg.Model.Xiv0 = xiv0 })
	override("method", func() { cfg.Solve.Method = method })
	override("time", func() { cfg.Solve.EndTime = endTime })
	override("rays", func() { cfg.Solve.Rays = rays })
	override("tol", func() { cfg.Solve.Tolerance = tolerance })
	override("isochrones", func() { cfg.Resolve.Isochrones = isochrones })
	return cfg, nil
}

func finishSolve(sol *composite.Solution) error {
	if !noSave {
		store := storage.New(dataDir)
		if err := store.Init(); err != nil {
			return err
		}
		runID, err := store.Save(sol)
		if err != nil {
			return err
		}
		fmt.Println("saved", runID)
	}
	if outFile != "" {
		if err := export.JSONFile(outFile, sol); err != nil {
			return err
		}
		fmt.Println("wrote", outFile)
	}
	fmt.Println(viz.Summary(sol))
	return nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	runner := job.NewRunner(cfg, logger)
	runner.Geodesic = geodesic
	sol, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}
	return finishSolve(sol)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	// The live view owns the terminal; logging stays quiet.
	runner := job.NewRunner(cfg, zap.NewNop())
	runner.Geodesic = geodesic
	sol, err := tui.Run(runner)
	if err != nil {
		return err
	}
	return finishSolve(sol)
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tMODEL\tFAMILIES\tRAYS\tISOCHRONES\tKNICKPOINTS")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			r.ID, r.Timestamp.Format("2006-01-02 15:04:05"), r.Fingerprint,
			r.Families, r.Rays, r.Isochrones, r.Knickpoints)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	isos, err := store.LoadIsochrones(args[0])
	if err != nil {
		return err
	}
	fmt.Println(viz.Isochrones(isos, plotWidth, plotHeight, plotCurves))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	isos, err := store.LoadIsochrones(args[0])
	if err != nil {
		return err
	}
	return export.Isochrones(os.Stdout, isos)
}
