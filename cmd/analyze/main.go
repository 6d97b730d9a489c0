// Command analyze prints the outcome distribution of one battle described in
// a YAML scenario file, resolving it locally or on a running API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/pefman/eots-battle/internal/api"
	"github.com/pefman/eots-battle/internal/catalog"
	"github.com/pefman/eots-battle/internal/config"
	"github.com/pefman/eots-battle/internal/game"
	"github.com/pefman/eots-battle/internal/models"
	"github.com/pefman/eots-battle/internal/scenario"
)

type options struct {
	scenario string
	units    string
	remote   string
	rows     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var opts options
	flags := flag.NewFlagSet("analyze", flag.ContinueOnError)
	flags.SetOutput(out)
	flags.StringVar(&opts.scenario, "scenario", "", "YAML battle scenario (required)")
	flags.StringVar(&opts.units, "units", cfg.UnitData, "unit catalog CSV for allied_ids/japan_ids")
	flags.StringVar(&opts.remote, "remote", cfg.APIBase, "resolve on the API server at this base URL")
	flags.BoolVar(&opts.rows, "rows", false, "print every die-pair row")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if opts.scenario == "" {
		return errors.New("-scenario is required")
	}

	sc, err := scenario.Load(opts.scenario)
	if err != nil {
		return err
	}

	var (
		req  models.AnalyzeRequest
		rows []game.Row
	)
	if opts.remote != "" {
		req, rows, err = analyzeRemote(ctx, api.NewClient(opts.remote), sc.AnalyzeRequest)
	} else {
		req, rows, err = analyzeLocal(opts.units, sc.AnalyzeRequest)
	}
	if err != nil {
		return err
	}

	allied, japan, p, err := req.Battle()
	if err != nil {
		return err
	}
	printReport(out, sc.Title(), p, allied, japan, rows, opts.rows)
	return nil
}

func analyzeLocal(unitsPath string, req models.AnalyzeRequest) (models.AnalyzeRequest, []game.Row, error) {
	store := catalog.NewStore(nil)
	if len(req.AlliedIDs)+len(req.JapanIDs) > 0 {
		units, err := catalog.LoadUnits(unitsPath)
		if errors.Is(err, fs.ErrNotExist) {
			return req, nil, fmt.Errorf("scenario references catalog units: %w", err)
		}
		if err != nil {
			return req, nil, err
		}
		store = catalog.NewStore(units)
	}
	req, err := store.Expand(req)
	if err != nil {
		return req, nil, err
	}
	allied, japan, p, err := req.Battle()
	if err != nil {
		return req, nil, err
	}
	rows, err := game.Resolve(allied, japan, p)
	return req, rows, err
}

// analyzeRemote fetches referenced units from the server so the roster table
// can be printed, then resolves the inline request there.
func analyzeRemote(ctx context.Context, c *api.Client, req models.AnalyzeRequest) (models.AnalyzeRequest, []game.Row, error) {
	for _, ref := range []struct {
		ids  []int
		dest *[]models.UnitRecord
	}{{req.AlliedIDs, &req.Allied}, {req.JapanIDs, &req.Japan}} {
		for _, id := range ref.ids {
			u, err := c.Unit(ctx, id)
			if err != nil {
				return req, nil, fmt.Errorf("unit %d: %w", id, err)
			}
			*ref.dest = append(*ref.dest, u)
		}
	}
	req.AlliedIDs, req.JapanIDs = nil, nil

	res, err := c.Analyze(ctx, req)
	if err != nil {
		return req, nil, err
	}
	if len(res.Rows) != game.Die.Sides()*game.Die.Sides() {
		return req, nil, fmt.Errorf("server returned %d rows", len(res.Rows))
	}
	return req, res.Rows, nil
}
