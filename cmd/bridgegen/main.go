package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/peterkuimelis/bridgegen/internal/bridge"
	"github.com/peterkuimelis/bridgegen/internal/config"
	"github.com/peterkuimelis/bridgegen/internal/constraint"
	"github.com/peterkuimelis/bridgegen/internal/dealer"
	"github.com/peterkuimelis/bridgegen/internal/lin"
	bglog "github.com/peterkuimelis/bridgegen/internal/log"
	"github.com/peterkuimelis/bridgegen/internal/session"
	"github.com/peterkuimelis/bridgegen/internal/view"
)

var (
	rootCmd = &cobra.Command{
		Use:   "bridgegen",
		Short: "Constrained bridge deal generator",
	}
	configPath string
)

// generate flags
var (
	boards  string
	preset  string
	hcpArgs []string
	suitArg []string
	policy  string
	vul     string
	seed    int64
	outPath string
	format  string
	verbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the YAML config (default $BRIDGEGEN_CONFIG)")

	f := generateCmd.Flags()
	f.StringVarP(&boards, "boards", "n", "", "Number of boards, 1-32 (default from preset or config)")
	f.StringVarP(&preset, "preset", "p", "", "Named constraint preset")
	f.StringArrayVar(&hcpArgs, "hcp", nil, "HCP range SEAT=MIN:MAX; SEAT is N/E/S/W or dealer/partner (repeatable)")
	f.StringArrayVar(&suitArg, "suit", nil, "Suit length range SEAT.SUIT=MIN:MAX (repeatable)")
	f.StringVar(&policy, "policy", "", "Vulnerability policy: rotating or fixed")
	f.StringVar(&vul, "vuln", "", "Vulnerability for every board under the fixed policy: none, ns, ew, both")
	f.Int64Var(&seed, "seed", 0, "Shuffle seed (0 seeds from the clock)")
	f.StringVarP(&outPath, "out", "o", "", "Write to this file instead of stdout")
	f.StringVar(&format, "format", "lin", "Output format: lin or text")
	f.BoolVarP(&verbose, "verbose", "v", false, "Log session events to stderr")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(presetsCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Deal a set of boards and write them as LIN or text",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cmd.Flags().Changed("seed") {
			cfg.Seed = seed
		}
		if policy != "" {
			cfg.Policy = policy
		}
		if vul != "" {
			cfg.DefaultVulnerability = vul
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		hcp, err := constraint.ParseHCPFlags(hcpArgs)
		if err != nil {
			return err
		}
		dist, err := constraint.ParseSuitFlags(suitArg)
		if err != nil {
			return err
		}
		set, presetBoards, err := cfg.Resolve(preset, hcp, dist)
		if err != nil {
			return err
		}
		fallback := cfg.Boards
		if presetBoards > 0 {
			fallback = presetBoards
		}
		var raw any
		if boards != "" {
			raw = boards
		}
		count := session.ClampBoardCount(raw, fallback)

		opts := cfg.SessionOptions()
		opts.ID = uuid.NewString()
		opts.Orchestrator = session.NewOrchestrator(dealer.NewShuffler(cfg.Seed), cfg.Budget)
		if verbose {
			opts.Logger = bglog.NewTextLogger(os.Stderr)
		}
		s := session.New(opts)

		_, diag, err := s.Add(count, set)
		for _, is := range diag {
			log.Printf("warning: %s", is)
		}
		if err != nil {
			var gerr *session.GenerationError
			if errors.As(err, &gerr) {
				return errors.New(gerr.UserMessage())
			}
			return err
		}

		var w io.Writer = os.Stdout
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		switch format {
		case "lin":
			return lin.Write(w, s.Boards())
		case "text":
			writeText(w, s.Boards())
			return nil
		}
		return fmt.Errorf("unknown format %q", format)
	},
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the configured constraint presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		for _, p := range cfg.Presets {
			pred, _, err := p.Constraints().Compile()
			if err != nil {
				return err
			}
			boards := "-"
			if p.Boards > 0 {
				boards = fmt.Sprint(p.Boards)
			}
			fmt.Printf("%-18s %-3s hcp=%-18s suits=%-18s %s\n",
				p.Name, boards, pred.HCP.Kind, pred.Distribution.Kind, p.Description)
		}
		return nil
	},
}

func writeText(w io.Writer, boards []bridge.Board) {
	for i, b := range boards {
		bv := view.BuildBoardView(i+1, b)
		fmt.Fprintf(w, "%s  Dealer %s  %s\n", bv.Title, bv.Dealer, bv.VulLabel)
		for _, seat := range bridge.Seats {
			h := bv.Hands[seat.Letter()]
			fmt.Fprintf(w, "  %s  S %-13s H %-13s D %-13s C %-13s %2d HCP  %s\n",
				seat.Letter(), h.Spades, h.Hearts, h.Diamonds, h.Clubs, h.HCP, h.Shape)
		}
		if i < len(boards)-1 {
			fmt.Fprintln(w, strings.Repeat("-", 40))
		}
	}
}
