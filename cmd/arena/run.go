package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"basegraph.app/arena/common/logger"
	"basegraph.app/arena/internal/debate"
	"basegraph.app/arena/internal/output"
	"basegraph.app/arena/internal/service"
)

const defaultTopic = "In basic education, should schools favour breadth of knowledge or depth in a single subject?"

// Default persona presets per seat. Missing presets leave the seat without a persona.
var (
	judgePreset = service.NeutralJudgePreset
	proPresets  = [debate.TeamSize]string{"calm_logical", "sharp_attacker", "humorous", "emotional"}
	conPresets  = [debate.TeamSize]string{"philosophical", "data_driven", "calm_logical", "calm_logical"}
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a full debate and print it phase by phase",
		RunE:  runDebate,
	}
	cmd.Flags().String("topic", "", "Debate topic (prompted when empty)")
	cmd.Flags().Int("rounds", 0, "Rebuttal rounds, 1 to 10 (prompted when unset)")
	cmd.Flags().String("judge", "", "Moderator profile (default ARENA_CLI_JUDGE_PROFILE)")
	cmd.Flags().StringSlice("pro", nil, "Pro profiles by slot, comma separated (default ARENA_CLI_PRO{1..4}_PROFILE)")
	cmd.Flags().String("con", "", "Profile shared by every con slot (default ARENA_CLI_CON_PROFILE)")
	cmd.Flags().Bool("no-personas", false, "Seat every debater without a persona preset")
	return cmd
}

func runDebate(cmd *cobra.Command, args []string) error {
	topic, _ := cmd.Flags().GetString("topic")
	rounds, _ := cmd.Flags().GetInt("rounds")
	noPersonas, _ := cmd.Flags().GetBool("no-personas")

	if cmd.Flags().Changed("rounds") {
		if err := validateRounds(rounds); err != nil {
			return fmt.Errorf("--rounds: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rt, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	if strings.TrimSpace(topic) == "" {
		topic = prompt(in, out, "Debate topic: ")
		if topic == "" {
			topic = defaultTopic
		}
	}

	if !cmd.Flags().Changed("rounds") {
		rounds, err = parseRounds(prompt(in, out, fmt.Sprintf("Rebuttal rounds (default %d): ", rt.cfg.Debate.DefaultRounds)))
		if err != nil {
			return err
		}
	}

	spec := service.DebateSpec{
		Topic:  topic,
		Rounds: rounds,
		Judge:  service.AgentSpec{ProfileID: rt.cfg.CLI.JudgeProfile, PersonaPresetID: judgePreset},
	}
	if judge, _ := cmd.Flags().GetString("judge"); judge != "" {
		spec.Judge.ProfileID = judge
	}

	proProfiles := rt.cfg.CLI.ProProfiles
	if flag, _ := cmd.Flags().GetStringSlice("pro"); len(flag) > 0 {
		if len(flag) > debate.TeamSize {
			return fmt.Errorf("--pro takes at most %d profiles, got %d", debate.TeamSize, len(flag))
		}
		proProfiles = [debate.TeamSize]string{}
		copy(proProfiles[:], flag)
	}
	conProfile := rt.cfg.CLI.ConProfile
	if flag, _ := cmd.Flags().GetString("con"); flag != "" {
		conProfile = flag
	}

	var con [debate.TeamSize]string
	for i := range con {
		con[i] = conProfile
	}
	spec.Pro = team(proProfiles, proPresets, noPersonas)
	spec.Con = team(con, conPresets, noPersonas)

	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "arena.cli"})

	svc := service.NewServices(service.ServicesConfig{
		Catalog:       rt.catalog,
		Composer:      debate.NewComposer(rt.cfg.Debate.Language, rt.cfg.Debate.MaxChars),
		DefaultRounds: rt.cfg.Debate.DefaultRounds,
	}).Debates()

	stream, err := svc.Stream(ctx, spec)
	if err != nil {
		return err
	}

	printer := output.NewPrinter(out)
	printer.Header(stream.Topic, stream.Rounds)

	var failed string
	for ev := range stream.Events {
		printer.Event(ev)
		if ev.Type == debate.EventError {
			failed = ev.Detail
		}
	}
	if failed != "" {
		return fmt.Errorf("debate %d did not finish: %s", stream.ID, failed)
	}
	return nil
}

func team(profiles, presets [debate.TeamSize]string, noPersonas bool) service.TeamSpec {
	slots := make([]service.AgentSpec, debate.TeamSize)
	for i := range slots {
		slots[i].ProfileID = profiles[i]
		if !noPersonas && profiles[i] != "" {
			slots[i].PersonaPresetID = presets[i]
		}
	}
	return service.TeamSpec{First: slots[0], Second: slots[1], Third: slots[2], Fourth: slots[3]}
}

func prompt(in *bufio.Reader, out io.Writer, label string) string {
	fmt.Fprint(out, label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

// parseRounds reads a prompted round count. Empty input keeps the configured default.
func parseRounds(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("rounds must be a number between 1 and %d, got %q", debate.MaxRoundsLimit, s)
	}
	if err := validateRounds(n); err != nil {
		return 0, err
	}
	return n, nil
}

// validateRounds checks an explicit round count. Zero is not "use the default" here.
func validateRounds(n int) error {
	if n < 1 || n > debate.MaxRoundsLimit {
		return fmt.Errorf("rounds must be a number between 1 and %d, got %d", debate.MaxRoundsLimit, n)
	}
	return nil
}
