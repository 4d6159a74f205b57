package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/futalk/Tarot-Reading/internal/analysis"
	"github.com/futalk/Tarot-Reading/internal/app"
	"github.com/futalk/Tarot-Reading/internal/domain"
)

type serviceFactory func() (*app.TarotService, error)

func newRootCmd(factory serviceFactory) *cobra.Command {
	root := &cobra.Command{
		Use:          "tarot",
		Short:        "Draw and review tarot readings",
		SilenceUsage: true,
	}
	root.AddCommand(
		newDrawCmd(factory),
		newDailyCmd(factory),
		newYesNoCmd(factory),
		newSpreadsCmd(factory),
		newHistoryCmd(factory),
	)
	return root
}

func newDrawCmd(factory serviceFactory) *cobra.Command {
	var (
		spread   string
		question string
		cut      string
		count    int
	)
	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Shuffle, cut and draw a spread",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := factory()
			if err != nil {
				return err
			}
			res, err := svc.Draw(cmd.Context(), app.DrawRequest{
				Spread:      spread,
				CustomCount: count,
				Question:    question,
				Cut:         domain.CutPosition(cut),
			})
			if err != nil {
				return err
			}
			printReading(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&spread, "spread", "s", domain.SpreadRandom, "spread id, see the spreads command")
	cmd.Flags().StringVarP(&question, "question", "q", "", "question to ask")
	cmd.Flags().StringVar(&cut, "cut", string(domain.CutMiddle), "cut position: left, middle or right")
	cmd.Flags().IntVarP(&count, "count", "n", 3, "card count for the custom spread")
	return cmd
}

func newDailyCmd(factory serviceFactory) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Show the card of the day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := factory()
			if err != nil {
				return err
			}
			d, err := svc.Daily(cmd.Context(), user)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s 的每日一牌 (%s)\n", d.UserID, d.Day)
			printCard(w, d.Card)
			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "user id")
	return cmd
}

func newYesNoCmd(factory serviceFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "yesno <question>",
		Short: "Answer a yes/no question with one card",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := factory()
			if err != nil {
				return err
			}
			res, err := svc.YesNo(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printCard(w, res.Card)
			fmt.Fprintf(w, "答案: %s\n%s\n", res.Answer, res.Explanation)
			return nil
		},
	}
}

func newSpreadsCmd(factory serviceFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "spreads",
		Short: "List available spreads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := factory()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, s := range svc.Spreads() {
				fmt.Fprintf(w, "%-14s %s (%d)\n", s.ID, s.Title, s.Size())
			}
			return nil
		},
	}
}

func newHistoryCmd(factory serviceFactory) *cobra.Command {
	var (
		limit int
		wipe  bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or clear past readings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := factory()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if wipe {
				if err := svc.ClearHistory(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(w, "history cleared")
				return nil
			}
			readings, err := svc.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(readings) == 0 {
				fmt.Fprintln(w, "no readings yet")
				return nil
			}
			for _, r := range readings {
				names := make([]string, len(r.Cards))
				for i, c := range r.Cards {
					names[i] = c.Name + orientationMark(c)
				}
				fmt.Fprintf(w, "%s  %-12s %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Spread, strings.Join(names, "、"))
				if r.Question != "" {
					fmt.Fprintf(w, "    %s\n", r.Question)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "maximum readings to show (0 for all)")
	cmd.Flags().BoolVar(&wipe, "clear", false, "delete every stored reading")
	return cmd
}

func orientationMark(c domain.DrawnCard) string {
	if c.IsReversed() {
		return "（逆位）"
	}
	return "（正位）"
}

func printCard(w io.Writer, c domain.DrawnCard) {
	label := c.PositionName
	if label == "" {
		label = fmt.Sprintf("位置%d", c.Position)
	}
	fmt.Fprintf(w, "%s：%s%s\n", label, c.Name, orientationMark(c))
	if m := c.Interpretation(); m != "" {
		fmt.Fprintf(w, "  %s\n", m)
	}
}

func printReading(w io.Writer, res app.DrawResult) {
	r := res.Reading
	if r.Question != "" {
		fmt.Fprintf(w, "问题：%s\n", r.Question)
	}
	if r.Cut != nil {
		fmt.Fprintf(w, "切牌：%s%s\n", r.Cut.Name, orientationMark(*r.Cut))
	}
	fmt.Fprintln(w)
	for _, c := range r.Cards {
		printCard(w, c)
	}
	printStory(w, res.Analysis.Story)
	printInsights(w, res.Analysis.Insights)
	fmt.Fprintln(w)
	fmt.Fprint(w, res.Analysis.Contextual.Text())
}

func printInsights(w io.Writer, insights []analysis.Insight) {
	if len(insights) == 0 {
		return
	}
	fmt.Fprintln(w, "\n洞察：")
	for _, in := range insights {
		fmt.Fprintf(w, "• [%s] %s\n", in.Kind, in.Text)
	}
}

func printStory(w io.Writer, s analysis.Story) {
	fmt.Fprintln(w)
	if s.Opening != "" {
		fmt.Fprintln(w, s.Opening)
	}
	for _, rel := range s.Development {
		if rel.Theme != "" {
			fmt.Fprintf(w, "【%s】", rel.Theme)
		}
		fmt.Fprintln(w, rel.Message)
	}
	for _, part := range []string{s.Climax, s.Resolution, s.DeepInsight} {
		if part != "" {
			fmt.Fprintln(w, part)
		}
	}
	if len(s.ActionSteps) > 0 {
		fmt.Fprintln(w, "\n行动建议：")
		for i, step := range s.ActionSteps {
			fmt.Fprintf(w, "%d. %s\n", i+1, step.Action)
		}
	}
}
