package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/pefman/eots-battle/internal/game"
	"github.com/pefman/eots-battle/internal/stats"
)

func printReport(out io.Writer, title string, p game.Params, allied, japan []game.Unit, rows []game.Row, withRows bool) {
	fmt.Fprintf(out, "%s\n", title)
	fmt.Fprintf(out, "intel %s, %s reacting, air power %s, DRM allied %+d japan %+d\n\n",
		p.Intel, p.Reaction, p.AirPower,
		game.ModifierFor(game.SideAllied, p), game.ModifierFor(game.SideJapan, p))

	printRoster(out, "ALLIED", allied)
	printRoster(out, "JAPAN", japan)

	sum := stats.Summarize(rows)
	fmt.Fprintf(out, "Win probability: allied %s, japan %s\n", pct(sum.AlliedWin), pct(sum.JapanWin))
	fmt.Fprintf(out, "Expected damage: allied %.2f, japan %.2f\n", sum.ExpectedAlliedDamage, sum.ExpectedJapanDamage)
	fmt.Fprintf(out, "Expected remaining CF: allied %.2f, japan %.2f\n\n", sum.ExpectedAlliedCF, sum.ExpectedJapanCF)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "allied_result\tallied_losses\tjapan_result\tjapan_losses\tprobability\t")
	for _, g := range sum.Outcomes {
		fmt.Fprintf(tw, "%.2f\t%d\t%.2f\t%d\t%s\t\n", g.AlliedResult, g.AlliedLosses, g.JapanResult, g.JapanLosses, pct(g.Probability))
	}
	_ = tw.Flush()

	if withRows {
		fmt.Fprintln(out)
		printRows(out, rows)
	}
}

func printRoster(out io.Writer, label string, units []game.Unit) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\tfront\tback\tdef\tcf\tloss_delta\tair\t\n", label)
	for _, u := range units {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%s\t\n",
			u.Name, u.AttackFront, u.AttackBack, u.Defense, u.CombatFactor(), u.LossDelta(), yesNo(u.IsAir()))
	}
	fmt.Fprintf(tw, "total\t\t\t%d\t%d\t\t%d\t\n", game.TotalDefense(units), game.TotalCombatFactor(units), game.AirCount(units))
	_ = tw.Flush()
	fmt.Fprintln(out)
}

func printRows(out io.Writer, rows []game.Row) {
	tw := tabwriter.NewWriter(out, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "a_die\tj_die\ta_res\tj_res\ta_loss\tj_loss\ta_dmg\tj_dmg\ta_cf\tj_cf\twinner\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%d\t%.2f\t%.2f\t%d\t%d\t%d\t%d\t%d\t%d\t%s\t\n",
			r.AlliedDie, r.JapanDie, r.AlliedResult, r.JapanResult,
			r.AlliedLoss, r.JapanLoss, r.AlliedDamage, r.JapanDamage,
			r.AlliedCF, r.JapanCF, r.Winner)
	}
	_ = tw.Flush()
}

func pct(p float64) string { return strconv.FormatFloat(p*100, 'f', 1, 64) + "%" }

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
