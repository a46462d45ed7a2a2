// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sprt

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"laptudirm.com/x/duel/pkg/eve/stats"
)

const reportWidth = 64

// Report formats the counters and their summary as a box for the
// console.
func Report(counters Counters, summary stats.Summary) string {
	lines := []string{
		fmt.Sprintf("║ ELO   | %.2f +- %.2f (95%%) [%.2f, %.2f]",
			summary.Elo, (summary.EloHigh-summary.EloLow)/2,
			summary.EloLow, summary.EloHigh,
		),
		llrLine(summary),
		fmt.Sprintf("║ GAMES | N: %d W: %d L: %d D: %d",
			counters.Games, counters.Wins, counters.Losses, counters.Draws,
		),
		fmt.Sprintf("║ COLOR | Red w-l %d-%d | Blue w-l %d-%d",
			counters.RedWins, counters.RedLosses,
			counters.RedLosses, counters.RedWins,
		),
		fmt.Sprintf("║ LOS   | %.2f%%", 100*summary.LOS),
	}

	var report strings.Builder
	report.WriteString("╔" + strings.Repeat("═", reportWidth-1) + "╗\n")
	for _, line := range lines {
		fmt.Fprintf(&report, "%-*s║\n", reportWidth, line)
	}
	report.WriteString("╚" + strings.Repeat("═", reportWidth-1) + "╝\n")

	return report.String()
}

// llrLine shows the llr with its stopping bounds and hypotheses. The
// hypotheses actually tested follow when draw scaling moved them.
func llrLine(summary stats.Summary) string {
	line := fmt.Sprintf("║ LLR   | %.2f (%.2f, %.2f) [%.2f, %.2f]",
		summary.LLR, summary.Lower, summary.Upper,
		summary.Elo0, summary.Elo1,
	)

	if summary.TestedElo0 != summary.Elo0 || summary.TestedElo1 != summary.Elo1 {
		line += fmt.Sprintf(" -> [%.2f, %.2f]", summary.TestedElo0, summary.TestedElo1)
	}

	return line
}

// VerdictLine returns the line announcing a finished test.
func VerdictLine(verdict stats.Verdict) string {
	switch verdict {
	case stats.AcceptH1:
		return color.New(color.FgGreen, color.Bold).Sprint(verdict)
	case stats.AcceptH0:
		return color.New(color.FgRed, color.Bold).Sprint(verdict)
	default:
		return verdict.String()
	}
}

func (tour *Tournament) printReport(counters Counters, summary stats.Summary) {
	tour.outMu.Lock()
	defer tour.outMu.Unlock()
	fmt.Fprint(tour.out, Report(counters, summary))
}

func (tour *Tournament) printVerdict(verdict stats.Verdict) {
	tour.outMu.Lock()
	defer tour.outMu.Unlock()
	fmt.Fprintln(tour.out, VerdictLine(verdict))
}
