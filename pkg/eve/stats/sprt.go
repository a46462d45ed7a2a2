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

package stats

import "math"

// SPRT does a statistical probability ratio test calculation on the given
// number of wins, losses, and draws from the tournament and returns the
// log-likelihood ratio (llr) for whether elo0 or elo1 is more likely to
// be correct. It only calculates when at least one of each result is there.
//
// With drawScaling the hypotheses are scaled by the draw ratio so that
// they are comparable across time controls with different draw rates.
func SPRT(ws, ls, ds int, elo0, elo1 float64, drawScaling bool) (llr float64) {
	if ws == 0 || ls == 0 || ds == 0 {
		return 0
	}

	w, l, d := float64(ws), float64(ls), float64(ds)
	N := w + l + d // total number of games

	dlo := drawElo(w/N, l/N)

	if drawScaling {
		s := drawScale(dlo)
		elo0 /= s
		elo1 /= s
	}

	w0, d0, l0 := eloToWDL(elo0, dlo) // elo0 WDL probabilities
	w1, d1, l1 := eloToWDL(elo1, dlo) // elo1 WDL probabilities

	// log-likelihood ratio (llr)
	return w*math.Log(w1/w0) +
		l*math.Log(l1/l0) +
		d*math.Log(d1/d0)
}

// DrawScale returns the factor the hypotheses are divided by when draw
// scaling is on. It is 1 while any of the counts is zero.
func DrawScale(ws, ls, ds int) float64 {
	if ws == 0 || ls == 0 || ds == 0 {
		return 1
	}

	N := float64(ws + ls + ds)
	return drawScale(drawElo(float64(ws)/N, float64(ls)/N))
}

func drawScale(dlo float64) float64 {
	x := math.Pow(10, -dlo/400)
	return 4 * x / ((1 + x) * (1 + x))
}
